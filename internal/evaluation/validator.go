package evaluation

// ValidationResult is the outcome of checking a form before submission.
// FocusField names the first field the evaluator should be taken to.
type ValidationResult struct {
	Valid         bool      `json:"isValid"`
	InvalidFields []FieldID `json:"invalidFields"`
	Message       string    `json:"message,omitempty"`
	FocusField    FieldID   `json:"focusField,omitempty"`
}

// CXRule requires a customer experience answer. Rules with a Condition
// only apply when the condition holds.
type CXRule struct {
	Field     FieldID
	Condition func(CustomerExperience) bool
	Message   string
}

// CustomerExperienceRules are evaluated in order; the first violated rule
// supplies the message when the checklist and NCG sections are complete.
var CustomerExperienceRules = []CXRule{
	{
		Field:   FieldFCR,
		Message: "Por favor, responda à questão 'FCR - Houve resolução no primeiro contato?'.",
	},
	{
		Field:     FieldFCRResponsible,
		Condition: func(cx CustomerExperience) bool { return cx.FCR == AnswerNao },
		Message:   "Por favor, selecione o responsável em 'FCR - Se não houve resolução, quem foi o responsável?'.",
	},
	{
		Field:   FieldDissatisfactionDuringContact,
		Message: "Por favor, responda à questão 'O cliente demonstrou insatisfação durante o contato?'.",
	},
	{
		Field:     FieldAttemptToReverseNegativeImage,
		Condition: func(cx CustomerExperience) bool { return cx.DissatisfactionDuringContact == AnswerSim },
		Message:   "Por favor, responda à questão 'Houve tentativa de reverter a imagem negativa?'.",
	},
	{
		Field:   FieldCustomerPraisedService,
		Message: "Por favor, responda à questão 'O cliente elogiou o atendimento?'.",
	},
	{
		Field:   FieldComplaintPreviousService,
		Message: "Cliente cita reclamação de atendimento anterior?",
	},
	{
		Field:   FieldComplaintAnalystPosture,
		Message: "Cliente reclamou da postura do analista?",
	},
	{
		Field:   FieldComplaintIncorrectInfo,
		Message: "Cliente reclamou de ter recebido informações Incorretas/ incompletas?",
	},
	{
		Field:   FieldDissatisfactionWithIA,
		Message: "Cliente verbalizou insatisfação com a IA?",
	},
	{
		Field:   FieldThreatenLegalAction,
		Message: "Cliente ameaça acionar Orgãos de Justiça (Procon, Reclame Aqui etc.)?",
	},
}

// Applies reports whether the rule is active for cx.
func (r CXRule) Applies(cx CustomerExperience) bool {
	return r.Condition == nil || r.Condition(cx)
}

// Violated reports whether the rule applies and its field is unanswered.
func (r CXRule) Violated(cx CustomerExperience) bool {
	if !r.Applies(cx) {
		return false
	}
	value, err := cx.Get(r.Field)
	return err != nil || isBlank(value)
}

// Validate checks a form before submission. Missing general information
// short-circuits the remaining checks. Otherwise every unanswered checklist,
// NCG and customer experience field is collected, and the message reports
// the first incomplete section.
func Validate(form FormData) ValidationResult {
	var missing []FieldID
	for _, id := range RequiredGeneralFields {
		value, _ := form.GeneralInfo.Get(id)
		if isBlank(value) {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return ValidationResult{
			InvalidFields: missing,
			Message:       MsgGeneralInfoRequired,
			FocusField:    missing[0],
		}
	}

	var (
		invalid      []FieldID
		message      string
		checklistGap bool
		ncgGap       bool
	)
	for _, key := range ChecklistKeys {
		if form.ChecklistItems[key].Rating == nil {
			invalid = append(invalid, FieldID(key))
			checklistGap = true
		}
	}
	for _, key := range NcgKeys {
		if form.NcgItems[key].Occurred == nil {
			invalid = append(invalid, FieldID(key))
			ncgGap = true
		}
	}
	var firstCXMessage string
	for _, rule := range CustomerExperienceRules {
		if rule.Violated(form.CustomerExperience) {
			invalid = append(invalid, rule.Field)
			if firstCXMessage == "" {
				firstCXMessage = rule.Message
			}
		}
	}

	if len(invalid) == 0 {
		return ValidationResult{Valid: true, InvalidFields: []FieldID{}}
	}

	switch {
	case checklistGap:
		message = MsgChecklistRequired
	case ncgGap:
		message = MsgNcgRequired
	default:
		message = firstCXMessage
	}

	return ValidationResult{
		InvalidFields: invalid,
		Message:       message,
		FocusField:    invalid[0],
	}
}
