package evaluation

import (
	"time"

	"formquali-workers/internal/models"
)

// Top level keys of the webhook payload.
const (
	PayloadEvaluationData  = "Dados da Avaliação"
	PayloadGeneralInfo     = "Informações da Monitoria"
	PayloadChecklist       = "Critérios de Avaliação (1-12)"
	PayloadNcg             = "Critérios NCG - Não Conformidade Grave (13-18)"
	PayloadCustomerExp     = "Avaliação Experiência do Cliente"
	PayloadResult          = "Resultado da Avaliação"
	PayloadSubmittedAt     = "Timestamp da Submissão"
	payloadRating          = "Avaliação"
	payloadOccurrence      = "Ocorrência"
	payloadJustification   = "Justificativa"
	payloadTimestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// BuildWebhookPayload renders a submitted form with human readable labels
// as keys, the shape expected by the reporting webhook.
func BuildWebhookPayload(form FormData, score ScoreResult, submittedAt time.Time) map[string]interface{} {
	general := make(map[string]interface{}, len(GeneralFields))
	for _, id := range GeneralFields {
		value, _ := form.GeneralInfo.Get(id)
		general[GeneralInfoLabels[id]] = value
	}

	checklist := make(map[string]interface{}, len(ChecklistKeys))
	for _, key := range ChecklistKeys {
		item := form.ChecklistItems[key]
		checklist[ChecklistQuestions[key]] = map[string]interface{}{
			payloadRating:        ratingValue(item.Rating),
			payloadJustification: item.Justification,
		}
	}

	ncg := make(map[string]interface{}, len(NcgKeys))
	for _, key := range NcgKeys {
		item := form.NcgItems[key]
		ncg[NcgQuestions[key]] = map[string]interface{}{
			payloadOccurrence:    ratingValue(item.Occurred),
			payloadJustification: item.Justification,
		}
	}

	cx := make(map[string]interface{}, len(CustomerExperienceFields))
	for _, id := range CustomerExperienceFields {
		value, _ := form.CustomerExperience.Get(id)
		cx[CustomerExperienceLabels[id]] = nullable(value)
	}

	return map[string]interface{}{
		PayloadEvaluationData: map[string]interface{}{
			PayloadGeneralInfo: general,
			PayloadChecklist:   checklist,
			PayloadNcg:         ncg,
			PayloadCustomerExp: cx,
		},
		PayloadResult: map[string]interface{}{
			LabelFinalScore:              score.FinalScore,
			LabelAchievedPoints:          score.AchievedPoints,
			LabelApplicableCriteriaCount: score.ApplicableCriteriaCount,
			LabelIsCriticalFailure:       score.IsCriticalFailure,
		},
		PayloadSubmittedAt: submittedAt.UTC().Format(payloadTimestampLayout),
	}
}

// BuildRecord maps a submitted form to the monitorias row.
func BuildRecord(form FormData, score ScoreResult) *models.Monitoria {
	record := &models.Monitoria{
		TicketNumber:        form.GeneralInfo.TicketNumber,
		TicketLink:          form.GeneralInfo.TicketLink,
		Tabulacao:           form.GeneralInfo.Tabulacao,
		Casa:                form.GeneralInfo.Casa,
		DataAtendimento:     form.GeneralInfo.ServiceDate,
		Monitor:             form.GeneralInfo.Monitor,
		Analista:            form.GeneralInfo.Analista,
		RespostasChecklist:  make(map[string]models.ChecklistAnswer, len(ChecklistKeys)),
		RespostasNcg:        make(map[string]models.NcgAnswer, len(NcgKeys)),
		ExperienciaCliente:  make(map[string]models.CustomerAnswer, len(CustomerExperienceFields)),
		NotaFinal:           score.FinalScore,
		PontosObtidos:       score.AchievedPoints,
		CriteriosAplicaveis: score.ApplicableCriteriaCount,
		FalhaCritica:        score.IsCriticalFailure,
	}

	for _, key := range ChecklistKeys {
		item := form.ChecklistItems[key]
		record.RespostasChecklist[ChecklistQuestions[key]] = models.ChecklistAnswer{
			Rating:        ratingString(item.Rating),
			Justification: item.Justification,
		}
	}
	for _, key := range NcgKeys {
		item := form.NcgItems[key]
		record.RespostasNcg[NcgQuestions[key]] = models.NcgAnswer{
			Occurred:      ratingString(item.Occurred),
			Justification: item.Justification,
		}
	}
	for _, id := range CustomerExperienceFields {
		value, _ := form.CustomerExperience.Get(id)
		answer := models.CustomerAnswer{}
		if value != "" {
			v := value
			answer.Resposta = &v
		}
		record.ExperienciaCliente[CustomerExperienceLabels[id]] = answer
	}

	return record
}

func ratingValue(r *RatingOption) interface{} {
	if r == nil {
		return nil
	}
	return string(*r)
}

func ratingString(r *RatingOption) *string {
	if r == nil {
		return nil
	}
	s := string(*r)
	return &s
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
