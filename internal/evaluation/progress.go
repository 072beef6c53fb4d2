package evaluation

// Section names the four parts of the evaluation wizard.
type Section string

const (
	SectionGeneralInfo        Section = "generalInfo"
	SectionChecklist          Section = "checklist"
	SectionNcg                Section = "ncg"
	SectionCustomerExperience Section = "customerExperience"
)

// Progress reports which wizard sections are complete. A section unlocks
// the next one only when complete.
type Progress struct {
	GeneralInfo        bool `json:"generalInfo"`
	Checklist          bool `json:"checklist"`
	Ncg                bool `json:"ncg"`
	CustomerExperience bool `json:"customerExperience"`
	AnsweredChecklist  int  `json:"answeredChecklist"`
	AnsweredNcg        int  `json:"answeredNcg"`
}

// Complete reports whether every section is complete.
func (p Progress) Complete() bool {
	return p.GeneralInfo && p.Checklist && p.Ncg && p.CustomerExperience
}

// Unlocked reports whether the wizard lets the evaluator open s.
func (p Progress) Unlocked(s Section) bool {
	switch s {
	case SectionGeneralInfo:
		return true
	case SectionChecklist:
		return p.GeneralInfo
	case SectionNcg:
		return p.GeneralInfo && p.Checklist
	case SectionCustomerExperience:
		return p.GeneralInfo && p.Checklist && p.Ncg
	}
	return false
}

// SectionProgress computes completion with the same rules Validate uses.
func SectionProgress(form FormData) Progress {
	p := Progress{GeneralInfo: true, CustomerExperience: true}

	for _, id := range RequiredGeneralFields {
		value, _ := form.GeneralInfo.Get(id)
		if isBlank(value) {
			p.GeneralInfo = false
		}
	}
	for _, key := range ChecklistKeys {
		if form.ChecklistItems[key].Rating != nil {
			p.AnsweredChecklist++
		}
	}
	for _, key := range NcgKeys {
		if form.NcgItems[key].Occurred != nil {
			p.AnsweredNcg++
		}
	}
	p.Checklist = p.AnsweredChecklist == len(ChecklistKeys)
	p.Ncg = p.AnsweredNcg == len(NcgKeys)

	for _, rule := range CustomerExperienceRules {
		if rule.Violated(form.CustomerExperience) {
			p.CustomerExperience = false
			break
		}
	}
	return p
}
