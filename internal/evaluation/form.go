// Package evaluation holds the monitoria form model and the rules applied to it:
// the answer store, validation, scoring and the outbound payload builders.
package evaluation

import (
	"strings"
)

// RatingOption is the answer given to a checklist or NCG criterion.
type RatingOption string

const (
	RatingConforme    RatingOption = "Conforme"
	RatingNaoConforme RatingOption = "Não conforme"
	RatingNA          RatingOption = "N/A"
)

// Valid reports whether r is one of the three accepted ratings.
func (r RatingOption) Valid() bool {
	switch r {
	case RatingConforme, RatingNaoConforme, RatingNA:
		return true
	}
	return false
}

// Rating returns a pointer to r, for building items in code and tests.
func Rating(r RatingOption) *RatingOption {
	return &r
}

// Yes/no answers used by the customer experience section.
const (
	AnswerSim = "Sim"
	AnswerNao = "Não"
	AnswerNA  = "N/A"
)

// FCR responsible options.
var FCRResponsibleOptions = []string{"cliente", "analista", "processo", "outras_areas", "zig", "houve_fcr"}

type ChecklistKey string

const (
	Item1  ChecklistKey = "item1"
	Item2  ChecklistKey = "item2"
	Item3  ChecklistKey = "item3"
	Item4  ChecklistKey = "item4"
	Item5  ChecklistKey = "item5"
	Item6  ChecklistKey = "item6"
	Item7  ChecklistKey = "item7"
	Item8  ChecklistKey = "item8"
	Item9  ChecklistKey = "item9"
	Item10 ChecklistKey = "item10"
	Item11 ChecklistKey = "item11"
	Item12 ChecklistKey = "item12"
)

// ChecklistKeys lists the checklist criteria in display order.
var ChecklistKeys = []ChecklistKey{
	Item1, Item2, Item3, Item4, Item5, Item6,
	Item7, Item8, Item9, Item10, Item11, Item12,
}

type NcgKey string

const (
	Ncg13 NcgKey = "ncg13"
	Ncg14 NcgKey = "ncg14"
	Ncg15 NcgKey = "ncg15"
	Ncg16 NcgKey = "ncg16"
	Ncg17 NcgKey = "ncg17"
	Ncg18 NcgKey = "ncg18"
)

// NcgKeys lists the critical failure criteria in display order.
var NcgKeys = []NcgKey{Ncg13, Ncg14, Ncg15, Ncg16, Ncg17, Ncg18}

// ChecklistItem holds the answer to one checklist criterion. A nil Rating
// means the criterion has not been answered yet.
type ChecklistItem struct {
	Rating        *RatingOption `json:"rating"`
	Justification string        `json:"justification"`
}

// NcgItem holds the answer to one critical failure criterion. Occurred set
// to "Não conforme" means the failure happened.
type NcgItem struct {
	Occurred      *RatingOption `json:"occurred"`
	Justification string        `json:"justification"`
}

type GeneralInfo struct {
	TicketNumber string `json:"ticketNumber"`
	Casa         string `json:"casa"`
	ServiceDate  string `json:"serviceDate"`
	Tabulacao    string `json:"tabulacao"`
	Monitor      string `json:"monitor"`
	Analista     string `json:"analista"`
	TicketLink   string `json:"ticketLink"`
}

// CustomerExperience answers are plain strings; an empty string is unset.
type CustomerExperience struct {
	FCR                           string `json:"fcr"`
	FCRResponsible                string `json:"fcrResponsible"`
	DissatisfactionDuringContact  string `json:"dissatisfactionDuringContact"`
	AttemptToReverseNegativeImage string `json:"attemptToReverseNegativeImage"`
	CustomerPraisedService        string `json:"customerPraisedService"`
	ComplaintPreviousService      string `json:"complaintPreviousService"`
	ComplaintAnalystPosture       string `json:"complaintAnalystPosture"`
	ComplaintIncorrectInfo        string `json:"complaintIncorrectInfo"`
	DissatisfactionWithIA         string `json:"dissatisfactionWithIA"`
	ThreatenLegalAction           string `json:"threatenLegalAction"`
}

// FormData is the whole evaluation being filled in.
type FormData struct {
	GeneralInfo        GeneralInfo                    `json:"generalInfo"`
	ChecklistItems     map[ChecklistKey]ChecklistItem `json:"checklistItems"`
	NcgItems           map[NcgKey]NcgItem             `json:"ncgItems"`
	CustomerExperience CustomerExperience             `json:"customerExperience"`
}

// ScoreResult is derived from the checklist and NCG answers and never edited.
type ScoreResult struct {
	FinalScore              float64 `json:"finalScore"`
	AchievedPoints          int     `json:"achievedPoints"`
	ApplicableCriteriaCount int     `json:"applicableCriteriaCount"`
	IsCriticalFailure       bool    `json:"isCriticalFailure"`
}

// NewFormData returns an empty form with an entry for every checklist and
// NCG key.
func NewFormData() FormData {
	form := FormData{}
	form.Normalize()
	return form
}

// Normalize restores the per-key entries that a decoded snapshot or job
// payload may be missing, drops keys outside the fixed sets and unsets
// ratings outside the allowed options.
func (f *FormData) Normalize() {
	checklist := make(map[ChecklistKey]ChecklistItem, len(ChecklistKeys))
	for _, key := range ChecklistKeys {
		item := f.ChecklistItems[key]
		if item.Rating != nil && !item.Rating.Valid() {
			item.Rating = nil
		}
		checklist[key] = item
	}
	f.ChecklistItems = checklist

	ncg := make(map[NcgKey]NcgItem, len(NcgKeys))
	for _, key := range NcgKeys {
		item := f.NcgItems[key]
		if item.Occurred != nil && *item.Occurred != RatingConforme && *item.Occurred != RatingNaoConforme {
			item.Occurred = nil
		}
		ncg[key] = item
	}
	f.NcgItems = ncg
}

// Clone returns a deep copy of the form.
func (f FormData) Clone() FormData {
	out := FormData{
		GeneralInfo:        f.GeneralInfo,
		CustomerExperience: f.CustomerExperience,
		ChecklistItems:     make(map[ChecklistKey]ChecklistItem, len(f.ChecklistItems)),
		NcgItems:           make(map[NcgKey]NcgItem, len(f.NcgItems)),
	}
	for key, item := range f.ChecklistItems {
		if item.Rating != nil {
			item.Rating = Rating(*item.Rating)
		}
		out.ChecklistItems[key] = item
	}
	for key, item := range f.NcgItems {
		if item.Occurred != nil {
			item.Occurred = Rating(*item.Occurred)
		}
		out.NcgItems[key] = item
	}
	return out
}

// ParseChecklistKey accepts a key such as "item3".
func ParseChecklistKey(s string) (ChecklistKey, bool) {
	for _, key := range ChecklistKeys {
		if string(key) == s {
			return key, true
		}
	}
	return "", false
}

// ParseNcgKey accepts a key such as "ncg15".
func ParseNcgKey(s string) (NcgKey, bool) {
	for _, key := range NcgKeys {
		if string(key) == s {
			return key, true
		}
	}
	return "", false
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
