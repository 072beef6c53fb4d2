package evaluation

import "errors"

// ErrUnknownField is returned for a field or key outside the fixed sets.
var ErrUnknownField = errors.New("UNKNOWN_FIELD")

// FieldID identifies a single answerable field of the form. Checklist and
// NCG fields use their key as identifier.
type FieldID string

const (
	FieldTicketNumber FieldID = "ticketNumber"
	FieldCasa         FieldID = "casa"
	FieldServiceDate  FieldID = "serviceDate"
	FieldTabulacao    FieldID = "tabulacao"
	FieldMonitor      FieldID = "monitor"
	FieldAnalista     FieldID = "analista"
	FieldTicketLink   FieldID = "ticketLink"

	FieldFCR                           FieldID = "fcr"
	FieldFCRResponsible                FieldID = "fcrResponsible"
	FieldDissatisfactionDuringContact  FieldID = "dissatisfactionDuringContact"
	FieldAttemptToReverseNegativeImage FieldID = "attemptToReverseNegativeImage"
	FieldCustomerPraisedService        FieldID = "customerPraisedService"
	FieldComplaintPreviousService      FieldID = "complaintPreviousService"
	FieldComplaintAnalystPosture       FieldID = "complaintAnalystPosture"
	FieldComplaintIncorrectInfo        FieldID = "complaintIncorrectInfo"
	FieldDissatisfactionWithIA         FieldID = "dissatisfactionWithIA"
	FieldThreatenLegalAction           FieldID = "threatenLegalAction"
)

// GeneralFields lists the general information fields in display order.
var GeneralFields = []FieldID{
	FieldTicketNumber, FieldCasa, FieldServiceDate, FieldTabulacao,
	FieldMonitor, FieldAnalista, FieldTicketLink,
}

// RequiredGeneralFields are checked first, in this order.
var RequiredGeneralFields = []FieldID{
	FieldTicketNumber, FieldServiceDate, FieldMonitor, FieldAnalista,
}

// CustomerExperienceFields lists the customer experience fields in display order.
var CustomerExperienceFields = []FieldID{
	FieldFCR, FieldFCRResponsible, FieldDissatisfactionDuringContact,
	FieldAttemptToReverseNegativeImage, FieldCustomerPraisedService,
	FieldComplaintPreviousService, FieldComplaintAnalystPosture,
	FieldComplaintIncorrectInfo, FieldDissatisfactionWithIA, FieldThreatenLegalAction,
}

var fieldRank = func() map[FieldID]int {
	rank := make(map[FieldID]int)
	add := func(id FieldID) { rank[id] = len(rank) }
	for _, id := range GeneralFields {
		add(id)
	}
	for _, key := range ChecklistKeys {
		add(FieldID(key))
	}
	for _, key := range NcgKeys {
		add(FieldID(key))
	}
	for _, id := range CustomerExperienceFields {
		add(id)
	}
	return rank
}()

// KnownField reports whether id belongs to the form.
func KnownField(id FieldID) bool {
	_, ok := fieldRank[id]
	return ok
}

// FieldLess orders field IDs the way they appear on the form.
func FieldLess(a, b FieldID) bool {
	return fieldRank[a] < fieldRank[b]
}

func isGeneralField(id FieldID) bool {
	for _, f := range GeneralFields {
		if f == id {
			return true
		}
	}
	return false
}

func isCustomerExperienceField(id FieldID) bool {
	for _, f := range CustomerExperienceFields {
		if f == id {
			return true
		}
	}
	return false
}

// Get returns the value of a general information field.
func (g GeneralInfo) Get(id FieldID) (string, error) {
	switch id {
	case FieldTicketNumber:
		return g.TicketNumber, nil
	case FieldCasa:
		return g.Casa, nil
	case FieldServiceDate:
		return g.ServiceDate, nil
	case FieldTabulacao:
		return g.Tabulacao, nil
	case FieldMonitor:
		return g.Monitor, nil
	case FieldAnalista:
		return g.Analista, nil
	case FieldTicketLink:
		return g.TicketLink, nil
	}
	return "", ErrUnknownField
}

func (g *GeneralInfo) set(id FieldID, value string) error {
	switch id {
	case FieldTicketNumber:
		g.TicketNumber = value
	case FieldCasa:
		g.Casa = value
	case FieldServiceDate:
		g.ServiceDate = value
	case FieldTabulacao:
		g.Tabulacao = value
	case FieldMonitor:
		g.Monitor = value
	case FieldAnalista:
		g.Analista = value
	case FieldTicketLink:
		g.TicketLink = value
	default:
		return ErrUnknownField
	}
	return nil
}

// Get returns the value of a customer experience field.
func (c CustomerExperience) Get(id FieldID) (string, error) {
	switch id {
	case FieldFCR:
		return c.FCR, nil
	case FieldFCRResponsible:
		return c.FCRResponsible, nil
	case FieldDissatisfactionDuringContact:
		return c.DissatisfactionDuringContact, nil
	case FieldAttemptToReverseNegativeImage:
		return c.AttemptToReverseNegativeImage, nil
	case FieldCustomerPraisedService:
		return c.CustomerPraisedService, nil
	case FieldComplaintPreviousService:
		return c.ComplaintPreviousService, nil
	case FieldComplaintAnalystPosture:
		return c.ComplaintAnalystPosture, nil
	case FieldComplaintIncorrectInfo:
		return c.ComplaintIncorrectInfo, nil
	case FieldDissatisfactionWithIA:
		return c.DissatisfactionWithIA, nil
	case FieldThreatenLegalAction:
		return c.ThreatenLegalAction, nil
	}
	return "", ErrUnknownField
}

func (c *CustomerExperience) set(id FieldID, value string) error {
	switch id {
	case FieldFCR:
		c.FCR = value
	case FieldFCRResponsible:
		c.FCRResponsible = value
	case FieldDissatisfactionDuringContact:
		c.DissatisfactionDuringContact = value
	case FieldAttemptToReverseNegativeImage:
		c.AttemptToReverseNegativeImage = value
	case FieldCustomerPraisedService:
		c.CustomerPraisedService = value
	case FieldComplaintPreviousService:
		c.ComplaintPreviousService = value
	case FieldComplaintAnalystPosture:
		c.ComplaintAnalystPosture = value
	case FieldComplaintIncorrectInfo:
		c.ComplaintIncorrectInfo = value
	case FieldDissatisfactionWithIA:
		c.DissatisfactionWithIA = value
	case FieldThreatenLegalAction:
		c.ThreatenLegalAction = value
	default:
		return ErrUnknownField
	}
	return nil
}
