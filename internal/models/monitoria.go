// internal/models/monitoria.go
package models

import "time"

// ChecklistAnswer is the stored answer of one checklist criterion.
type ChecklistAnswer struct {
	Rating        *string `json:"rating"`
	Justification string  `json:"justification"`
}

// NcgAnswer is the stored answer of one critical failure criterion.
type NcgAnswer struct {
	Occurred      *string `json:"occurred"`
	Justification string  `json:"justification"`
}

// CustomerAnswer is the stored answer of one customer experience question.
type CustomerAnswer struct {
	Resposta *string `json:"resposta"`
}

// Monitoria is a submitted evaluation as persisted in the monitorias table.
// Answer maps are keyed by the question label.
type Monitoria struct {
	ID                 string                     `json:"id" db:"id"`
	TicketNumber       string                     `json:"ticket_number" db:"ticket_number"`
	TicketLink         string                     `json:"ticket_link" db:"ticket_link"`
	Tabulacao          string                     `json:"tabulacao" db:"tabulacao"`
	Casa               string                     `json:"casa" db:"casa"`
	DataAtendimento    string                     `json:"data_atendimento" db:"data_atendimento"`
	Monitor            string                     `json:"monitor" db:"monitor"`
	Analista           string                     `json:"analista" db:"analista"`
	RespostasChecklist map[string]ChecklistAnswer `json:"respostas_checklist" db:"respostas_checklist"`
	RespostasNcg       map[string]NcgAnswer       `json:"respostas_ncg" db:"respostas_ncg"`
	ExperienciaCliente map[string]CustomerAnswer  `json:"experiencia_cliente" db:"experiencia_cliente"`
	NotaFinal          float64                    `json:"nota_final" db:"nota_final"`
	CreatedAt          time.Time                  `json:"created_at" db:"created_at"`

	// Derived score details, indexed for search but not stored as columns.
	PontosObtidos       int  `json:"pontos_obtidos"`
	CriteriosAplicaveis int  `json:"criterios_aplicaveis"`
	FalhaCritica        bool `json:"falha_critica"`
}

// MonitoriaSearchResult is one page of an evaluation search.
type MonitoriaSearchResult struct {
	Total   int64        `json:"total"`
	Page    int          `json:"page"`
	Size    int          `json:"size"`
	Results []*Monitoria `json:"results"`
}
