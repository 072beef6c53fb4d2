package notify

import (
	"bytes"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"formquali-workers/internal/models"
)

const textBody = `Olá{{if .Analista}}, {{.Analista}}{{end}}!

Sua monitoria do ticket #{{.TicketNumber}} foi registrada.

Nota final: {{printf "%.2f" .NotaFinal}}%
{{- if .Monitor}}
Monitor: {{.Monitor}}{{end}}
{{- if .DataAtendimento}}
Data do atendimento: {{.DataAtendimento}}{{end}}
{{- if .FalhaCritica}}

Foi identificada falha crítica (NCG):
{{range .FailedNcg}}- {{.}}
{{end}}{{end}}
{{- if .TicketLink}}
Ticket: {{.TicketLink}}{{end}}
`

const htmlBody = `<p>Olá{{if .Analista}}, {{.Analista}}{{end}}!</p>
<p>Sua monitoria do ticket <a href="{{.TicketLink}}">#{{.TicketNumber}}</a> foi registrada.</p>
<p><strong>Nota final: {{printf "%.2f" .NotaFinal}}%</strong></p>
{{if .FalhaCritica}}<p>Foi identificada falha crítica (NCG):</p>
<ul>{{range .FailedNcg}}<li>{{.}}</li>{{end}}</ul>{{end}}`

const alertBody = `Falha crítica NCG na monitoria {{.RecordID}}
Ticket: #{{.TicketNumber}} {{.TicketLink}}
Analista: {{.Analista}}
Monitor: {{.Monitor}}
Casa: {{.Casa}}
{{range .FailedNcg}}- {{.}}
{{end}}`

var (
	textTmpl  = texttemplate.Must(texttemplate.New("text").Parse(textBody))
	htmlTmpl  = htmltemplate.Must(htmltemplate.New("html").Parse(htmlBody))
	alertTmpl = texttemplate.Must(texttemplate.New("alert").Parse(alertBody))
)

// RenderEmail returns the plain text and HTML bodies of the analyst e-mail.
func RenderEmail(r models.EvaluationResult) (string, string) {
	var text, html bytes.Buffer
	_ = textTmpl.Execute(&text, r)
	_ = htmlTmpl.Execute(&html, r)
	return text.String(), html.String()
}

func RenderAlert(r models.EvaluationResult) string {
	var b bytes.Buffer
	_ = alertTmpl.Execute(&b, r)
	return strings.TrimSpace(b.String())
}
