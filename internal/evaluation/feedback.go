package evaluation

import (
	"fmt"
	"strings"
)

const (
	coachPromptIntro     = "Você é um especialista em Qualidade de atendimento ao cliente. Sua tarefa é criar um resumo construtivo e profissional para um analista de suporte com base nos pontos de uma avaliação de qualidade. Mantenha um tom de coach, focando em como o analista pode melhorar.\n\nAqui estão os pontos que precisam de atenção:"
	coachPromptChecklist = "\n\n**Critérios de Avaliação a Melhorar:**\n"
	coachPromptNcg       = "\n\n**Pontos Críticos (NCG - Não Conformidade Grave):**\n"
	coachPromptClosing   = "\n\nCom base nisso, por favor, gere um parágrafo de feedback para o analista. Comece o feedback diretamente, sem introduções como 'Aqui está o resumo'."

	structuredPromptTemplate = `
Organize as respostas abaixo em um JSON onde cada chave é o número da pergunta, e cada valor é um objeto com 'pergunta', 'resposta' e 'justificativa'.
Além disso, gere um campo "avaliacao_ia" com uma avaliação geral do atendimento (máximo 3 linhas) e um campo "sugestao_ia" com uma sugestão de melhoria (máximo 2 linhas).

Respostas:
%s
`
)

// CoachingPrompt builds the prompt asking the model for a coaching paragraph.
// Only checklist criteria rated Não conforme and critical failures that
// occurred are included, and only when justified. ok is false when there is
// nothing to discuss.
func CoachingPrompt(form FormData) (prompt string, ok bool) {
	var improve, critical []string
	for _, key := range ChecklistKeys {
		item := form.ChecklistItems[key]
		if item.Rating != nil && *item.Rating == RatingNaoConforme && item.Justification != "" {
			improve = append(improve, fmt.Sprintf("- Pergunta: %s\n  Justificativa: %s", ChecklistQuestions[key], item.Justification))
		}
	}
	for _, key := range NcgKeys {
		item := form.NcgItems[key]
		if item.Occurred != nil && *item.Occurred == RatingNaoConforme && item.Justification != "" {
			critical = append(critical, fmt.Sprintf("- Ocorrência: %s\n  Justificativa: %s", NcgQuestions[key], item.Justification))
		}
	}
	if len(improve) == 0 && len(critical) == 0 {
		return "", false
	}

	var b strings.Builder
	b.WriteString(coachPromptIntro)
	if len(improve) > 0 {
		b.WriteString(coachPromptChecklist)
		b.WriteString(strings.Join(improve, "\n"))
	}
	if len(critical) > 0 {
		b.WriteString(coachPromptNcg)
		b.WriteString(strings.Join(critical, "\n"))
	}
	b.WriteString(coachPromptClosing)
	return b.String(), true
}

// QuestionAnswerText renders every checklist and NCG answer as numbered
// question, answer and justification lines.
func QuestionAnswerText(form FormData) string {
	var b strings.Builder
	for _, key := range ChecklistKeys {
		item := form.ChecklistItems[key]
		writeAnswer(&b, ChecklistQuestions[key], item.Rating, item.Justification)
	}
	for _, key := range NcgKeys {
		item := form.NcgItems[key]
		writeAnswer(&b, NcgQuestions[key], item.Occurred, item.Justification)
	}
	return strings.TrimRight(b.String(), "\n")
}

// StructuredPrompt asks the model to organize the answers as JSON with an
// overall assessment (avaliacao_ia) and an improvement suggestion (sugestao_ia).
func StructuredPrompt(questionAnswerText string) string {
	return fmt.Sprintf(structuredPromptTemplate, questionAnswerText)
}

func writeAnswer(b *strings.Builder, question string, answer *RatingOption, justification string) {
	value := "-"
	if answer != nil {
		value = string(*answer)
	}
	fmt.Fprintf(b, "%s\nResposta: %s\n", question, value)
	if justification != "" {
		fmt.Fprintf(b, "Justificativa: %s\n", justification)
	}
}
