package evaluation

// ChecklistQuestions are the display texts of the checklist criteria.
var ChecklistQuestions = map[ChecklistKey]string{
	Item1:  "1 - Acolhimento e escuta ativa (Cordialidade, empatia, atenção, não ignorar, demonstrar paciência)",
	Item2:  "2 - Sondagem (Investigou corretamente o problema ou solicitação)",
	Item3:  "3 - Linguagem profissional (Vocabulário adequado, sem gírias, gerundismo, vícios de linguagem etc.)",
	Item4:  "4 - Segurança na informação (Utilizar expressões que transmitam segurança, evitando 'não sei, eu acho')",
	Item5:  "5 - Clareza e objetividade (Informações claras, sem rodeios ou insegurança)",
	Item6:  "6 - Assertividade técnica (Solução condizente com o problema)",
	Item7:  "7 - Condução segura (Argumentação adequada, sem gerar dúvidas ou falsa expectativa)",
	Item8:  "8 - Responsabilidade (Evitou repassar o problema para outras áreas sem justificativa)",
	Item9:  "9 - Interesse e proatividade (Se antecipou a dúvidas, mostrou interesse genuíno em resolver)",
	Item10: "10 - Follow-up (Solicitou dados complementares, orientou próximos passos)",
	Item11: "11 - Encerramento (Confirmou se ajudou, finalizou de forma humana e completa)",
	Item12: "12 - Tabulação correta (Preencheu os campos necessários no sistema corretamente)",
}

// NcgQuestions are the display texts of the critical failure criteria.
var NcgQuestions = map[NcgKey]string{
	Ncg13: "13 - NCG - Informação incorreta ou falsa",
	Ncg14: "14 - NCG - Tempo de Resposta Inadequado - Intervalo superior a 10 minutos sem resposta ou sem sinalização",
	Ncg15: "15 - NCG - Linguagem ofensiva ou antiética (Ironia, grosseria, palavrão, palavras de baixo calão etc.)",
	Ncg16: "16 - NCG - Risco de prejuízo à empresa (Prejuízo financeiro ou imagem da empresa)",
	Ncg17: "17 - NCG - Quebra de ética/exposição da empresa",
	Ncg18: "18 - NCG - Promessa Indevida (Prometer ações que não são permitidas)",
}

var GeneralInfoLabels = map[FieldID]string{
	FieldTicketNumber: "Número do Ticket",
	FieldCasa:         "Casa",
	FieldServiceDate:  "Data do Atendimento",
	FieldTabulacao:    "Tabulação",
	FieldMonitor:      "Monitor",
	FieldAnalista:     "Analista",
	FieldTicketLink:   "Link do Ticket Zendesk",
}

var CustomerExperienceLabels = map[FieldID]string{
	FieldFCR:                           "FCR - Houve resolução no primeiro contato?",
	FieldFCRResponsible:                "FCR - Se não houve resolução, quem foi o responsável?",
	FieldDissatisfactionDuringContact:  "O cliente demonstrou insatisfação durante o contato?",
	FieldAttemptToReverseNegativeImage: "Houve tentativa de reverter a imagem negativa?",
	FieldCustomerPraisedService:        "O cliente elogiou o atendimento?",
	FieldComplaintPreviousService:      "Cliente cita reclamação de atendimento anterior?",
	FieldComplaintAnalystPosture:       "Cliente reclamou da postura do analista?",
	FieldComplaintIncorrectInfo:        "Cliente reclamou de ter recebido informações Incorretas/ incompletas?",
	FieldDissatisfactionWithIA:         "Cliente verbalizou insatisfação com a IA?",
	FieldThreatenLegalAction:           "Cliente ameaça acionar Orgãos de Justiça (Procon, Reclame Aqui etc.)?",
}

// Score labels.
const (
	LabelFinalScore              = "Nota Final (%)"
	LabelAchievedPoints          = "Pontos Obtidos"
	LabelApplicableCriteriaCount = "Critérios Aplicáveis"
	LabelIsCriticalFailure       = "Falha Crítica NCG Identificada"
)

// User facing messages.
const (
	MsgGeneralInfoRequired = "Por favor, preencha os campos obrigatórios da seção 'Monitoria Analista'."
	MsgChecklistRequired   = "Por favor, responda a todas as questões da checklist (1-12)."
	MsgNcgRequired         = "Por favor, responda a todas as questões NCG (13-18)."
	MsgSubmitSuccess       = "Avaliação enviada com sucesso!"
	MsgSubmitFailurePrefix = "Erro ao enviar avaliação: "
	MsgPersistFailure      = "Erro ao salvar no Supabase: "
	MsgNoImprovementPoints = "Nenhum ponto de melhoria com justificativa foi encontrado para análise."
)
