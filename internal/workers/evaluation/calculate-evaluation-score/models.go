// internal/workers/evaluation/calculate-evaluation-score/models.go
package calculateevaluationscore

type Input struct {
	FormData map[string]interface{} `json:"formData"`
}

type Output struct {
	FinalScore              float64  `json:"finalScore"`
	AchievedPoints          int      `json:"achievedPoints"`
	ApplicableCriteriaCount int      `json:"applicableCriteriaCount"`
	IsCriticalFailure       bool     `json:"isCriticalFailure"`
	CriticalFailures        []string `json:"criticalFailures"`
}
