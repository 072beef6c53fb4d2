// internal/workers/auth/end-evaluator-session/validation.go
package endevaluatorsession

import (
	"fmt"

	"formquali-workers/internal/common/validation"
)

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"email"},
		Properties: map[string]validation.Property{
			"email": {
				Type:        "string",
				Description: "Evaluator e-mail",
				MinLength:   validation.IntPtr(3),
				MaxLength:   validation.IntPtr(255),
			},
			"sessionId": {
				Type:        "string",
				Description: "Session to end",
				MaxLength:   validation.IntPtr(255),
			},
			"logoutAll": {
				Type:        "boolean",
				Description: "End every session of the evaluator",
			},
		},
		AdditionalProperties: true,
	}
}

// validateTarget requires either a session or an explicit logoutAll.
func validateTarget(input *Input) error {
	if input.SessionID == "" && !input.LogoutAll {
		return fmt.Errorf("sessionId is required unless logoutAll is set")
	}
	if !validation.ValidateEmail(input.Email) {
		return fmt.Errorf("invalid email format: %s", input.Email)
	}
	return nil
}
