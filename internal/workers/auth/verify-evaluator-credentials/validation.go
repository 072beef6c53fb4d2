// internal/workers/auth/verify-evaluator-credentials/validation.go
package verifyevaluatorcredentials

import "formquali-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"email", "password"},
		Properties: map[string]validation.Property{
			"email": {
				Type:        "string",
				Description: "Evaluator e-mail",
				MaxLength:   validation.IntPtr(255),
			},
			"password": {
				Type:        "string",
				Description: "Evaluator password",
				MaxLength:   validation.IntPtr(255),
			},
		},
		AdditionalProperties: true,
	}
}
