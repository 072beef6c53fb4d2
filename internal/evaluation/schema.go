package evaluation

import (
	"encoding/json"
	"strings"

	commonerrors "formquali-workers/internal/common/errors"
	"formquali-workers/internal/common/validation"
)

// FormDataSchema is the shape accepted for a FormData document coming from
// a job or request. Values are checked loosely: unknown ratings are
// dropped later by Normalize, and completeness is Validate's job.
const FormDataSchema = `{
  "type": "object",
  "required": ["generalInfo"],
  "properties": {
    "generalInfo": {
      "type": "object",
      "properties": {
        "ticketNumber": {"type": "string", "maxLength": 64},
        "casa":         {"type": "string", "maxLength": 255},
        "serviceDate":  {"type": "string", "maxLength": 32},
        "tabulacao":    {"type": "string", "maxLength": 255},
        "monitor":      {"type": "string", "maxLength": 255},
        "analista":     {"type": "string", "maxLength": 255},
        "ticketLink":   {"type": "string", "maxLength": 2048}
      },
      "additionalProperties": false
    },
    "checklistItems": {
      "type": "object",
      "patternProperties": {
        "^item([1-9]|1[0-2])$": {
          "type": "object",
          "properties": {
            "rating":        {"type": ["string", "null"], "enum": ["Conforme", "Não conforme", "N/A", "", null]},
            "justification": {"type": "string"}
          }
        }
      },
      "additionalProperties": false
    },
    "ncgItems": {
      "type": "object",
      "patternProperties": {
        "^ncg1[3-8]$": {
          "type": "object",
          "properties": {
            "occurred":      {"type": ["string", "null"], "enum": ["Conforme", "Não conforme", "N/A", "", null]},
            "justification": {"type": "string"}
          }
        }
      },
      "additionalProperties": false
    },
    "customerExperience": {
      "type": "object",
      "additionalProperties": {"type": "string"}
    }
  }
}`

// CheckDocument validates a decoded FormData document against
// FormDataSchema.
func CheckDocument(doc interface{}) *validation.ValidationResult {
	return validation.ValidateDocument(FormDataSchema, doc)
}

// ParseForm checks doc against FormDataSchema and decodes it into a
// normalized FormData.
func ParseForm(doc map[string]interface{}) (FormData, error) {
	if doc == nil {
		return FormData{}, commonerrors.NewInvalidInputError("formData is required")
	}
	if result := CheckDocument(doc); !result.Valid {
		return FormData{}, commonerrors.NewInvalidInputError(strings.Join(result.GetErrorMessages(), "; "))
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return FormData{}, commonerrors.NewInvalidInputError(err.Error())
	}
	var form FormData
	if err := json.Unmarshal(raw, &form); err != nil {
		return FormData{}, commonerrors.NewInvalidInputError(err.Error())
	}
	form.Normalize()
	return form, nil
}
