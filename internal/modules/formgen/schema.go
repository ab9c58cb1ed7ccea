package formgen

import types "github.com/yungbote/formflow-backend/internal/domain/form"

const SchemaName = "form_schema"

// FormSchema is the strict response_format schema sent with every
// generation request. Strict mode requires every property in "required"
// and additionalProperties=false on each object.
func FormSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{"type": "string"},
			"questions": map[string]any{
				"type":  "array",
				"items": QuestionSchema(),
			},
		},
		"required":             []string{"title", "questions"},
		"additionalProperties": false,
	}
}

func QuestionSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{"type": "string"},
			"type":  EnumSchema(types.TagText, types.TagMultipleChoice),
		},
		"required":             []string{"title", "type"},
		"additionalProperties": false,
	}
}

func EnumSchema(values ...string) map[string]any {
	return map[string]any{
		"type": "string",
		"enum": values,
	}
}
