package formgen

import (
	"encoding/json"
	"strings"

	types "github.com/yungbote/formflow-backend/internal/domain/form"
)

type GeneratedQuestion struct {
	Title string
	Kind  types.QuestionKind
}

type GeneratedForm struct {
	Title     string
	Questions []GeneratedQuestion
}

// SanitizeResult is either an accepted form (OK) or a rejection. A rejected
// result never carries a partial form.
type SanitizeResult struct {
	Form GeneratedForm
	OK   bool
}

func rejected() SanitizeResult { return SanitizeResult{} }

// Sanitize coerces a decoded generation payload into a GeneratedForm.
// Questions without a title are dropped. A missing, non-string or unknown
// "type" becomes text. The whole payload is rejected when the title is empty
// or no question survives.
func Sanitize(v any) SanitizeResult {
	obj, ok := v.(map[string]any)
	if !ok {
		return rejected()
	}

	title := trimmedString(obj["title"])
	rawQuestions, _ := obj["questions"].([]any)

	questions := make([]GeneratedQuestion, 0, len(rawQuestions))
	for _, item := range rawQuestions {
		q, ok := item.(map[string]any)
		if !ok {
			continue
		}
		qTitle := trimmedString(q["title"])
		if qTitle == "" {
			continue
		}
		kind := types.KindText
		if tag, ok := q["type"].(string); ok && tag == types.TagMultipleChoice {
			kind = types.KindMultipleChoice
		}
		questions = append(questions, GeneratedQuestion{Title: qTitle, Kind: kind})
	}

	if title == "" || len(questions) == 0 {
		return rejected()
	}
	return SanitizeResult{
		Form: GeneratedForm{Title: title, Questions: questions},
		OK:   true,
	}
}

// DecodeAndSanitize parses raw generation text. Text that is not JSON is a
// rejection like any other malformed shape.
func DecodeAndSanitize(text string) (GeneratedForm, bool) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return GeneratedForm{}, false
	}
	res := Sanitize(v)
	return res.Form, res.OK
}

// AsMap renders the form back into its wire shape.
func (f GeneratedForm) AsMap() map[string]any {
	qs := make([]any, 0, len(f.Questions))
	for _, q := range f.Questions {
		qs = append(qs, map[string]any{
			"title": q.Title,
			"type":  q.Kind.Tag(),
		})
	}
	return map[string]any{
		"title":     f.Title,
		"questions": qs,
	}
}

func trimmedString(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}
