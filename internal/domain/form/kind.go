package form

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// QuestionKind is the domain kind of a question. The stored and wire form
// is the short tag ("text" / "mcq").
type QuestionKind string

const (
	KindText           QuestionKind = "text"
	KindMultipleChoice QuestionKind = "multiple_choice"
)

const (
	TagText           = "text"
	TagMultipleChoice = "mcq"
)

// Tag returns the stored/wire tag for the kind.
func (k QuestionKind) Tag() string {
	if k == KindMultipleChoice {
		return TagMultipleChoice
	}
	return TagText
}

// ParseQuestionTag maps a tag to a kind. Anything that is not the
// multiple-choice tag is text.
func ParseQuestionTag(tag string) QuestionKind {
	if tag == TagMultipleChoice {
		return KindMultipleChoice
	}
	return KindText
}

func (k QuestionKind) Value() (driver.Value, error) {
	return k.Tag(), nil
}

func (k *QuestionKind) Scan(src any) error {
	switch v := src.(type) {
	case string:
		*k = ParseQuestionTag(v)
	case []byte:
		*k = ParseQuestionTag(string(v))
	case nil:
		*k = KindText
	default:
		return fmt.Errorf("question kind: unsupported type %T", src)
	}
	return nil
}

func (k QuestionKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.Tag())
}

func (k *QuestionKind) UnmarshalJSON(b []byte) error {
	var tag string
	if err := json.Unmarshal(b, &tag); err != nil {
		return err
	}
	*k = ParseQuestionTag(tag)
	return nil
}
