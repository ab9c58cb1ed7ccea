package formgen

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

type Kind string

const (
	KindConfigMissing         Kind = "config_missing"
	KindInvalidRequest        Kind = "invalid_request"
	KindUnauthorized          Kind = "unauthorized"
	KindGenerationUnavailable Kind = "generation_unavailable"
	KindEmptyGeneration       Kind = "empty_generation"
	KindInvalidGeneration     Kind = "invalid_generation"
	KindPersistenceFailure    Kind = "persistence_failure"
)

// Status is the HTTP status a failure of this kind is reported with.
func (k Kind) Status() int {
	switch k {
	case KindInvalidRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindGenerationUnavailable, KindEmptyGeneration:
		return http.StatusBadGateway
	case KindInvalidGeneration:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

type Stage string

const (
	StageReceivePrompt     Stage = "receive_prompt"
	StageRequireAPIKey     Stage = "require_api_key"
	StageRequirePrompt     Stage = "require_prompt"
	StageRequireCredential Stage = "require_credential"
	StageVerifyIdentity    Stage = "verify_identity"
	StageInvokeGeneration  Stage = "invoke_generation"
	StageExtractText       Stage = "extract_text"
	StageSanitize          Stage = "sanitize"
	StagePersistForm       Stage = "persist_form"
	StagePersistQuestions  Stage = "persist_questions"
)

// Failure is the terminal result of a pipeline run that did not succeed.
// FormID is set only for a question-insert failure, where the form row is
// already committed.
type Failure struct {
	Kind    Kind
	Stage   Stage
	Status  int
	Message string
	Details any
	FormID  *uuid.UUID
	Err     error
}

func (f *Failure) Error() string {
	if f == nil {
		return "<nil>"
	}
	if f.Err != nil {
		return fmt.Sprintf("%s at %s: %s: %v", f.Kind, f.Stage, f.Message, f.Err)
	}
	return fmt.Sprintf("%s at %s: %s", f.Kind, f.Stage, f.Message)
}

func (f *Failure) Unwrap() error {
	if f == nil {
		return nil
	}
	return f.Err
}

func newFailure(kind Kind, stage Stage, msg string, details any, err error) *Failure {
	return &Failure{
		Kind:    kind,
		Stage:   stage,
		Status:  kind.Status(),
		Message: msg,
		Details: details,
		Err:     err,
	}
}

const (
	MsgMissingAPIKey   = "Missing OPENAI_API_KEY."
	MsgPromptRequired  = "Prompt is required."
	MsgPromptTooLong   = "Prompt is too long."
	MsgMissingToken    = "Missing access token."
	MsgUnauthorized    = "Unauthorized."
	MsgAIRequestFailed = "AI request failed."
	MsgNoAIOutput      = "No AI output returned."
	MsgInvalidAIOutput = "Invalid AI output."
	MsgInsertFailed    = "Insert failed."
)
