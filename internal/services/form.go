package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/formflow-backend/internal/data/repos"
	types "github.com/yungbote/formflow-backend/internal/domain"
	"github.com/yungbote/formflow-backend/internal/platform/apierr"
	"github.com/yungbote/formflow-backend/internal/platform/logger"
)

var ErrFormNotFound = errors.New("form not found")

type FormSummary struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	QuestionCount int       `json:"questionCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

type QuestionView struct {
	ID         uuid.UUID          `json:"id"`
	Title      string             `json:"title"`
	Type       types.QuestionKind `json:"type"`
	OrderIndex int                `json:"orderIndex"`
}

type FormDetail struct {
	ID        uuid.UUID      `json:"id"`
	Title     string         `json:"title"`
	Questions []QuestionView `json:"questions"`
}

// SubmitError reports a failed response submission. ResponseID is set when
// the response row was written but its answers were not.
type SubmitError struct {
	ResponseID *uuid.UUID
	Err        error
}

func (e *SubmitError) Error() string {
	if e.ResponseID != nil {
		return fmt.Sprintf("insert answers (response %s): %v", e.ResponseID, e.Err)
	}
	return fmt.Sprintf("insert response: %v", e.Err)
}

func (e *SubmitError) Unwrap() error { return e.Err }

type FormService interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]FormSummary, error)
	GetForm(ctx context.Context, formID uuid.UUID) (*FormDetail, error)
	SubmitResponse(ctx context.Context, formID uuid.UUID, answers map[string]string) (uuid.UUID, error)
}

type formService struct {
	log       *logger.Logger
	forms     repos.FormRepo
	questions repos.QuestionRepo
	responses repos.ResponseRepo
	answers   repos.AnswerRepo
}

func NewFormService(
	log *logger.Logger,
	forms repos.FormRepo,
	questions repos.QuestionRepo,
	responses repos.ResponseRepo,
	answers repos.AnswerRepo,
) FormService {
	return &formService{
		log:       log.With("service", "FormService"),
		forms:     forms,
		questions: questions,
		responses: responses,
		answers:   answers,
	}
}

func (fs *formService) ListForUser(ctx context.Context, userID uuid.UUID) ([]FormSummary, error) {
	if userID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "unauthorized", ErrUnauthorized)
	}
	forms, err := fs.forms.ListByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(forms))
	for _, f := range forms {
		ids = append(ids, f.ID)
	}
	counts, err := fs.questions.CountByFormIDs(ctx, nil, ids)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	out := make([]FormSummary, 0, len(forms))
	for _, f := range forms {
		out = append(out, FormSummary{
			ID:            f.ID,
			Title:         f.Title,
			QuestionCount: counts[f.ID],
			CreatedAt:     f.CreatedAt,
		})
	}
	return out, nil
}

func (fs *formService) GetForm(ctx context.Context, formID uuid.UUID) (*FormDetail, error) {
	forms, err := fs.forms.GetByIDs(ctx, nil, []uuid.UUID{formID})
	if err != nil {
		return nil, fmt.Errorf("get form: %w", err)
	}
	if len(forms) == 0 {
		return nil, apierr.New(http.StatusNotFound, "form_not_found", ErrFormNotFound)
	}
	qs, err := fs.questions.ListByFormID(ctx, nil, formID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	detail := &FormDetail{
		ID:        forms[0].ID,
		Title:     forms[0].Title,
		Questions: make([]QuestionView, 0, len(qs)),
	}
	for _, q := range qs {
		detail.Questions = append(detail.Questions, QuestionView{
			ID:         q.ID,
			Title:      q.Title,
			Type:       q.Kind,
			OrderIndex: q.OrderIndex,
		})
	}
	return detail, nil
}

// SubmitResponse writes one response row and then one answer per form
// question. Missing answers are stored as "" and ids that are not questions
// of the form are ignored. The two writes are not transactional.
func (fs *formService) SubmitResponse(ctx context.Context, formID uuid.UUID, answers map[string]string) (uuid.UUID, error) {
	forms, err := fs.forms.GetByIDs(ctx, nil, []uuid.UUID{formID})
	if err != nil {
		return uuid.Nil, fmt.Errorf("get form: %w", err)
	}
	if len(forms) == 0 {
		return uuid.Nil, apierr.New(http.StatusNotFound, "form_not_found", ErrFormNotFound)
	}
	qs, err := fs.questions.ListByFormID(ctx, nil, formID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("list questions: %w", err)
	}

	created, err := fs.responses.Create(ctx, nil, []*types.Response{{FormID: formID}})
	if err != nil {
		return uuid.Nil, &SubmitError{Err: err}
	}
	if len(created) == 0 || created[0].ID == uuid.Nil {
		return uuid.Nil, &SubmitError{Err: errors.New("store returned no response id")}
	}
	responseID := created[0].ID

	rows := make([]*types.Answer, 0, len(qs))
	for _, q := range qs {
		rows = append(rows, &types.Answer{
			ResponseID: responseID,
			QuestionID: q.ID,
			Value:      answers[q.ID.String()],
		})
	}
	if _, err := fs.answers.Create(ctx, nil, rows); err != nil {
		id := responseID
		fs.log.Warn("Answer insert failed after response row was written",
			"response_id", responseID.String(),
			"form_id", formID.String(),
			"error", err.Error(),
		)
		return responseID, &SubmitError{ResponseID: &id, Err: err}
	}
	return responseID, nil
}
