package formgen

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	types "github.com/yungbote/formflow-backend/internal/domain/form"
)

type QuestionRow struct {
	FormID     uuid.UUID
	Title      string
	Kind       types.QuestionKind
	OrderIndex int
}

// Store is the persistence collaborator. The two inserts are not wrapped in
// a transaction; a questions failure leaves the form row committed.
type Store interface {
	InsertForm(ctx context.Context, title string, ownerID uuid.UUID) (uuid.UUID, error)
	InsertQuestions(ctx context.Context, rows []QuestionRow) error
}

type Phase string

const (
	PhaseForm      Phase = "form"
	PhaseQuestions Phase = "questions"
)

// PersistError reports which insert failed. FormID is non-nil for
// PhaseQuestions.
type PersistError struct {
	Phase  Phase
	FormID *uuid.UUID
	Err    error
}

func (e *PersistError) Error() string {
	if e.FormID != nil {
		return fmt.Sprintf("insert %s (form %s): %v", e.Phase, e.FormID, e.Err)
	}
	return fmt.Sprintf("insert %s: %v", e.Phase, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

type PersistResult struct {
	FormID        uuid.UUID
	QuestionCount int
}

type Writer struct {
	store Store
}

func NewWriter(store Store) *Writer {
	return &Writer{store: store}
}

func (w *Writer) Persist(ctx context.Context, ownerID uuid.UUID, f GeneratedForm) (PersistResult, error) {
	if w == nil || w.store == nil {
		return PersistResult{}, &PersistError{Phase: PhaseForm, Err: errors.New("store not configured")}
	}

	formID, err := w.store.InsertForm(ctx, f.Title, ownerID)
	if err != nil {
		return PersistResult{}, &PersistError{Phase: PhaseForm, Err: err}
	}
	if formID == uuid.Nil {
		return PersistResult{}, &PersistError{Phase: PhaseForm, Err: errors.New("store returned no form id")}
	}

	rows := QuestionRows(formID, f.Questions)
	if err := w.store.InsertQuestions(ctx, rows); err != nil {
		id := formID
		return PersistResult{FormID: formID}, &PersistError{Phase: PhaseQuestions, FormID: &id, Err: err}
	}
	return PersistResult{FormID: formID, QuestionCount: len(rows)}, nil
}

// QuestionRows stamps each question with formID and its zero-based position.
func QuestionRows(formID uuid.UUID, questions []GeneratedQuestion) []QuestionRow {
	rows := make([]QuestionRow, len(questions))
	for i, q := range questions {
		rows[i] = QuestionRow{
			FormID:     formID,
			Title:      q.Title,
			Kind:       q.Kind,
			OrderIndex: i,
		}
	}
	return rows
}
