package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	types "github.com/yungbote/formflow-backend/internal/domain"
	"gorm.io/gorm"
)

func SeedForm(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, title string) *types.Form {
	tb.Helper()
	f := &types.Form{
		ID:     uuid.New(),
		UserID: userID,
		Title:  title,
	}
	if err := tx.WithContext(ctx).Create(f).Error; err != nil {
		tb.Fatalf("seed form: %v", err)
	}
	return f
}

func SeedQuestion(tb testing.TB, ctx context.Context, tx *gorm.DB, formID uuid.UUID, index int, kind types.QuestionKind) *types.Question {
	tb.Helper()
	q := &types.Question{
		ID:         uuid.New(),
		FormID:     formID,
		Title:      "question",
		Kind:       kind,
		OrderIndex: index,
	}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed question: %v", err)
	}
	return q
}
