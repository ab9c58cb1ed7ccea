package form

import (
	"context"

	"github.com/google/uuid"
	types "github.com/yungbote/formflow-backend/internal/domain"
	"github.com/yungbote/formflow-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type QuestionRepo interface {
	// Create inserts all rows in a single statement.
	Create(ctx context.Context, tx *gorm.DB, questions []*types.Question) ([]*types.Question, error)
	ListByFormID(ctx context.Context, tx *gorm.DB, formID uuid.UUID) ([]*types.Question, error)
	CountByFormIDs(ctx context.Context, tx *gorm.DB, formIDs []uuid.UUID) (map[uuid.UUID]int, error)
}

type questionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	repoLog := baseLog.With("repo", "QuestionRepo")
	return &questionRepo{db: db, log: repoLog}
}

func (qr *questionRepo) Create(ctx context.Context, tx *gorm.DB, questions []*types.Question) ([]*types.Question, error) {
	transaction := tx
	if transaction == nil {
		transaction = qr.db
	}

	if len(questions) == 0 {
		return []*types.Question{}, nil
	}

	if err := transaction.WithContext(ctx).
		CreateInBatches(&questions, len(questions)).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (qr *questionRepo) ListByFormID(ctx context.Context, tx *gorm.DB, formID uuid.UUID) ([]*types.Question, error) {
	transaction := tx
	if transaction == nil {
		transaction = qr.db
	}

	var results []*types.Question
	if err := transaction.WithContext(ctx).
		Where("form_id = ?", formID).
		Order("order_index ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (qr *questionRepo) CountByFormIDs(ctx context.Context, tx *gorm.DB, formIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	transaction := tx
	if transaction == nil {
		transaction = qr.db
	}

	out := make(map[uuid.UUID]int, len(formIDs))
	if len(formIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		FormID uuid.UUID
		Count  int
	}
	if err := transaction.WithContext(ctx).
		Model(&types.Question{}).
		Select("form_id, COUNT(*) AS count").
		Where("form_id IN ?", formIDs).
		Group("form_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.FormID] = r.Count
	}
	return out, nil
}
