package form

import (
	"context"

	"github.com/google/uuid"
	types "github.com/yungbote/formflow-backend/internal/domain"
	"github.com/yungbote/formflow-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type ResponseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, responses []*types.Response) ([]*types.Response, error)
	CountByFormID(ctx context.Context, tx *gorm.DB, formID uuid.UUID) (int64, error)
}

type responseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewResponseRepo(db *gorm.DB, baseLog *logger.Logger) ResponseRepo {
	return &responseRepo{db: db, log: baseLog.With("repo", "ResponseRepo")}
}

func (rr *responseRepo) Create(ctx context.Context, tx *gorm.DB, responses []*types.Response) ([]*types.Response, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	if len(responses) == 0 {
		return []*types.Response{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&responses).Error; err != nil {
		return nil, err
	}
	return responses, nil
}

func (rr *responseRepo) CountByFormID(ctx context.Context, tx *gorm.DB, formID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Response{}).
		Where("form_id = ?", formID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

type AnswerRepo interface {
	Create(ctx context.Context, tx *gorm.DB, answers []*types.Answer) ([]*types.Answer, error)
	ListByResponseID(ctx context.Context, tx *gorm.DB, responseID uuid.UUID) ([]*types.Answer, error)
}

type answerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnswerRepo(db *gorm.DB, baseLog *logger.Logger) AnswerRepo {
	return &answerRepo{db: db, log: baseLog.With("repo", "AnswerRepo")}
}

func (ar *answerRepo) Create(ctx context.Context, tx *gorm.DB, answers []*types.Answer) ([]*types.Answer, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	if len(answers) == 0 {
		return []*types.Answer{}, nil
	}
	if err := transaction.WithContext(ctx).
		CreateInBatches(&answers, len(answers)).Error; err != nil {
		return nil, err
	}
	return answers, nil
}

func (ar *answerRepo) ListByResponseID(ctx context.Context, tx *gorm.DB, responseID uuid.UUID) ([]*types.Answer, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	var results []*types.Answer
	if err := transaction.WithContext(ctx).
		Where("response_id = ?", responseID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
