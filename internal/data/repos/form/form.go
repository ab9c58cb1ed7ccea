package form

import (
	"context"

	"github.com/google/uuid"
	types "github.com/yungbote/formflow-backend/internal/domain"
	"github.com/yungbote/formflow-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type FormRepo interface {
	Create(ctx context.Context, tx *gorm.DB, forms []*types.Form) ([]*types.Form, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, formIDs []uuid.UUID) ([]*types.Form, error)
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Form, error)
}

type formRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFormRepo(db *gorm.DB, baseLog *logger.Logger) FormRepo {
	repoLog := baseLog.With("repo", "FormRepo")
	return &formRepo{db: db, log: repoLog}
}

func (fr *formRepo) Create(ctx context.Context, tx *gorm.DB, forms []*types.Form) ([]*types.Form, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	if len(forms) == 0 {
		return []*types.Form{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&forms).Error; err != nil {
		return nil, err
	}
	return forms, nil
}

func (fr *formRepo) GetByIDs(ctx context.Context, tx *gorm.DB, formIDs []uuid.UUID) ([]*types.Form, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	var results []*types.Form
	if len(formIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", formIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (fr *formRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Form, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	var results []*types.Form
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
