package form

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Form struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	Title  string    `gorm:"not null;column:title" json:"title"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Form) TableName() string { return "forms" }

func (f *Form) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

type Question struct {
	ID         uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	FormID     uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_question_form_order,priority:1;column:form_id" json:"form_id"`
	Title      string       `gorm:"not null;column:title" json:"title"`
	Kind       QuestionKind `gorm:"type:text;not null;column:type" json:"type"`
	OrderIndex int          `gorm:"not null;uniqueIndex:idx_question_form_order,priority:2;column:order_index" json:"order_index"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (Question) TableName() string { return "questions" }

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}
