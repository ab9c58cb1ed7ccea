package form

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Response is one submission of a form; its answers reference it.
type Response struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FormID uuid.UUID `gorm:"type:uuid;not null;index;column:form_id" json:"form_id"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (Response) TableName() string { return "responses" }

func (r *Response) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

type Answer struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ResponseID uuid.UUID `gorm:"type:uuid;not null;index;column:response_id" json:"response_id"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null;index;column:question_id" json:"question_id"`
	Value      string    `gorm:"not null;column:value" json:"value"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (Answer) TableName() string { return "answers" }

func (a *Answer) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
