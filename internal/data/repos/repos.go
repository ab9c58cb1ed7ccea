package repos

import (
	"github.com/yungbote/formflow-backend/internal/data/repos/form"
	"github.com/yungbote/formflow-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type FormRepo = form.FormRepo
type QuestionRepo = form.QuestionRepo
type ResponseRepo = form.ResponseRepo
type AnswerRepo = form.AnswerRepo

func NewFormRepo(db *gorm.DB, baseLog *logger.Logger) FormRepo { return form.NewFormRepo(db, baseLog) }
func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	return form.NewQuestionRepo(db, baseLog)
}
func NewResponseRepo(db *gorm.DB, baseLog *logger.Logger) ResponseRepo {
	return form.NewResponseRepo(db, baseLog)
}
func NewAnswerRepo(db *gorm.DB, baseLog *logger.Logger) AnswerRepo {
	return form.NewAnswerRepo(db, baseLog)
}
