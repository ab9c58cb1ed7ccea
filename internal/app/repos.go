package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/formflow-backend/internal/data/repos"
	"github.com/yungbote/formflow-backend/internal/platform/logger"
)

type Repos struct {
	Form     repos.FormRepo
	Question repos.QuestionRepo
	Response repos.ResponseRepo
	Answer   repos.AnswerRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Form:     repos.NewFormRepo(db, log),
		Question: repos.NewQuestionRepo(db, log),
		Response: repos.NewResponseRepo(db, log),
		Answer:   repos.NewAnswerRepo(db, log),
	}
}
