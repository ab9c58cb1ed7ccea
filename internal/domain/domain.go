package domain

import (
	"github.com/yungbote/formflow-backend/internal/domain/auth"
	"github.com/yungbote/formflow-backend/internal/domain/form"
)

type (
	Form         = form.Form
	Question     = form.Question
	QuestionKind = form.QuestionKind
	Response     = form.Response
	Answer       = form.Answer

	Identity = auth.Identity
)

const (
	KindText           = form.KindText
	KindMultipleChoice = form.KindMultipleChoice
)
