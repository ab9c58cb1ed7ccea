package formgen

import (
	"context"

	"github.com/google/uuid"
	"github.com/yungbote/formflow-backend/internal/data/repos"
	types "github.com/yungbote/formflow-backend/internal/domain"
)

// RepoStore adapts the gorm repositories to Store. Each call is its own
// statement; no transaction spans the two inserts.
type RepoStore struct {
	Forms     repos.FormRepo
	Questions repos.QuestionRepo
}

func NewRepoStore(forms repos.FormRepo, questions repos.QuestionRepo) *RepoStore {
	return &RepoStore{Forms: forms, Questions: questions}
}

func (s *RepoStore) InsertForm(ctx context.Context, title string, ownerID uuid.UUID) (uuid.UUID, error) {
	created, err := s.Forms.Create(ctx, nil, []*types.Form{{
		UserID: ownerID,
		Title:  title,
	}})
	if err != nil {
		return uuid.Nil, err
	}
	if len(created) == 0 {
		return uuid.Nil, nil
	}
	return created[0].ID, nil
}

func (s *RepoStore) InsertQuestions(ctx context.Context, rows []QuestionRow) error {
	if len(rows) == 0 {
		return nil
	}
	qs := make([]*types.Question, 0, len(rows))
	for _, r := range rows {
		qs = append(qs, &types.Question{
			FormID:     r.FormID,
			Title:      r.Title,
			Kind:       r.Kind,
			OrderIndex: r.OrderIndex,
		})
	}
	_, err := s.Questions.Create(ctx, nil, qs)
	return err
}
