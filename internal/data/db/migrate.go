package db

import (
	types "github.com/yungbote/formflow-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Authoring
		&types.Form{},
		&types.Question{},

		// Collection
		&types.Response{},
		&types.Answer{},
	)
}
