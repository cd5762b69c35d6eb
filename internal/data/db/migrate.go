package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/quizprep-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		// Identity
		&types.User{},
		&types.UserIdentity{},

		// Quizzes
		&types.Quiz{},
		&types.PageScan{},
		&types.Question{},

		// Practice
		&types.PrepSession{},
		&types.Answer{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := EnsureAuthIndexes(db); err != nil {
		return err
	}
	if err := EnsureQuizIndexes(db); err != nil {
		return err
	}
	return EnsurePracticeIndexes(db)
}

func EnsureAuthIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_user_identity_provider_sub
		ON user_identity(provider, provider_sub)
		WHERE deleted_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_user_identity_provider_sub: %w", err)
	}
	return nil
}

func EnsureQuizIndexes(db *gorm.DB) error {
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_quiz_owner_type ON quiz(owner_user_id, type);`).Error; err != nil {
		return fmt.Errorf("create idx_quiz_owner_type: %w", err)
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_question_quiz_position ON question(quiz_id, position, created_at);`).Error; err != nil {
		return fmt.Errorf("create idx_question_quiz_position: %w", err)
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_page_scan_quiz_position ON page_scan(quiz_id, page_position);`).Error; err != nil {
		return fmt.Errorf("create idx_page_scan_quiz_position: %w", err)
	}
	return nil
}

// EnsurePracticeIndexes creates the partial unique index that allows at most
// one in_progress session per (user, quiz).
func EnsurePracticeIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_prep_session_user_quiz_active
		ON prep_session(user_id, quiz_id)
		WHERE status = 'in_progress' AND deleted_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_prep_session_user_quiz_active: %w", err)
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_answer_session_question ON answer(prep_session_id, question_id);`).Error; err != nil {
		return fmt.Errorf("create idx_answer_session_question: %w", err)
	}
	return nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...", "driver", s.driver)
	if s.driver == DriverPostgres {
		if err := s.db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
			return fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
		}
	}
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	s.log.Info("Auto migration complete")
	return nil
}
