package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/quizprep-backend/internal/data/repos"
	"github.com/yungbote/quizprep-backend/internal/platform/logger"
)

type Repos struct {
	User         repos.UserRepo
	UserIdentity repos.UserIdentityRepo
	Quiz         repos.QuizRepo
	Question     repos.QuestionRepo
	PageScan     repos.PageScanRepo
	PrepSession  repos.PrepSessionRepo
	Answer       repos.AnswerRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:         repos.NewUserRepo(db, log),
		UserIdentity: repos.NewUserIdentityRepo(db, log),
		Quiz:         repos.NewQuizRepo(db, log),
		Question:     repos.NewQuestionRepo(db, log),
		PageScan:     repos.NewPageScanRepo(db, log),
		PrepSession:  repos.NewPrepSessionRepo(db, log),
		Answer:       repos.NewAnswerRepo(db, log),
	}
}
