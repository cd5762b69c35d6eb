package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/quizprep-backend/internal/data/repos/auth"
	"github.com/yungbote/quizprep-backend/internal/data/repos/practice"
	"github.com/yungbote/quizprep-backend/internal/data/repos/quiz"
	"github.com/yungbote/quizprep-backend/internal/data/repos/user"
	"github.com/yungbote/quizprep-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type UserIdentityRepo = auth.UserIdentityRepo

type QuizRepo = quiz.QuizRepo
type QuestionRepo = quiz.QuestionRepo
type PageScanRepo = quiz.PageScanRepo

type PrepSessionRepo = practice.PrepSessionRepo
type AnswerRepo = practice.AnswerRepo
type StatusChange = practice.StatusChange

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }
func NewUserIdentityRepo(db *gorm.DB, baseLog *logger.Logger) UserIdentityRepo {
	return auth.NewUserIdentityRepo(db, baseLog)
}

func NewQuizRepo(db *gorm.DB, baseLog *logger.Logger) QuizRepo { return quiz.NewQuizRepo(db, baseLog) }
func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	return quiz.NewQuestionRepo(db, baseLog)
}
func NewPageScanRepo(db *gorm.DB, baseLog *logger.Logger) PageScanRepo {
	return quiz.NewPageScanRepo(db, baseLog)
}

func NewPrepSessionRepo(db *gorm.DB, baseLog *logger.Logger) PrepSessionRepo {
	return practice.NewPrepSessionRepo(db, baseLog)
}
func NewAnswerRepo(db *gorm.DB, baseLog *logger.Logger) AnswerRepo {
	return practice.NewAnswerRepo(db, baseLog)
}
