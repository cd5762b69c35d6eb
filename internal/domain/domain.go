package domain

import (
	"github.com/yungbote/quizprep-backend/internal/domain/auth"
	"github.com/yungbote/quizprep-backend/internal/domain/practice"
	"github.com/yungbote/quizprep-backend/internal/domain/quiz"
	"github.com/yungbote/quizprep-backend/internal/domain/user"
)

const (
	QuizTypeQuestions = quiz.TypeQuestions
	QuizTypeLanguage  = quiz.TypeLanguage

	SessionInProgress = practice.StatusInProgress
	SessionCompleted  = practice.StatusCompleted
	SessionAbandoned  = practice.StatusAbandoned

	AnswerModeText  = practice.AnswerModeText
	AnswerModeAudio = practice.AnswerModeAudio
)

type User = user.User
type UserIdentity = auth.UserIdentity

type Quiz = quiz.Quiz
type Question = quiz.Question
type PageScan = quiz.PageScan

type SessionStatus = practice.Status
type PrepSession = practice.PrepSession
type Answer = practice.Answer

var (
	ValidQuizType       = quiz.ValidType
	NormalizeDifficulty = quiz.NormalizeDifficulty
	ValidAnswerMode     = practice.ValidAnswerMode
)
