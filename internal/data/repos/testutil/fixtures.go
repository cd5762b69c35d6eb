package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/quizprep-backend/internal/domain"
	"github.com/yungbote/quizprep-backend/internal/domain/practice"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	if email == "" {
		email = uuid.NewString() + "@example.com"
	}
	u := &types.User{
		ID:          uuid.New(),
		Email:       email,
		DisplayName: "Test User",
		FirstName:   "A",
		LastName:    "B",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedQuiz(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, quizType string) *types.Quiz {
	tb.Helper()
	q := &types.Quiz{
		ID:          uuid.New(),
		OwnerUserID: ownerID,
		Title:       "quiz",
		Type:        quizType,
	}
	if quizType == types.QuizTypeLanguage {
		q.Language = "de"
	}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed quiz: %v", err)
	}
	return q
}

func SeedQuestion(tb testing.TB, ctx context.Context, tx *gorm.DB, quizID uuid.UUID, position int, prompt string) *types.Question {
	tb.Helper()
	q := &types.Question{
		ID:              uuid.New(),
		QuizID:          quizID,
		Position:        position,
		Prompt:          prompt,
		ReferenceAnswer: "ref " + prompt,
		Difficulty:      "medium",
	}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed question: %v", err)
	}
	return q
}

func SeedSession(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, quizID uuid.UUID, status types.SessionStatus) *types.PrepSession {
	tb.Helper()
	s := &types.PrepSession{
		ID:         uuid.New(),
		UserID:     userID,
		QuizID:     quizID,
		Status:     status,
		StartTime:  time.Now().UTC(),
		AnswerMode: types.AnswerModeText,
	}
	if status.Terminal() {
		s.EndTime = PtrTime(time.Now().UTC())
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed session: %v", err)
	}
	return s
}

func SeedAnswer(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, sessionID, questionID uuid.UUID, scores map[string]float64) *types.Answer {
	tb.Helper()
	a := &types.Answer{
		ID:            uuid.New(),
		UserID:        userID,
		QuestionID:    questionID,
		PrepSessionID: sessionID,
		Content:       "answer",
		Scores:        practice.EncodeScores(scores),
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed answer: %v", err)
	}
	return a
}

func PtrUUID(id uuid.UUID) *uuid.UUID { return &id }

func PtrTime(t time.Time) *time.Time { return &t }
