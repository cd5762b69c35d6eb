package quiz

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/quizprep-backend/internal/data/repos/testutil"
	types "github.com/yungbote/quizprep-backend/internal/domain"
	"github.com/yungbote/quizprep-backend/internal/pkg/dbctx"
)

func TestQuizRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	owner := testutil.SeedUser(t, ctx, tx, "")
	repo := NewQuizRepo(db, testutil.Logger(t))

	created, err := repo.Create(dbc, []*types.Quiz{
		{OwnerUserID: owner.ID, Title: "Biology", Type: types.QuizTypeQuestions},
		{OwnerUserID: owner.ID, Title: "German", Type: types.QuizTypeLanguage, Language: "de"},
	})
	if err != nil || len(created) != 2 {
		t.Fatalf("Create: got=%d err=%v", len(created), err)
	}

	got, err := repo.GetByID(dbc, created[1].ID)
	if err != nil || got == nil || got.Language != "de" {
		t.Fatalf("GetByID: got=%+v err=%v", got, err)
	}
	if missing, err := repo.GetByID(dbc, uuid.New()); err != nil || missing != nil {
		t.Fatalf("GetByID missing: got=%+v err=%v", missing, err)
	}

	all, err := repo.ListByOwner(dbc, owner.ID, "")
	if err != nil || len(all) != 2 {
		t.Fatalf("ListByOwner all: want=2 got=%d err=%v", len(all), err)
	}
	lang, err := repo.ListByOwner(dbc, owner.ID, types.QuizTypeLanguage)
	if err != nil || len(lang) != 1 || lang[0].ID != created[1].ID {
		t.Fatalf("ListByOwner language: got=%+v err=%v", lang, err)
	}

	if err := repo.UpdateTitle(dbc, created[0].ID, "Cells"); err != nil {
		t.Fatalf("UpdateTitle: %v", err)
	}
	got, _ = repo.GetByID(dbc, created[0].ID)
	if got.Title != "Cells" {
		t.Fatalf("title: want=Cells got=%s", got.Title)
	}
}

func TestQuestionRepo_Ordering(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	owner := testutil.SeedUser(t, ctx, tx, "")
	qz := testutil.SeedQuiz(t, ctx, tx, owner.ID, types.QuizTypeQuestions)
	repo := NewQuestionRepo(db, testutil.Logger(t))

	maxPos, err := repo.MaxPosition(dbc, qz.ID)
	if err != nil || maxPos != -1 {
		t.Fatalf("MaxPosition empty: want=-1 got=%d err=%v", maxPos, err)
	}

	base := time.Now().UTC()
	_, err = repo.Create(dbc, []*types.Question{
		{QuizID: qz.ID, Position: 2, Prompt: "third", CreatedAt: base},
		{QuizID: qz.ID, Position: 0, Prompt: "first", CreatedAt: base},
		{QuizID: qz.ID, Position: 1, Prompt: "second-late", CreatedAt: base.Add(time.Second)},
		{QuizID: qz.ID, Position: 1, Prompt: "second-early", CreatedAt: base},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	list, err := repo.ListByQuiz(dbc, qz.ID)
	if err != nil {
		t.Fatalf("ListByQuiz: %v", err)
	}
	want := []string{"first", "second-early", "second-late", "third"}
	if len(list) != len(want) {
		t.Fatalf("ListByQuiz: want=%d got=%d", len(want), len(list))
	}
	for i, q := range list {
		if q.Prompt != want[i] {
			t.Fatalf("ListByQuiz[%d]: want=%s got=%s", i, want[i], q.Prompt)
		}
	}

	maxPos, err = repo.MaxPosition(dbc, qz.ID)
	if err != nil || maxPos != 2 {
		t.Fatalf("MaxPosition: want=2 got=%d err=%v", maxPos, err)
	}

	got, err := repo.GetByID(dbc, list[0].ID)
	if err != nil || got == nil || got.QuizID != qz.ID {
		t.Fatalf("GetByID: got=%+v err=%v", got, err)
	}
}

func TestPageScanRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	owner := testutil.SeedUser(t, ctx, tx, "")
	qz := testutil.SeedQuiz(t, ctx, tx, owner.ID, types.QuizTypeQuestions)
	repo := NewPageScanRepo(db, testutil.Logger(t))

	if _, err := repo.Create(dbc, []*types.PageScan{
		{QuizID: qz.ID, PagePosition: 1, StorageKey: "b.png"},
		{QuizID: qz.ID, PagePosition: 0, StorageKey: "a.png"},
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	list, err := repo.ListByQuiz(dbc, qz.ID)
	if err != nil || len(list) != 2 {
		t.Fatalf("ListByQuiz: want=2 got=%d err=%v", len(list), err)
	}
	if list[0].StorageKey != "a.png" {
		t.Fatalf("ListByQuiz order: want=a.png got=%s", list[0].StorageKey)
	}
}
