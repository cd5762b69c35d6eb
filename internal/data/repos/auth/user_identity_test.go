package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/quizprep-backend/internal/data/repos/testutil"
	types "github.com/yungbote/quizprep-backend/internal/domain"
	"github.com/yungbote/quizprep-backend/internal/pkg/dbctx"
)

func TestUserIdentityRepo_Upsert(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	u := testutil.SeedUser(t, ctx, tx, "")
	repo := NewUserIdentityRepo(db, testutil.Logger(t))

	first, err := repo.Upsert(dbc, &types.UserIdentity{
		UserID:      u.ID,
		Provider:    "google",
		ProviderSub: "sub-1",
		Email:       "old@example.com",
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if first == nil || first.ID == uuid.Nil {
		t.Fatalf("Upsert: expected stored identity, got %+v", first)
	}

	second, err := repo.Upsert(dbc, &types.UserIdentity{
		UserID:        u.ID,
		Provider:      "google",
		ProviderSub:   "sub-1",
		Email:         "new@example.com",
		EmailVerified: true,
	})
	if err != nil {
		t.Fatalf("Upsert again: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("identity id: want=%v got=%v", first.ID, second.ID)
	}
	if second.Email != "new@example.com" || !second.EmailVerified {
		t.Fatalf("identity not refreshed: %+v", second)
	}

	missing, err := repo.GetByProviderSub(dbc, "google", "nope")
	if err != nil || missing != nil {
		t.Fatalf("GetByProviderSub missing: got=%+v err=%v", missing, err)
	}

	byUser, err := repo.GetByUserIDs(dbc, []uuid.UUID{u.ID})
	if err != nil || len(byUser) != 1 {
		t.Fatalf("GetByUserIDs: want=1 got=%d err=%v", len(byUser), err)
	}
}
