package curriculum

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/curriculum-backend/internal/data/repos/testutil"
	domain "github.com/yungbote/curriculum-backend/internal/domain/curriculum"
)

func TestOutcomeRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewOutcomeRepo(db, testutil.Logger(t))

	importID := uuid.New()
	rows := testutil.Outcomes(3, "Mathematics", "Year 5")
	rows = append(rows, testutil.Outcomes(2, "English", "Year 6")...)
	rows = append(rows, &domain.Outcome{LearningArea: "Science", Level: "Year 5", Subject: "Physics_Advanced", ContentDescription: "Forces"})
	for _, o := range rows {
		o.ImportID = importID
	}
	if err := repo.InsertBatch(ctx, tx, rows); err != nil {
		t.Fatalf("InsertBatch: %v", err)
	}
	for _, o := range rows {
		if o.ID == uuid.Nil {
			t.Fatalf("InsertBatch: id not assigned")
		}
	}

	if n, err := repo.CountByImport(ctx, tx, importID); err != nil || n != 6 {
		t.Fatalf("CountByImport: n=%d err=%v", n, err)
	}

	got, err := repo.List(ctx, tx, OutcomeFilter{LearningArea: "MATH", Level: "5"})
	if err != nil || len(got) != 3 {
		t.Fatalf("List math/5: err=%v len=%d", err, len(got))
	}
	if got[0].SourceRow != 2 || len(got[0].Topics) != 1 || got[0].Topics[0] != "outcome" {
		t.Fatalf("List math/5: unexpected first row %+v", got[0])
	}

	if got, err := repo.List(ctx, tx, OutcomeFilter{Level: "year 5", Limit: 2}); err != nil || len(got) != 2 {
		t.Fatalf("List limit: err=%v len=%d", err, len(got))
	}
	if got, err := repo.List(ctx, tx, OutcomeFilter{LearningArea: "physics"}); err != nil || len(got) != 1 {
		t.Fatalf("List by subject: err=%v len=%d", err, len(got))
	}
	// _ and % are literal characters, not wildcards.
	if got, err := repo.List(ctx, tx, OutcomeFilter{LearningArea: "s_a"}); err != nil || len(got) != 1 {
		t.Fatalf("List escaped underscore: err=%v len=%d", err, len(got))
	}
	if got, err := repo.List(ctx, tx, OutcomeFilter{LearningArea: "%"}); err != nil || len(got) != 0 {
		t.Fatalf("List escaped percent: err=%v len=%d", err, len(got))
	}
	if got, err := repo.List(ctx, tx, OutcomeFilter{}); err != nil || len(got) != 6 {
		t.Fatalf("List all: err=%v len=%d", err, len(got))
	}
}

func TestOutcomeRepoInsertBatchEmpty(t *testing.T) {
	db := testutil.DB(t)
	repo := NewOutcomeRepo(db, testutil.Logger(t))
	if err := repo.InsertBatch(context.Background(), nil, nil); err != nil {
		t.Fatalf("InsertBatch(nil): %v", err)
	}
	got, err := repo.List(context.Background(), nil, OutcomeFilter{})
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("List empty: got=%v err=%v", got, err)
	}
}

func TestOutcomeRepoDuplicateIDFails(t *testing.T) {
	db := testutil.DB(t)
	repo := NewOutcomeRepo(db, testutil.Logger(t))
	ctx := context.Background()

	rows := testutil.Outcomes(2, "Arts", "Year 1")
	rows[1].ID = uuid.New()
	rows[0].ID = rows[1].ID
	if err := repo.InsertBatch(ctx, nil, rows); err == nil {
		t.Fatalf("InsertBatch: expected primary key violation")
	}
}
