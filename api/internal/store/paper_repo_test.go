package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"github.com/google/uuid"

	"question-builder/api/internal/paper"
)

// testRepo connects to TEST_DATABASE_URL; the tests are skipped when it is not set.
func testRepo(t *testing.T) *PaperRepo {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("open %s: %v", SafeDSNSummary(dsn), err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := NewPaperRepo(db)
	assert.Equal(t, nil, repo.EnsureSchema(ctx))
	return repo
}

func insertPaper(t *testing.T, repo *PaperRepo) PaperRecord {
	t.Helper()
	p := paper.ExamPaper{
		SchoolName: "Govt School",
		ExamTitle:  "Annual",
		Subject:    "Hindi",
		Sections: []paper.Section{
			{Name: "Q.1", Questions: []paper.Question{{Number: 1, Text: "a"}, {Number: 2, Text: "b"}}},
			{Name: "Q.2", Questions: []paper.Question{{Number: 1, Text: "c"}}},
		},
	}
	body, err := json.Marshal(p)
	assert.Equal(t, nil, err)

	rec := PaperRecord{
		ID:         uuid.NewString(),
		Engine:     "gemini",
		Model:      "gemini-2.5-flash",
		ImageHash:  "abc123",
		ImageCount: 2,
		Paper:      body,
	}
	ctx := context.Background()
	assert.Equal(t, nil, repo.Insert(ctx, rec, p))
	t.Cleanup(func() {
		_, _ = repo.DB.ExecContext(ctx, `delete from extracted_papers where id = $1`, rec.ID)
	})
	return rec
}

func TestPaperRepo_InsertGetList(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	rec := insertPaper(t, repo)

	got, err := repo.Get(ctx, rec.ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, "gemini", got.Engine)
	assert.Equal(t, 2, got.ImageCount)
	assert.Equal(t, false, got.CreatedAt.IsZero())

	var p paper.ExamPaper
	assert.Equal(t, nil, json.Unmarshal(got.Paper, &p))
	assert.Equal(t, "Hindi", p.Subject)

	list, err := repo.List(ctx, 100, 0)
	assert.Equal(t, nil, err)
	var found *PaperSummary
	for i := range list {
		if list[i].ID == rec.ID {
			found = &list[i]
		}
	}
	if found == nil {
		t.Fatalf("paper %s missing from list", rec.ID)
	}
	assert.Equal(t, "Govt School", found.SchoolName)
	assert.Equal(t, 2, found.SectionCount)
	assert.Equal(t, 3, found.QuestionCount)
}

func TestPaperRepo_GetMissing(t *testing.T) {
	repo := testRepo(t)
	_, err := repo.Get(context.Background(), uuid.NewString())
	assert.Equal(t, true, errors.Is(err, ErrNotFound))
}

func TestPaperRepo_InsertRequiresID(t *testing.T) {
	repo := testRepo(t)
	err := repo.Insert(context.Background(), PaperRecord{Paper: json.RawMessage(`{}`)}, paper.ExamPaper{})
	assert.NotEqual(t, nil, err)
}

func TestPaperRepo_PurgeOlderThan(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	old := insertPaper(t, repo)
	fresh := insertPaper(t, repo)
	_, err := repo.DB.ExecContext(ctx,
		`update extracted_papers set created_at = now() - interval '40 days' where id = $1`, old.ID)
	assert.Equal(t, nil, err)

	n, err := repo.PurgeOlderThan(ctx, 30*24*time.Hour)
	assert.Equal(t, nil, err)
	assert.Equal(t, true, n >= 1)

	_, err = repo.Get(ctx, old.ID)
	assert.Equal(t, true, errors.Is(err, ErrNotFound))
	_, err = repo.Get(ctx, fresh.ID)
	assert.Equal(t, nil, err)

	_, err = repo.PurgeOlderThan(ctx, 0)
	assert.NotEqual(t, nil, err)
}
