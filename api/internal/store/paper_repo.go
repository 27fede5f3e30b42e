package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"question-builder/api/internal/paper"
)

var ErrNotFound = sql.ErrNoRows

const schema = `
create table if not exists extracted_papers (
  id             text primary key,
  created_at     timestamptz not null default now(),
  engine         text not null,
  model          text not null,
  image_hash     text not null,
  image_count    integer not null,
  school_name    text not null default '',
  exam_title     text not null default '',
  subject        text not null default '',
  section_count  integer not null,
  question_count integer not null,
  paper_json     jsonb not null
);
create index if not exists extracted_papers_created_at_idx on extracted_papers (created_at desc);
create index if not exists extracted_papers_image_hash_idx on extracted_papers (image_hash);`

type PaperRepo struct{ DB *sql.DB }

func NewPaperRepo(db *sql.DB) *PaperRepo { return &PaperRepo{DB: db} }

// PaperRecord: одна успешная выгрузка: исходные метаданные запроса + нормализованный документ.
type PaperRecord struct {
	ID         string          `json:"id"`
	CreatedAt  time.Time       `json:"createdAt"`
	Engine     string          `json:"engine"`
	Model      string          `json:"model"`
	ImageHash  string          `json:"imageHash"`
	ImageCount int             `json:"imageCount"`
	Paper      json.RawMessage `json:"paper"`
}

// PaperSummary is a list row without the document body.
type PaperSummary struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"createdAt"`
	Engine        string    `json:"engine"`
	Model         string    `json:"model"`
	SchoolName    string    `json:"schoolName"`
	ExamTitle     string    `json:"examTitle"`
	Subject       string    `json:"subject"`
	SectionCount  int       `json:"sectionCount"`
	QuestionCount int       `json:"questionCount"`
}

// EnsureSchema creates the archive table when it does not exist yet.
func (r *PaperRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, schema)
	return err
}

func (r *PaperRepo) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

// Insert stores rec; p supplies the summary columns.
func (r *PaperRepo) Insert(ctx context.Context, rec PaperRecord, p paper.ExamPaper) error {
	if rec.ID == "" {
		return errors.New("paper record id is empty")
	}
	const q = `
insert into extracted_papers (
  id, engine, model, image_hash, image_count,
  school_name, exam_title, subject, section_count, question_count, paper_json
) values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	_, err := r.DB.ExecContext(ctx, q,
		rec.ID, rec.Engine, rec.Model, rec.ImageHash, rec.ImageCount,
		p.SchoolName, p.ExamTitle, p.Subject, len(p.Sections), p.QuestionCount(), []byte(rec.Paper),
	)
	return err
}

func (r *PaperRepo) Get(ctx context.Context, id string) (*PaperRecord, error) {
	const q = `
select id, created_at, engine, model, image_hash, image_count, paper_json
from extracted_papers
where id = $1`
	var (
		rec PaperRecord
		js  []byte
	)
	err := r.DB.QueryRowContext(ctx, q, id).Scan(
		&rec.ID, &rec.CreatedAt, &rec.Engine, &rec.Model, &rec.ImageHash, &rec.ImageCount, &js)
	if err != nil {
		return nil, err
	}
	rec.Paper = json.RawMessage(js)
	return &rec, nil
}

// List returns the newest papers first. limit is clamped to 1..100 (default 20).
func (r *PaperRepo) List(ctx context.Context, limit, offset int) ([]PaperSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const q = `
select id, created_at, engine, model, school_name, exam_title, subject, section_count, question_count
from extracted_papers
order by created_at desc
limit $1 offset $2`
	rows, err := r.DB.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []PaperSummary{}
	for rows.Next() {
		var s PaperSummary
		if err := rows.Scan(&s.ID, &s.CreatedAt, &s.Engine, &s.Model,
			&s.SchoolName, &s.ExamTitle, &s.Subject, &s.SectionCount, &s.QuestionCount); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// PurgeOlderThan удаляет старые записи, чтобы архив не разрастался.
func (r *PaperRepo) PurgeOlderThan(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, errors.New("olderThan must be > 0")
	}
	cutoff := time.Now().Add(-olderThan)
	const q = `delete from extracted_papers where created_at < $1`
	res, err := r.DB.ExecContext(ctx, q, cutoff)
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}
