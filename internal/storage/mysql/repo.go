package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Aadit-17/RevEase/internal/domain"
)

// updatable columns for partial updates; anything else is rejected.
var updatableColumns = map[string]bool{
	"sentiment": true,
	"reply":     true,
	"topic":     true,
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// Insert writes a new review and reads the stored row back so the caller
// sees the backend-assigned id and created_at.
func (r *Repo) Insert(ctx context.Context, rc domain.ReviewCreate) (domain.Review, error) {
	res, err := r.db.ExecContext(ctx, insertReviewSQL,
		rc.SessionID.String(),
		rc.Location,
		rc.Rating,
		rc.Text,
		rc.Date.UTC().Format("2006-01-02 15:04:05.000000"),
		valStr(rc.Topic),
	)
	if err != nil {
		return domain.Review{}, fmt.Errorf("insert review: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Review{}, fmt.Errorf("insert review id: %w", err)
	}
	return r.Get(ctx, id, rc.SessionID)
}

func (r *Repo) Get(ctx context.Context, id int64, session uuid.UUID) (domain.Review, error) {
	row := r.db.QueryRowContext(ctx, getReviewSQL, id, session.String())
	rv, err := scanReview(row)
	if err == sql.ErrNoRows {
		return domain.Review{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Review{}, err
	}
	return rv, nil
}

// List applies the optional conjunctive filters and 1-indexed pagination.
// Total reflects the filtered set before pagination.
func (r *Repo) List(ctx context.Context, session uuid.UUID, f domain.ReviewFilter, page, pageSize int) (domain.ReviewPage, error) {
	where := []string{"session_id = ?"}
	args := []any{session.String()}

	if f.Location != nil && *f.Location != "" {
		where = append(where, "location = ?")
		args = append(args, *f.Location)
	}
	if f.Sentiment != nil && *f.Sentiment != "" {
		where = append(where, "sentiment = ?")
		args = append(args, *f.Sentiment)
	}
	if f.Topic != nil && *f.Topic != "" && *f.Topic != domain.TopicAll {
		where = append(where, "topic = ?")
		args = append(args, *f.Topic)
	}
	if f.Text != nil && *f.Text != "" {
		where = append(where, "LOWER(`text`) LIKE ?")
		args = append(args, "%"+strings.ToLower(*f.Text)+"%")
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx, countPrefix+cond, args...).Scan(&total); err != nil {
		return domain.ReviewPage{}, fmt.Errorf("count reviews: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize

	rows, err := r.db.QueryContext(ctx, selectPrefix+cond+" ORDER BY id LIMIT ? OFFSET ?",
		append(args, pageSize, offset)...)
	if err != nil {
		return domain.ReviewPage{}, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	items, err := collectReviews(rows)
	if err != nil {
		return domain.ReviewPage{}, err
	}
	return domain.ReviewPage{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

// ListAll loads every review for a session in retrieval order. Search and
// analytics build their corpus from this.
func (r *Repo) ListAll(ctx context.Context, session uuid.UUID) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, listAllSQL, session.String())
	if err != nil {
		return nil, fmt.Errorf("list session reviews: %w", err)
	}
	defer rows.Close()
	return collectReviews(rows)
}

// Update writes a partial set of fields by id. Best-effort from the caller's
// perspective: background callers log failures instead of surfacing them.
func (r *Repo) Update(ctx context.Context, id int64, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	set := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	for _, col := range []string{"sentiment", "reply", "topic"} {
		if v, ok := fields[col]; ok {
			set = append(set, "`"+col+"` = ?")
			args = append(args, v)
		}
	}
	for k := range fields {
		if !updatableColumns[k] {
			return fmt.Errorf("update review: column %q not updatable", k)
		}
	}
	args = append(args, id)
	_, err := r.db.ExecContext(ctx, "UPDATE reviews SET "+strings.Join(set, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("update review %d: %w", id, err)
	}
	return nil
}

// ---- row mapping ----

type rowScanner interface{ Scan(dest ...any) error }

// scanReview maps one row to the domain type. Timestamps arrive from the
// driver as raw strings (no parseTime in the DSN) and go through the
// normalization ladder; the session id is coerced from its string form.
func scanReview(row rowScanner) (domain.Review, error) {
	var (
		rv         domain.Review
		sessionRaw string
		dateRaw    sql.NullString
		createdRaw sql.NullString
		topic      sql.NullString
		sentiment  sql.NullString
		reply      sql.NullString
	)
	if err := row.Scan(
		&rv.ID,
		&sessionRaw,
		&rv.Location,
		&rv.Rating,
		&rv.Text,
		&dateRaw,
		&topic,
		&sentiment,
		&reply,
		&createdRaw,
	); err != nil {
		return domain.Review{}, err
	}

	sid, err := uuid.Parse(sessionRaw)
	if err != nil {
		return domain.Review{}, fmt.Errorf("scan review %d: bad session id %q: %w", rv.ID, sessionRaw, err)
	}
	rv.SessionID = sid

	if dateRaw.Valid {
		rv.Date = parseTime(dateRaw.String)
	} else {
		rv.Date = time.Now().UTC()
	}
	if createdRaw.Valid {
		rv.CreatedAt = parseTime(createdRaw.String)
	} else {
		rv.CreatedAt = time.Now().UTC()
	}
	if topic.Valid {
		s := topic.String
		rv.Topic = &s
	}
	if sentiment.Valid {
		s := sentiment.String
		rv.Sentiment = &s
	}
	if reply.Valid {
		s := reply.String
		rv.Reply = &s
	}
	return rv, nil
}

func collectReviews(rows *sql.Rows) ([]domain.Review, error) {
	var out []domain.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
