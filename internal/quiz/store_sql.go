package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SQLStore persists quizzes and attempts over database/sql. Questions and
// answers are embedded JSON documents so one attempt mutation is one row
// write.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore works against either supported driver: the $N placeholders and
// column types below are valid for both pgx and modernc sqlite.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) PutQuiz(ctx context.Context, q Quiz) error {
	qj, err := json.Marshal(q.Questions)
	if err != nil {
		return err
	}
	if q.CreatedAt == 0 {
		q.CreatedAt = time.Now().Unix()
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO quizzes
		(id,org_id,course_id,owner_id,title,description,status,time_limit_min,max_attempts,passing_score,total_points,questions_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (id) DO UPDATE SET
			title=EXCLUDED.title, description=EXCLUDED.description, status=EXCLUDED.status,
			time_limit_min=EXCLUDED.time_limit_min, max_attempts=EXCLUDED.max_attempts,
			passing_score=EXCLUDED.passing_score, total_points=EXCLUDED.total_points,
			questions_json=EXCLUDED.questions_json`,
		q.ID, q.OrgID, q.CourseID, q.OwnerID, q.Title, q.Description, string(q.Status),
		q.TimeLimit, q.MaxAttempts, q.PassingScore, q.TotalPoints, string(qj), q.CreatedAt)
	return err
}

func (s *SQLStore) GetQuiz(ctx context.Context, orgID, id string) (Quiz, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,org_id,course_id,owner_id,title,description,status,
		time_limit_min,max_attempts,passing_score,total_points,questions_json,created_at
		FROM quizzes WHERE id=$1 AND org_id=$2`, id, orgID)
	var q Quiz
	var status, qjson string
	err := row.Scan(&q.ID, &q.OrgID, &q.CourseID, &q.OwnerID, &q.Title, &q.Description, &status,
		&q.TimeLimit, &q.MaxAttempts, &q.PassingScore, &q.TotalPoints, &qjson, &q.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return Quiz{}, fmt.Errorf("quiz %s: %w", id, ErrNotFound)
		}
		return Quiz{}, err
	}
	q.Status = Status(status)
	if err := json.Unmarshal([]byte(qjson), &q.Questions); err != nil {
		return Quiz{}, err
	}
	return q, nil
}

const attemptCols = `id,org_id,quiz_id,user_id,status,started_at,completed_at,expires_at,
	score,percentage,passed,graded_at,graded_by,answers_json`

func (s *SQLStore) CreateAttempt(ctx context.Context, a Attempt) error {
	aj, err := json.Marshal(a.Answers)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO quiz_attempts (`+attemptCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		a.ID, a.OrgID, a.QuizID, a.UserID, string(a.Status), a.StartedAt, a.CompletedAt, a.ExpiresAt,
		a.Score, a.PercentageScore, boolToInt(a.Passed), a.GradedAt, a.GradedBy, string(aj))
	return err
}

func (s *SQLStore) SaveAttempt(ctx context.Context, a Attempt) error {
	aj, err := json.Marshal(a.Answers)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE quiz_attempts SET
		status=$1, completed_at=$2, expires_at=$3, score=$4, percentage=$5, passed=$6,
		graded_at=$7, graded_by=$8, answers_json=$9
		WHERE id=$10 AND org_id=$11`,
		string(a.Status), a.CompletedAt, a.ExpiresAt, a.Score, a.PercentageScore, boolToInt(a.Passed),
		a.GradedAt, a.GradedBy, string(aj), a.ID, a.OrgID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("attempt %s: %w", a.ID, ErrNotFound)
	}
	return nil
}

func (s *SQLStore) GetAttempt(ctx context.Context, orgID, id string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+attemptCols+` FROM quiz_attempts
		WHERE id=$1 AND org_id=$2`, id, orgID)
	return scanAttempt(row)
}

func (s *SQLStore) GetAttemptForUser(ctx context.Context, orgID, id, userID string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+attemptCols+` FROM quiz_attempts
		WHERE id=$1 AND org_id=$2 AND user_id=$3`, id, orgID, userID)
	return scanAttempt(row)
}

func (s *SQLStore) FindInProgress(ctx context.Context, orgID, quizID, userID string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+attemptCols+` FROM quiz_attempts
		WHERE org_id=$1 AND quiz_id=$2 AND user_id=$3 AND status='in_progress'
		ORDER BY started_at DESC LIMIT 1`, orgID, quizID, userID)
	return scanAttempt(row)
}

func (s *SQLStore) CountFinished(ctx context.Context, orgID, quizID, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quiz_attempts
		WHERE org_id=$1 AND quiz_id=$2 AND user_id=$3 AND status IN ('completed','graded')`,
		orgID, quizID, userID).Scan(&n)
	return n, err
}

func (s *SQLStore) ListAttempts(ctx context.Context, orgID string, opts AttemptListOpts) ([]Attempt, error) {
	where := []string{"org_id=$1"}
	args := []interface{}{orgID}
	add := func(cond string, v interface{}) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if opts.QuizID != "" {
		add("quiz_id=$%d", opts.QuizID)
	}
	if opts.UserID != "" {
		add("user_id=$%d", opts.UserID)
	}
	if opts.Status != "" {
		add("status=$%d", opts.Status)
	}
	order := "started_at DESC"
	if opts.Sort == "completed_at" {
		order = "completed_at DESC"
	}
	limit := opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}
	q := `SELECT ` + attemptCols + ` FROM quiz_attempts WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY ` + order + fmt.Sprintf(` LIMIT %d OFFSET %d`, limit, offset)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAttempt(row rowScanner) (Attempt, error) {
	var a Attempt
	var status, ajson string
	var passed int
	err := row.Scan(&a.ID, &a.OrgID, &a.QuizID, &a.UserID, &status, &a.StartedAt, &a.CompletedAt,
		&a.ExpiresAt, &a.Score, &a.PercentageScore, &passed, &a.GradedAt, &a.GradedBy, &ajson)
	if err != nil {
		if err == sql.ErrNoRows {
			return Attempt{}, fmt.Errorf("attempt: %w", ErrNotFound)
		}
		return Attempt{}, err
	}
	a.Status = AttemptStatus(status)
	a.Passed = passed != 0
	if err := json.Unmarshal([]byte(ajson), &a.Answers); err != nil {
		a.Answers = nil
	}
	return a, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
