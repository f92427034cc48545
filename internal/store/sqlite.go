package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/prepdeck/backend/internal/domain/category"
	"github.com/prepdeck/backend/internal/domain/knowledge"
	"github.com/prepdeck/backend/internal/domain/question"
	"github.com/prepdeck/backend/internal/domain/response"
)

const schema = `
CREATE TABLE IF NOT EXISTS categories (
    id TEXT PRIMARY KEY,
    subject TEXT NOT NULL,
    content TEXT NOT NULL,
    concept TEXT NOT NULL,
    general_weight REAL NOT NULL DEFAULT 1,
    color TEXT,
    icon TEXT
);

CREATE TABLE IF NOT EXISTS questions (
    id TEXT PRIMARY KEY,
    code TEXT NOT NULL,
    text TEXT NOT NULL,
    options TEXT NOT NULL,
    rationale TEXT,
    context TEXT,
    passage_id TEXT,
    category_id TEXT NOT NULL,
    difficulty INTEGER NOT NULL DEFAULT 1,
    type_tags TEXT NOT NULL DEFAULT '[]',
    state_tags TEXT NOT NULL DEFAULT '[]',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (category_id) REFERENCES categories(id)
);

CREATE TABLE IF NOT EXISTS knowledge_profiles (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    category_id TEXT NOT NULL,
    correct_count INTEGER NOT NULL DEFAULT 0,
    attempt_count INTEGER NOT NULL DEFAULT 0,
    last_attempt_at TIMESTAMP,
    concept_mastery REAL,
    content_mastery REAL,
    UNIQUE (user_id, category_id),
    FOREIGN KEY (category_id) REFERENCES categories(id)
);

CREATE TABLE IF NOT EXISTS user_responses (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    question_id TEXT NOT NULL,
    answer TEXT NOT NULL,
    correct BOOLEAN NOT NULL,
    created_at TIMESTAMP NOT NULL,
    FOREIGN KEY (question_id) REFERENCES questions(id)
);

CREATE INDEX IF NOT EXISTS idx_responses_user_time
    ON user_responses (user_id, created_at);
`

type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLite opens (and if needed initializes) the database at dbPath.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	// The pragma must live in the DSN: PRAGMA foreign_keys is per
	// connection, and an Exec would only reach one connection of the pool.
	db, err := sqlx.Connect("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ============================================================================
// Categories
// ============================================================================

type categoryRow struct {
	ID            string         `db:"id"`
	Subject       string         `db:"subject"`
	Content       string         `db:"content"`
	Concept       string         `db:"concept"`
	GeneralWeight float64        `db:"general_weight"`
	Color         sql.NullString `db:"color"`
	Icon          sql.NullString `db:"icon"`
}

func (r categoryRow) toDomain() *category.Category {
	cat := &category.Category{
		ID:            r.ID,
		Subject:       r.Subject,
		Content:       r.Content,
		Concept:       r.Concept,
		GeneralWeight: r.GeneralWeight,
	}
	if r.Color.Valid {
		cat.Color = &r.Color.String
	}
	if r.Icon.Valid {
		cat.Icon = &r.Icon.String
	}
	return cat
}

func (s *SQLiteStore) SaveCategory(ctx context.Context, cat *category.Category) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, subject, content, concept, general_weight, color, icon)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		cat.ID, cat.Subject, cat.Content, cat.Concept, cat.GeneralWeight, cat.Color, cat.Icon,
	)
	return err
}

func (s *SQLiteStore) GetCategory(ctx context.Context, id string) (*category.Category, error) {
	var row categoryRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM categories WHERE id = ?", id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (s *SQLiteStore) ListCategories(ctx context.Context) ([]*category.Category, error) {
	var rows []categoryRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT * FROM categories ORDER BY subject, content, concept"); err != nil {
		return nil, err
	}
	cats := make([]*category.Category, len(rows))
	for i, r := range rows {
		cats[i] = r.toDomain()
	}
	return cats, nil
}

func (s *SQLiteStore) UpdateCategory(ctx context.Context, cat *category.Category) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE categories SET subject = ?, content = ?, concept = ?, general_weight = ?, color = ?, icon = ?
		 WHERE id = ?`,
		cat.Subject, cat.Content, cat.Concept, cat.GeneralWeight, cat.Color, cat.Icon, cat.ID,
	)
	if err != nil {
		return err
	}
	return requireRows(result)
}

// DeleteCategory removes the category together with its questions, their
// recorded responses and every knowledge profile for it.
func (s *SQLiteStore) DeleteCategory(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM user_responses
		 WHERE question_id IN (SELECT id FROM questions WHERE category_id = ?)`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM questions WHERE category_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM knowledge_profiles WHERE category_id = ?", id); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return err
	}
	if err := requireRows(result); err != nil {
		return err
	}

	return tx.Commit()
}

// ============================================================================
// Questions
// ============================================================================

type questionRow struct {
	ID         string         `db:"id"`
	Code       string         `db:"code"`
	Text       string         `db:"text"`
	Options    string         `db:"options"`
	Rationale  sql.NullString `db:"rationale"`
	Context    sql.NullString `db:"context"`
	PassageID  sql.NullString `db:"passage_id"`
	CategoryID string         `db:"category_id"`
	Difficulty int            `db:"difficulty"`
	TypeTags   string         `db:"type_tags"`
	StateTags  string         `db:"state_tags"`
	CreatedAt  time.Time      `db:"created_at"`
}

func (r questionRow) toDomain() (*question.Question, error) {
	q := &question.Question{
		ID:         r.ID,
		Code:       r.Code,
		Text:       r.Text,
		Options:    r.Options,
		CategoryID: r.CategoryID,
		Difficulty: r.Difficulty,
		CreatedAt:  r.CreatedAt,
	}
	if r.Rationale.Valid {
		q.Rationale = &r.Rationale.String
	}
	if r.Context.Valid {
		q.Context = &r.Context.String
	}
	if r.PassageID.Valid {
		q.PassageID = &r.PassageID.String
	}
	if err := json.Unmarshal([]byte(r.TypeTags), &q.TypeTags); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(r.StateTags), &q.StateTags); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *SQLiteStore) SaveQuestion(ctx context.Context, q *question.Question) error {
	typeTags, err := json.Marshal(tagsOrEmpty(q.TypeTags))
	if err != nil {
		return err
	}
	stateTags, err := json.Marshal(tagsOrEmpty(q.StateTags))
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO questions (id, code, text, options, rationale, context, passage_id, category_id, difficulty, type_tags, state_tags, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.Code, q.Text, q.Options, q.Rationale, q.Context, q.PassageID,
		q.CategoryID, q.Difficulty, string(typeTags), string(stateTags), time.Now().UTC(),
	)
	return err
}

func (s *SQLiteStore) GetQuestion(ctx context.Context, id string) (*question.Question, error) {
	var row questionRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM questions WHERE id = ?", id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain()
}

func (s *SQLiteStore) ListQuestionsByCategory(ctx context.Context, categoryID string) ([]*question.Question, error) {
	var rows []questionRow
	err := s.db.SelectContext(ctx, &rows, "SELECT * FROM questions WHERE category_id = ? ORDER BY code", categoryID)
	if err != nil {
		return nil, err
	}
	questions := make([]*question.Question, len(rows))
	for i, r := range rows {
		if questions[i], err = r.toDomain(); err != nil {
			return nil, err
		}
	}
	return questions, nil
}

// DeleteQuestion removes the question and any responses recorded
// against it.
func (s *SQLiteStore) DeleteQuestion(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM user_responses WHERE question_id = ?", id); err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, "DELETE FROM questions WHERE id = ?", id)
	if err != nil {
		return err
	}
	if err := requireRows(result); err != nil {
		return err
	}

	return tx.Commit()
}

// ============================================================================
// Knowledge profiles
// ============================================================================

type profileRow struct {
	ID             string          `db:"id"`
	UserID         string          `db:"user_id"`
	CategoryID     string          `db:"category_id"`
	CorrectCount   int             `db:"correct_count"`
	AttemptCount   int             `db:"attempt_count"`
	LastAttemptAt  sql.NullTime    `db:"last_attempt_at"`
	ConceptMastery sql.NullFloat64 `db:"concept_mastery"`
	ContentMastery sql.NullFloat64 `db:"content_mastery"`
}

func (r profileRow) toDomain() *knowledge.Profile {
	p := &knowledge.Profile{
		ID:           r.ID,
		UserID:       r.UserID,
		CategoryID:   r.CategoryID,
		CorrectCount: r.CorrectCount,
		AttemptCount: r.AttemptCount,
	}
	if r.LastAttemptAt.Valid {
		p.LastAttemptAt = r.LastAttemptAt.Time
	}
	if r.ConceptMastery.Valid {
		p.ConceptMastery = &r.ConceptMastery.Float64
	}
	if r.ContentMastery.Valid {
		p.ContentMastery = &r.ContentMastery.Float64
	}
	return p
}

func (s *SQLiteStore) GetProfile(ctx context.Context, userID, categoryID string) (*knowledge.Profile, error) {
	var row profileRow
	err := s.db.GetContext(ctx, &row,
		"SELECT * FROM knowledge_profiles WHERE user_id = ? AND category_id = ?", userID, categoryID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (s *SQLiteStore) UpsertProfile(ctx context.Context, p *knowledge.Profile) error {
	var lastAttempt any
	if !p.LastAttemptAt.IsZero() {
		lastAttempt = p.LastAttemptAt
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO knowledge_profiles (id, user_id, category_id, correct_count, attempt_count, last_attempt_at, concept_mastery, content_mastery)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, category_id) DO UPDATE SET
		     correct_count = excluded.correct_count,
		     attempt_count = excluded.attempt_count,
		     last_attempt_at = excluded.last_attempt_at,
		     concept_mastery = excluded.concept_mastery,
		     content_mastery = excluded.content_mastery`,
		p.ID, p.UserID, p.CategoryID, p.CorrectCount, p.AttemptCount,
		lastAttempt, p.ConceptMastery, p.ContentMastery,
	)
	return err
}

func (s *SQLiteStore) ListProfiles(ctx context.Context) ([]*knowledge.Profile, error) {
	var rows []profileRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT * FROM knowledge_profiles"); err != nil {
		return nil, err
	}
	profiles := make([]*knowledge.Profile, len(rows))
	for i, r := range rows {
		profiles[i] = r.toDomain()
	}
	return profiles, nil
}

// ============================================================================
// Responses
// ============================================================================

type responseRow struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	QuestionID string    `db:"question_id"`
	Answer     string    `db:"answer"`
	Correct    bool      `db:"correct"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r responseRow) toDomain() response.UserResponse {
	return response.UserResponse{
		ID:         r.ID,
		UserID:     r.UserID,
		QuestionID: r.QuestionID,
		Answer:     r.Answer,
		Correct:    r.Correct,
		CreatedAt:  r.CreatedAt,
	}
}

func (s *SQLiteStore) SaveResponse(ctx context.Context, r *response.UserResponse) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_responses (id, user_id, question_id, answer, correct, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.QuestionID, r.Answer, r.Correct, r.CreatedAt,
	)
	return err
}

func (s *SQLiteStore) ResponsesForUserCategory(ctx context.Context, userID, categoryID string, since time.Time) ([]response.UserResponse, error) {
	var rows []responseRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT r.* FROM user_responses r
		 JOIN questions q ON q.id = r.question_id
		 WHERE r.user_id = ? AND q.category_id = ? AND r.created_at >= ?
		 ORDER BY r.created_at`,
		userID, categoryID, since,
	)
	if err != nil {
		return nil, err
	}
	responses := make([]response.UserResponse, len(rows))
	for i, r := range rows {
		responses[i] = r.toDomain()
	}
	return responses, nil
}

// ============================================================================
// Helpers
// ============================================================================

func requireRows(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
