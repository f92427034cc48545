package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/prepdeck/backend/internal/domain/knowledge"
	"github.com/prepdeck/backend/internal/selection"
)

// candidateRow is one question joined with its category and the requesting
// user's knowledge-profile row (all p_* columns null when no profile
// exists yet).
type candidateRow struct {
	questionRow

	CatSubject       string         `db:"cat_subject"`
	CatContent       string         `db:"cat_content"`
	CatConcept       string         `db:"cat_concept"`
	CatGeneralWeight float64        `db:"cat_general_weight"`
	CatColor         sql.NullString `db:"cat_color"`
	CatIcon          sql.NullString `db:"cat_icon"`

	ProfileID       sql.NullString  `db:"p_id"`
	PUserID         sql.NullString  `db:"p_user_id"`
	PCorrectCount   sql.NullInt64   `db:"p_correct_count"`
	PAttemptCount   sql.NullInt64   `db:"p_attempt_count"`
	PLastAttemptAt  sql.NullTime    `db:"p_last_attempt_at"`
	PConceptMastery sql.NullFloat64 `db:"p_concept_mastery"`
	PContentMastery sql.NullFloat64 `db:"p_content_mastery"`
}

// Candidates implements selection.CandidateSource. It runs exactly two
// queries regardless of pool size: one join pass over the filtered
// questions and one windowed fetch of the user's responses to them.
func (s *SQLiteStore) Candidates(ctx context.Context, userID string, f selection.Filters, since time.Time) ([]selection.Candidate, error) {
	query := `
		SELECT q.id, q.code, q.text, q.options, q.rationale, q.context, q.passage_id,
		       q.category_id, q.difficulty, q.type_tags, q.state_tags, q.created_at,
		       c.subject AS cat_subject, c.content AS cat_content, c.concept AS cat_concept,
		       c.general_weight AS cat_general_weight, c.color AS cat_color, c.icon AS cat_icon,
		       p.id AS p_id, p.user_id AS p_user_id,
		       p.correct_count AS p_correct_count, p.attempt_count AS p_attempt_count,
		       p.last_attempt_at AS p_last_attempt_at,
		       p.concept_mastery AS p_concept_mastery, p.content_mastery AS p_content_mastery
		FROM questions q
		JOIN categories c ON c.id = q.category_id
		LEFT JOIN knowledge_profiles p ON p.category_id = q.category_id AND p.user_id = ?`

	conds := make([]string, 0, 6)
	args := []any{userID}

	if f.CategoryID != nil {
		conds = append(conds, "q.category_id = ?")
		args = append(args, *f.CategoryID)
	}
	if f.PassageID != nil {
		conds = append(conds, "q.passage_id = ?")
		args = append(args, *f.PassageID)
	}
	if len(f.Subjects) > 0 {
		conds = append(conds, "c.subject IN (?)")
		args = append(args, f.Subjects)
	}
	if len(f.Contents) > 0 {
		conds = append(conds, "c.content IN (?)")
		args = append(args, f.Contents)
	}
	if len(f.Concepts) > 0 {
		conds = append(conds, "c.concept IN (?)")
		args = append(args, f.Concepts)
	}
	if len(f.TypeTags) > 0 {
		conds = append(conds, "EXISTS (SELECT 1 FROM json_each(q.type_tags) WHERE json_each.value IN (?))")
		args = append(args, f.TypeTags)
	}

	if len(conds) > 0 {
		query += "\n\t\tWHERE " + strings.Join(conds, " AND ")
	}

	query, expanded, err := sqlx.In(query, args...)
	if err != nil {
		return nil, err
	}

	var rows []candidateRow
	if err := s.db.SelectContext(ctx, &rows, query, expanded...); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	candidates := make([]selection.Candidate, len(rows))
	questionIndex := make(map[string]int, len(rows))
	questionIDs := make([]string, len(rows))
	for i, row := range rows {
		c, err := row.toCandidate()
		if err != nil {
			return nil, err
		}
		candidates[i] = c
		questionIndex[row.ID] = i
		questionIDs[i] = row.ID
	}

	respQuery, respArgs, err := sqlx.In(
		`SELECT id, user_id, question_id, answer, correct, created_at
		 FROM user_responses
		 WHERE user_id = ? AND created_at >= ? AND question_id IN (?)`,
		userID, since, questionIDs,
	)
	if err != nil {
		return nil, err
	}

	var respRows []responseRow
	if err := s.db.SelectContext(ctx, &respRows, respQuery, respArgs...); err != nil {
		return nil, err
	}

	for _, r := range respRows {
		idx, ok := questionIndex[r.QuestionID]
		if !ok {
			continue
		}
		candidates[idx].Responses = append(candidates[idx].Responses, r.toDomain())
	}

	return candidates, nil
}

func (row candidateRow) toCandidate() (selection.Candidate, error) {
	q, err := row.questionRow.toDomain()
	if err != nil {
		return selection.Candidate{}, err
	}

	c := selection.Candidate{Question: *q}

	c.Category.ID = row.CategoryID
	c.Category.Subject = row.CatSubject
	c.Category.Content = row.CatContent
	c.Category.Concept = row.CatConcept
	c.Category.GeneralWeight = row.CatGeneralWeight
	if row.CatColor.Valid {
		c.Category.Color = &row.CatColor.String
	}
	if row.CatIcon.Valid {
		c.Category.Icon = &row.CatIcon.String
	}

	if row.ProfileID.Valid {
		p := &knowledge.Profile{
			ID:           row.ProfileID.String,
			UserID:       row.PUserID.String,
			CategoryID:   row.CategoryID,
			CorrectCount: int(row.PCorrectCount.Int64),
			AttemptCount: int(row.PAttemptCount.Int64),
		}
		if row.PLastAttemptAt.Valid {
			p.LastAttemptAt = row.PLastAttemptAt.Time
		}
		if row.PConceptMastery.Valid {
			p.ConceptMastery = &row.PConceptMastery.Float64
		}
		if row.PContentMastery.Valid {
			p.ContentMastery = &row.PContentMastery.Float64
		}
		c.Profile = p
	}

	return c, nil
}
