package question

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prepdeck/backend/internal/id"
)

// Question is a single practice item. The Options field holds the answer
// choices either pipe-separated ("a|b|c") or as a JSON array; the first
// option is always the correct one.
type Question struct {
	ID         string
	Code       string // human-readable external code, e.g. "BIO-041"
	Text       string
	Options    string
	Rationale  *string
	Context    *string
	PassageID  *string
	CategoryID string
	Difficulty int
	TypeTags   []string
	StateTags  []string
	CreatedAt  time.Time
}

// New creates a Question with a generated ID.
func New(code, text, options, categoryID string, difficulty int) (*Question, error) {
	if text == "" {
		return nil, errors.New("question text cannot be empty")
	}
	if _, err := ParseOptions(options); err != nil {
		return nil, err
	}
	return &Question{
		ID:         id.New(),
		Code:       code,
		Text:       text,
		Options:    options,
		CategoryID: categoryID,
		Difficulty: difficulty,
	}, nil
}

// ParseOptions splits the stored options field into an ordered list.
// Two encodings exist in the catalog: a JSON array and a pipe-separated
// string. The first element is the correct answer in both.
func ParseOptions(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("options field is empty")
	}
	if strings.HasPrefix(raw, "[") {
		var opts []string
		if err := json.Unmarshal([]byte(raw), &opts); err != nil {
			return nil, fmt.Errorf("malformed options array: %w", err)
		}
		if len(opts) == 0 {
			return nil, errors.New("options array is empty")
		}
		return opts, nil
	}
	return strings.Split(raw, "|"), nil
}

// CorrectAnswer returns the correct option (always the first one).
func (q *Question) CorrectAnswer() (string, error) {
	opts, err := ParseOptions(q.Options)
	if err != nil {
		return "", err
	}
	return opts[0], nil
}
