package response

import (
	"time"

	"github.com/prepdeck/backend/internal/id"
)

// UserResponse is one historical answer event. Responses are append-only;
// their creation timestamps are the sole ordering key for recency and
// streak logic.
type UserResponse struct {
	ID         string
	UserID     string
	QuestionID string
	Answer     string
	Correct    bool
	CreatedAt  time.Time
}

// New creates a UserResponse stamped with the given time.
func New(userID, questionID, answer string, correct bool, at time.Time) *UserResponse {
	return &UserResponse{
		ID:         id.New(),
		UserID:     userID,
		QuestionID: questionID,
		Answer:     answer,
		Correct:    correct,
		CreatedAt:  at,
	}
}
