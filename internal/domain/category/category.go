package category

import "github.com/prepdeck/backend/internal/id"

// Category is one node of the subject → content → concept taxonomy.
// GeneralWeight reflects how often the node appears on the target exam
// and biases question selection toward higher-yield topics.
type Category struct {
	ID            string
	Subject       string
	Content       string
	Concept       string
	GeneralWeight float64
	// Display metadata, irrelevant to scoring.
	Color *string
	Icon  *string
}

// New creates a Category with a generated ID.
func New(subject, content, concept string, generalWeight float64) *Category {
	return &Category{
		ID:            id.New(),
		Subject:       subject,
		Content:       content,
		Concept:       concept,
		GeneralWeight: generalWeight,
	}
}
