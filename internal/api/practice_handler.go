package api

import (
	"errors"
	"net/http"

	"github.com/prepdeck/backend/internal/selection"
)

// ── Request / Response types ────────────────────────────────────────────────

type PracticeRequest struct {
	UserID string `json:"user_id"`

	// Structural filters, all optional.
	CategoryID *string  `json:"category_id,omitempty"`
	PassageID  *string  `json:"passage_id,omitempty"`
	Subjects   []string `json:"subjects,omitempty"`
	Contents   []string `json:"contents,omitempty"`
	Concepts   []string `json:"concepts,omitempty"`
	TypeTags   []string `json:"type_tags,omitempty"`

	// Tuning parameters; omitted fields fall back to engine defaults.
	DesiredDifficulty    *int `json:"desired_difficulty,omitempty"`
	SeenTimes            *int `json:"seen_times,omitempty"`
	IntervalTotalHours   *int `json:"interval_total_hours,omitempty"`
	IntervalCorrectHours *int `json:"interval_correct_hours,omitempty"`

	IncorrectStreakProbWeight       *float64 `json:"incorrect_streak_prob_weight,omitempty"`
	ConceptContentMasteryProbWeight *float64 `json:"concept_content_mastery_prob_weight,omitempty"`
	DesiredDifficultyProbWeight     *float64 `json:"desired_difficulty_prob_weight,omitempty"`
	TestFrequencyProbWeight         *float64 `json:"test_frequency_prob_weight,omitempty"`

	Page     *int `json:"page,omitempty"`
	PageSize *int `json:"page_size,omitempty"`
}

func (r *PracticeRequest) Validate() error {
	if r.UserID == "" {
		return errors.New("user_id is required")
	}
	return nil
}

func (r *PracticeRequest) filters() selection.Filters {
	return selection.Filters{
		CategoryID: r.CategoryID,
		PassageID:  r.PassageID,
		Subjects:   r.Subjects,
		Contents:   r.Contents,
		Concepts:   r.Concepts,
		TypeTags:   r.TypeTags,
	}
}

func (r *PracticeRequest) tuning() selection.Tuning {
	t := selection.DefaultTuning()
	t.DesiredDifficulty = r.DesiredDifficulty
	if r.SeenTimes != nil {
		t.SeenTimes = *r.SeenTimes
	}
	if r.IntervalTotalHours != nil {
		t.IntervalTotalHours = *r.IntervalTotalHours
	}
	if r.IntervalCorrectHours != nil {
		t.IntervalCorrectHours = *r.IntervalCorrectHours
	}
	if r.IncorrectStreakProbWeight != nil {
		t.IncorrectStreakProbWeight = *r.IncorrectStreakProbWeight
	}
	if r.ConceptContentMasteryProbWeight != nil {
		t.ConceptContentMasteryProbWeight = *r.ConceptContentMasteryProbWeight
	}
	if r.DesiredDifficultyProbWeight != nil {
		t.DesiredDifficultyProbWeight = *r.DesiredDifficultyProbWeight
	}
	if r.TestFrequencyProbWeight != nil {
		t.TestFrequencyProbWeight = *r.TestFrequencyProbWeight
	}
	if r.Page != nil {
		t.Page = *r.Page
	}
	if r.PageSize != nil {
		t.PageSize = *r.PageSize
	}
	return t
}

type PracticeQuestion struct {
	ID         string   `json:"id"`
	Code       string   `json:"code"`
	Text       string   `json:"text"`
	Options    []string `json:"options"`
	Rationale  *string  `json:"rationale,omitempty"`
	Context    *string  `json:"context,omitempty"`
	PassageID  *string  `json:"passage_id,omitempty"`
	Difficulty int      `json:"difficulty"`
	TypeTags   []string `json:"type_tags,omitempty"`

	Category PracticeCategory `json:"category"`

	ConceptMastery     float64 `json:"concept_mastery"`
	ContentMastery     float64 `json:"content_mastery"`
	IncorrectStreak    int     `json:"incorrect_streak"`
	PassesSeenTimes    bool    `json:"passes_seen_times"`
	PassesCorrectTimes bool    `json:"passes_correct_times"`
}

type PracticeCategory struct {
	ID            string  `json:"id"`
	Subject       string  `json:"subject"`
	Content       string  `json:"content"`
	Concept       string  `json:"concept"`
	GeneralWeight float64 `json:"general_weight"`
}

type PracticeResponse struct {
	Questions   []PracticeQuestion `json:"questions"`
	TotalPages  int                `json:"total_pages"`
	CurrentPage int                `json:"current_page"`
}

// ── Handlers ────────────────────────────────────────────────────────────────

// selectQuestions picks the next page of practice questions for a user.
// @Summary      Select practice questions
// @Description  Runs the adaptive selection engine: weighted random sampling over the filtered candidate pool, biased by incorrect streaks, mastery, difficulty match and exam frequency.
// @Tags         Practice
// @Accept       json
// @Produce      json
// @Param        body  body      PracticeRequest  true  "Filters and tuning"
// @Success      200   {object}  PracticeResponse
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /practice/questions [post]
func (h *Handler) selectQuestions(w http.ResponseWriter, r *http.Request) {
	var req PracticeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.engine.Select(r.Context(), req.UserID, req.filters(), req.tuning())
	if err != nil {
		if errors.Is(err, selection.ErrNegativeWeight) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("selection failed", "user_id", req.UserID, "error", err)
		respondError(w, http.StatusInternalServerError, "selection failed")
		return
	}

	questions := make([]PracticeQuestion, len(result.Questions))
	for i, sq := range result.Questions {
		questions[i] = PracticeQuestion{
			ID:         sq.Question.ID,
			Code:       sq.Question.Code,
			Text:       sq.Question.Text,
			Options:    sq.Options,
			Rationale:  sq.Question.Rationale,
			Context:    sq.Question.Context,
			PassageID:  sq.Question.PassageID,
			Difficulty: sq.Question.Difficulty,
			TypeTags:   sq.Question.TypeTags,
			Category: PracticeCategory{
				ID:            sq.Category.ID,
				Subject:       sq.Category.Subject,
				Content:       sq.Category.Content,
				Concept:       sq.Category.Concept,
				GeneralWeight: sq.Category.GeneralWeight,
			},
			ConceptMastery:     sq.ConceptMastery,
			ContentMastery:     sq.ContentMastery,
			IncorrectStreak:    sq.IncorrectStreak,
			PassesSeenTimes:    sq.PassesSeenTimes,
			PassesCorrectTimes: sq.PassesCorrectTimes,
		}
	}

	respondJSON(w, http.StatusOK, PracticeResponse{
		Questions:   questions,
		TotalPages:  result.TotalPages,
		CurrentPage: result.CurrentPage,
	})
}
