package api

import (
	"errors"
	"net/http"

	"github.com/prepdeck/backend/internal/domain/question"
)

// ── Request / Response types ────────────────────────────────────────────────

type CreateQuestionRequest struct {
	Code       string   `json:"code" example:"BIO-041"`
	Text       string   `json:"text"`
	Options    string   `json:"options" example:"Osmosis|Diffusion|Active transport|Endocytosis"`
	Rationale  *string  `json:"rationale,omitempty"`
	Context    *string  `json:"context,omitempty"`
	PassageID  *string  `json:"passage_id,omitempty"`
	Difficulty int      `json:"difficulty" example:"2"`
	TypeTags   []string `json:"type_tags,omitempty"`
	StateTags  []string `json:"state_tags,omitempty"`
}

func (r *CreateQuestionRequest) Validate() error {
	if r.Text == "" {
		return errors.New("text is required")
	}
	if _, err := question.ParseOptions(r.Options); err != nil {
		return err
	}
	return nil
}

type QuestionResponse struct {
	ID         string   `json:"id" example:"q1w2e3r4t5y6u7i8"`
	Code       string   `json:"code" example:"BIO-041"`
	Text       string   `json:"text"`
	Options    string   `json:"options"`
	Rationale  *string  `json:"rationale,omitempty"`
	Context    *string  `json:"context,omitempty"`
	PassageID  *string  `json:"passage_id,omitempty"`
	CategoryID string   `json:"category_id"`
	Difficulty int      `json:"difficulty" example:"2"`
	TypeTags   []string `json:"type_tags,omitempty"`
	StateTags  []string `json:"state_tags,omitempty"`
}

func toQuestionResponse(q *question.Question) QuestionResponse {
	return QuestionResponse{
		ID:         q.ID,
		Code:       q.Code,
		Text:       q.Text,
		Options:    q.Options,
		Rationale:  q.Rationale,
		Context:    q.Context,
		PassageID:  q.PassageID,
		CategoryID: q.CategoryID,
		Difficulty: q.Difficulty,
		TypeTags:   q.TypeTags,
		StateTags:  q.StateTags,
	}
}

// ── Handlers ────────────────────────────────────────────────────────────────

// addQuestion creates a question inside a category.
// @Summary      Add a question
// @Tags         Questions
// @Accept       json
// @Produce      json
// @Param        categoryID  path      string                 true  "Category ID"
// @Param        body        body      CreateQuestionRequest  true  "Question to create"
// @Success      201   {object}  QuestionResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string  "category not found"
// @Router       /categories/{categoryID}/questions [post]
func (h *Handler) addQuestion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	categoryID := r.PathValue("categoryID")

	if _, err := h.store.GetCategory(ctx, categoryID); h.handleStoreError(w, err, "category") {
		return
	}

	var req CreateQuestionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	q, err := question.New(req.Code, req.Text, req.Options, categoryID, req.Difficulty)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	q.Rationale = req.Rationale
	q.Context = req.Context
	q.PassageID = req.PassageID
	q.TypeTags = req.TypeTags
	q.StateTags = req.StateTags

	if err := h.store.SaveQuestion(ctx, q); err != nil {
		h.logger.Error("failed to save question", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to save question")
		return
	}

	respondJSON(w, http.StatusCreated, toQuestionResponse(q))
}

// GET /categories/{categoryID}/questions
func (h *Handler) listQuestions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	categoryID := r.PathValue("categoryID")

	if _, err := h.store.GetCategory(ctx, categoryID); h.handleStoreError(w, err, "category") {
		return
	}

	questions, err := h.store.ListQuestionsByCategory(ctx, categoryID)
	if err != nil {
		h.logger.Error("failed to load questions", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load questions")
		return
	}

	out := make([]QuestionResponse, len(questions))
	for i, q := range questions {
		out[i] = toQuestionResponse(q)
	}
	respondJSON(w, http.StatusOK, out)
}

// DELETE /questions/{questionID}
func (h *Handler) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	if h.handleStoreError(w, h.store.DeleteQuestion(r.Context(), r.PathValue("questionID")), "question") {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
