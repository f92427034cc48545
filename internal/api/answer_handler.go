package api

import (
	"errors"
	"net/http"
)

// ── Request / Response types ────────────────────────────────────────────────

type SubmitAnswerRequest struct {
	UserID     string `json:"user_id"`
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

func (r *SubmitAnswerRequest) Validate() error {
	if r.UserID == "" {
		return errors.New("user_id is required")
	}
	if r.QuestionID == "" {
		return errors.New("question_id is required")
	}
	if r.Answer == "" {
		return errors.New("answer is required")
	}
	return nil
}

type SubmitAnswerResponse struct {
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correct_answer"`
}

// ── Handlers ────────────────────────────────────────────────────────────────

// submitAnswer records an answer and reports correctness.
// @Summary      Submit an answer
// @Tags         Answers
// @Accept       json
// @Produce      json
// @Param        body  body      SubmitAnswerRequest  true  "Answer to record"
// @Success      200   {object}  SubmitAnswerResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /answers [post]
func (h *Handler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	var req SubmitAnswerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.answers.Submit(r.Context(), req.UserID, req.QuestionID, req.Answer)
	if h.handleStoreError(w, err, "question") {
		return
	}

	respondJSON(w, http.StatusOK, SubmitAnswerResponse{
		Correct:       result.Correct,
		CorrectAnswer: result.CorrectAnswer,
	})
}
