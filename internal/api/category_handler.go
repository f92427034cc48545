package api

import (
	"errors"
	"net/http"

	"github.com/prepdeck/backend/internal/domain/category"
)

// ── Request / Response types ────────────────────────────────────────────────

type CreateCategoryRequest struct {
	Subject       string  `json:"subject" example:"Biology"`
	Content       string  `json:"content" example:"Cell biology"`
	Concept       string  `json:"concept" example:"Membrane transport"`
	GeneralWeight float64 `json:"general_weight" example:"1.4"`
	Color         *string `json:"color,omitempty"`
	Icon          *string `json:"icon,omitempty"`
}

func (r *CreateCategoryRequest) Validate() error {
	if r.Subject == "" {
		return errors.New("subject is required")
	}
	if r.GeneralWeight < 0 {
		return errors.New("general_weight must not be negative")
	}
	return nil
}

type CategoryResponse struct {
	ID            string  `json:"id" example:"a1b2c3d4e5f6g7h8"`
	Subject       string  `json:"subject" example:"Biology"`
	Content       string  `json:"content" example:"Cell biology"`
	Concept       string  `json:"concept" example:"Membrane transport"`
	GeneralWeight float64 `json:"general_weight" example:"1.4"`
	Color         *string `json:"color,omitempty"`
	Icon          *string `json:"icon,omitempty"`
}

func toCategoryResponse(cat *category.Category) CategoryResponse {
	return CategoryResponse{
		ID:            cat.ID,
		Subject:       cat.Subject,
		Content:       cat.Content,
		Concept:       cat.Concept,
		GeneralWeight: cat.GeneralWeight,
		Color:         cat.Color,
		Icon:          cat.Icon,
	}
}

// ── Handlers ────────────────────────────────────────────────────────────────

// createCategory creates a taxonomy node.
// @Summary      Create a category
// @Tags         Categories
// @Accept       json
// @Produce      json
// @Param        body  body      CreateCategoryRequest  true  "Category to create"
// @Success      201   {object}  CategoryResponse
// @Failure      400   {object}  map[string]string
// @Router       /categories [post]
func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	cat := category.New(req.Subject, req.Content, req.Concept, req.GeneralWeight)
	cat.Color = req.Color
	cat.Icon = req.Icon

	if err := h.store.SaveCategory(r.Context(), cat); err != nil {
		h.logger.Error("failed to save category", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to save category")
		return
	}

	respondJSON(w, http.StatusCreated, toCategoryResponse(cat))
}

// GET /categories
func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("failed to load categories", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load categories")
		return
	}

	out := make([]CategoryResponse, len(categories))
	for i, cat := range categories {
		out[i] = toCategoryResponse(cat)
	}
	respondJSON(w, http.StatusOK, out)
}

// GET /categories/{categoryID}
func (h *Handler) getCategory(w http.ResponseWriter, r *http.Request) {
	cat, err := h.store.GetCategory(r.Context(), r.PathValue("categoryID"))
	if h.handleStoreError(w, err, "category") {
		return
	}
	respondJSON(w, http.StatusOK, toCategoryResponse(cat))
}

// PUT /categories/{categoryID}
func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cat, err := h.store.GetCategory(ctx, r.PathValue("categoryID"))
	if h.handleStoreError(w, err, "category") {
		return
	}

	var req CreateCategoryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	cat.Subject = req.Subject
	cat.Content = req.Content
	cat.Concept = req.Concept
	cat.GeneralWeight = req.GeneralWeight
	cat.Color = req.Color
	cat.Icon = req.Icon

	if h.handleStoreError(w, h.store.UpdateCategory(ctx, cat), "category") {
		return
	}
	respondJSON(w, http.StatusOK, toCategoryResponse(cat))
}

// DELETE /categories/{categoryID}
func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if h.handleStoreError(w, h.store.DeleteCategory(r.Context(), r.PathValue("categoryID")), "category") {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
