package api

import (
	"encoding/json"
	"net/http"
	"time"
)

// ── Request / Response types ────────────────────────────────────────────────

type ExportQuestion struct {
	Code       string   `json:"code"`
	Text       string   `json:"text"`
	Options    string   `json:"options"`
	Rationale  *string  `json:"rationale,omitempty"`
	Context    *string  `json:"context,omitempty"`
	Difficulty int      `json:"difficulty"`
	TypeTags   []string `json:"type_tags,omitempty"`
	StateTags  []string `json:"state_tags,omitempty"`
}

type ExportCategory struct {
	Subject       string           `json:"subject"`
	Content       string           `json:"content"`
	Concept       string           `json:"concept"`
	GeneralWeight float64          `json:"general_weight"`
	Questions     []ExportQuestion `json:"questions"`
}

type ExportData struct {
	Version    string           `json:"version"`
	ExportedAt string           `json:"exported_at"`
	Categories []ExportCategory `json:"categories"`
}

type ImportResponse struct {
	TotalProcessed    int      `json:"total_processed"`
	CategoriesCreated int      `json:"categories_created"`
	QuestionsCreated  int      `json:"questions_created"`
	Errors            []string `json:"errors"`
}

// ── Handlers ────────────────────────────────────────────────────────────────

// GET /export
func (h *Handler) exportAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	categories, err := h.store.ListCategories(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load categories")
		return
	}

	exportData := ExportData{
		Version:    "1.0",
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Categories: make([]ExportCategory, 0, len(categories)),
	}

	for _, cat := range categories {
		questions, err := h.store.ListQuestionsByCategory(ctx, cat.ID)
		if err != nil {
			h.logger.Error("export: failed to load questions", "category_id", cat.ID, "error", err)
			continue
		}

		exportCat := ExportCategory{
			Subject:       cat.Subject,
			Content:       cat.Content,
			Concept:       cat.Concept,
			GeneralWeight: cat.GeneralWeight,
			Questions:     make([]ExportQuestion, len(questions)),
		}
		for i, q := range questions {
			exportCat.Questions[i] = ExportQuestion{
				Code:       q.Code,
				Text:       q.Text,
				Options:    q.Options,
				Rationale:  q.Rationale,
				Context:    q.Context,
				Difficulty: q.Difficulty,
				TypeTags:   q.TypeTags,
				StateTags:  q.StateTags,
			}
		}
		exportData.Categories = append(exportData.Categories, exportCat)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=prepdeck-export.json")
	json.NewEncoder(w).Encode(exportData)
}

// importSpreadsheet bulk-loads a question catalog from an xlsx upload.
// @Summary      Import questions from a spreadsheet
// @Tags         Import
// @Accept       mpfd
// @Produce      json
// @Param        file  formData  file  true  "xlsx catalog"
// @Success      201   {object}  ImportResponse
// @Failure      400   {object}  map[string]string
// @Router       /import [post]
func (h *Handler) importSpreadsheet(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing file upload")
		return
	}
	defer file.Close()

	result, err := h.importer.Import(r.Context(), file)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, ImportResponse{
		TotalProcessed:    result.TotalProcessed,
		CategoriesCreated: result.CategoriesCreated,
		QuestionsCreated:  result.QuestionsCreated,
		Errors:            result.Errors,
	})
}
