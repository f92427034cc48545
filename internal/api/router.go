package api

import "net/http"

// RegisterRoutes mounts every handler on the mux.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	// Practice
	mux.HandleFunc("POST /practice/questions", h.selectQuestions)
	mux.HandleFunc("POST /answers", h.submitAnswer)

	// Categories
	mux.HandleFunc("POST /categories", h.createCategory)
	mux.HandleFunc("GET /categories", h.listCategories)
	mux.HandleFunc("GET /categories/{categoryID}", h.getCategory)
	mux.HandleFunc("PUT /categories/{categoryID}", h.updateCategory)
	mux.HandleFunc("DELETE /categories/{categoryID}", h.deleteCategory)

	// Questions
	mux.HandleFunc("POST /categories/{categoryID}/questions", h.addQuestion)
	mux.HandleFunc("GET /categories/{categoryID}/questions", h.listQuestions)
	mux.HandleFunc("DELETE /questions/{questionID}", h.deleteQuestion)

	// Catalog transfer
	mux.HandleFunc("GET /export", h.exportAll)
	mux.HandleFunc("POST /import", h.importSpreadsheet)
}
