package importer_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/prepdeck/backend/internal/domain/category"
	"github.com/prepdeck/backend/internal/domain/question"
	"github.com/prepdeck/backend/internal/importer"
)

type fakeCatalog struct {
	categories []*category.Category
	questions  []*question.Question
}

func (f *fakeCatalog) ListCategories(_ context.Context) ([]*category.Category, error) {
	return f.categories, nil
}

func (f *fakeCatalog) SaveCategory(_ context.Context, cat *category.Category) error {
	f.categories = append(f.categories, cat)
	return nil
}

func (f *fakeCatalog) SaveQuestion(_ context.Context, q *question.Question) error {
	f.questions = append(f.questions, q)
	return nil
}

var header = []any{
	"Code", "Question", "Options", "Rationale", "Context",
	"Subject", "Content", "Concept", "Weight", "Difficulty", "Tags",
}

func buildWorkbook(t *testing.T, rows ...[]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		t.Fatalf("failed to write header: %v", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			t.Fatalf("bad cell coordinates: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("failed to write row: %v", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("failed to serialize workbook: %v", err)
	}
	return buf
}

func TestImport_CreatesCategoriesAndQuestions(t *testing.T) {
	buf := buildWorkbook(t,
		[]any{"BIO-001", "What follows prophase?", "metaphase|anaphase", "", "", "Biology", "Cell Biology", "Mitosis", 2.5, 3, "recall"},
		[]any{"BIO-002", "What follows metaphase?", "anaphase|telophase", "", "", "Biology", "Cell Biology", "Mitosis", 2.5, 3, ""},
	)

	catalog := &fakeCatalog{}
	result, err := importer.New(catalog).Import(context.Background(), buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TotalProcessed != 2 {
		t.Errorf("expected 2 processed rows, got %d", result.TotalProcessed)
	}
	if result.CategoriesCreated != 1 {
		t.Errorf("expected 1 created category for identical taxonomy, got %d", result.CategoriesCreated)
	}
	if result.QuestionsCreated != 2 {
		t.Errorf("expected 2 created questions, got %d", result.QuestionsCreated)
	}
	if len(result.Errors) != 0 {
		t.Errorf("expected no row errors, got %v", result.Errors)
	}

	if len(catalog.questions) != 2 {
		t.Fatalf("expected 2 saved questions, got %d", len(catalog.questions))
	}
	q := catalog.questions[0]
	if q.Code != "BIO-001" {
		t.Errorf("expected code BIO-001, got %q", q.Code)
	}
	if q.Difficulty != 3 {
		t.Errorf("expected difficulty 3, got %d", q.Difficulty)
	}
	if q.CategoryID != catalog.categories[0].ID {
		t.Error("expected question linked to the created category")
	}
	if len(q.TypeTags) != 1 || q.TypeTags[0] != "recall" {
		t.Errorf("expected type tags [recall], got %v", q.TypeTags)
	}
}

func TestImport_MatchesExistingCategoryCaseInsensitively(t *testing.T) {
	existing := category.New("Biology", "Cell Biology", "Mitosis", 2.5)
	catalog := &fakeCatalog{categories: []*category.Category{existing}}

	buf := buildWorkbook(t,
		[]any{"BIO-001", "Question?", "a|b", "", "", "BIOLOGY", "cell biology", "MITOSIS", 1, 1, ""},
	)

	result, err := importer.New(catalog).Import(context.Background(), buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.CategoriesCreated != 0 {
		t.Errorf("expected no new categories, got %d", result.CategoriesCreated)
	}
	if catalog.questions[0].CategoryID != existing.ID {
		t.Error("expected question linked to the existing category")
	}
}

func TestImport_CollectsRowErrors(t *testing.T) {
	buf := buildWorkbook(t,
		[]any{"BIO-001", "", "a|b", "", "", "Biology", "", "", 1, 1, ""},        // missing text
		[]any{"BIO-002", "Valid?", "a|b", "", "", "Biology", "", "", 1, 1, ""},  // fine
		[]any{"BIO-003", "Also?", "a|b", "", "", "", "", "", 1, 1, ""},          // missing subject
		[]any{"BIO-004", "Bad?", "a|b", "", "", "Biology", "", "", "heavy", 1, ""}, // bad weight
	)

	catalog := &fakeCatalog{}
	result, err := importer.New(catalog).Import(context.Background(), buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TotalProcessed != 4 {
		t.Errorf("expected 4 processed rows, got %d", result.TotalProcessed)
	}
	if len(result.Errors) != 3 {
		t.Errorf("expected 3 row errors, got %d: %v", len(result.Errors), result.Errors)
	}
	if result.QuestionsCreated != 1 {
		t.Errorf("expected 1 question despite bad rows, got %d", result.QuestionsCreated)
	}
}

func TestImport_DefaultsWeightAndDifficulty(t *testing.T) {
	buf := buildWorkbook(t,
		[]any{"BIO-001", "Question?", "a|b", "", "", "Biology", "", "", "", "", ""},
	)

	catalog := &fakeCatalog{}
	if _, err := importer.New(catalog).Import(context.Background(), buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if catalog.categories[0].GeneralWeight != 1 {
		t.Errorf("expected default weight 1, got %v", catalog.categories[0].GeneralWeight)
	}
	if catalog.questions[0].Difficulty != 1 {
		t.Errorf("expected default difficulty 1, got %d", catalog.questions[0].Difficulty)
	}
}

func TestImport_RejectsNonSpreadsheet(t *testing.T) {
	catalog := &fakeCatalog{}
	if _, err := importer.New(catalog).Import(context.Background(), bytes.NewReader([]byte("not an xlsx"))); err == nil {
		t.Error("expected error for a non-spreadsheet payload")
	}
}
