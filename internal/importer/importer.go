// Package importer loads a question catalog from a spreadsheet. Expected
// columns, one question per row:
//
//	A code, B question text, C options (pipe-separated, correct first),
//	D rationale, E context, F subject, G content, H concept,
//	I exam-frequency weight, J difficulty, K type tags (comma-separated)
package importer

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/prepdeck/backend/internal/domain/category"
	"github.com/prepdeck/backend/internal/domain/question"
)

const defaultSheet = "Sheet1"

// Result summarizes one import run. Row-level failures are collected
// rather than aborting the run.
type Result struct {
	TotalProcessed    int
	CategoriesCreated int
	QuestionsCreated  int
	Errors            []string
}

// Catalog is the subset of the store the importer writes to.
type Catalog interface {
	ListCategories(ctx context.Context) ([]*category.Category, error)
	SaveCategory(ctx context.Context, cat *category.Category) error
	SaveQuestion(ctx context.Context, q *question.Question) error
}

// Importer reads spreadsheets into the store.
type Importer struct {
	store Catalog
}

func New(s Catalog) *Importer {
	return &Importer{store: s}
}

// Import reads an xlsx stream and creates the categories and questions it
// describes. Categories are matched case-insensitively on their
// (subject, content, concept) triple and created when missing.
func (im *Importer) Import(ctx context.Context, r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheet := defaultSheet
	if sheets := f.GetSheetList(); len(sheets) > 0 {
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	existing, err := im.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	categories := make(map[string]string, len(existing))
	for _, cat := range existing {
		categories[categoryKey(cat.Subject, cat.Content, cat.Concept)] = cat.ID
	}

	result := &Result{Errors: []string{}}

	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		result.TotalProcessed++

		if err := im.processRow(ctx, row, categories, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
		}
	}

	return result, nil
}

func (im *Importer) processRow(ctx context.Context, row []string, categories map[string]string, result *Result) error {
	get := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	code, text, options := get(0), get(1), get(2)
	if text == "" || options == "" {
		return fmt.Errorf("missing question text or options")
	}

	subject, content, concept := get(5), get(6), get(7)
	if subject == "" {
		return fmt.Errorf("missing subject")
	}

	weight := 1.0
	if w := get(8); w != "" {
		parsed, err := strconv.ParseFloat(w, 64)
		if err != nil {
			return fmt.Errorf("invalid weight %q", w)
		}
		weight = parsed
	}

	difficulty := 1
	if d := get(9); d != "" {
		parsed, err := strconv.Atoi(d)
		if err != nil {
			return fmt.Errorf("invalid difficulty %q", d)
		}
		difficulty = parsed
	}

	key := categoryKey(subject, content, concept)
	categoryID, ok := categories[key]
	if !ok {
		cat := category.New(subject, content, concept, weight)
		if err := im.store.SaveCategory(ctx, cat); err != nil {
			return fmt.Errorf("failed to create category: %w", err)
		}
		categories[key] = cat.ID
		categoryID = cat.ID
		result.CategoriesCreated++
	}

	q, err := question.New(code, text, options, categoryID, difficulty)
	if err != nil {
		return err
	}
	if rationale := get(3); rationale != "" {
		q.Rationale = &rationale
	}
	if qctx := get(4); qctx != "" {
		q.Context = &qctx
	}
	if tags := get(10); tags != "" {
		for _, t := range strings.Split(tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				q.TypeTags = append(q.TypeTags, t)
			}
		}
	}

	if err := im.store.SaveQuestion(ctx, q); err != nil {
		return fmt.Errorf("failed to save question: %w", err)
	}
	result.QuestionsCreated++
	return nil
}

func categoryKey(subject, content, concept string) string {
	return strings.ToLower(subject) + "|" + strings.ToLower(content) + "|" + strings.ToLower(concept)
}
