package selection_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/prepdeck/backend/internal/domain/category"
	"github.com/prepdeck/backend/internal/domain/knowledge"
	"github.com/prepdeck/backend/internal/domain/question"
	"github.com/prepdeck/backend/internal/domain/response"
	"github.com/prepdeck/backend/internal/selection"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeSource struct {
	candidates []selection.Candidate
	err        error

	gotUserID string
	gotSince  time.Time
}

func (f *fakeSource) Candidates(_ context.Context, userID string, _ selection.Filters, since time.Time) ([]selection.Candidate, error) {
	f.gotUserID = userID
	f.gotSince = since
	if f.err != nil {
		return nil, f.err
	}
	return f.candidates, nil
}

func newTestEngine(src selection.CandidateSource, seed int64) *selection.Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return selection.NewEngine(src, logger,
		selection.WithRand(rand.New(rand.NewSource(seed))),
		selection.WithClock(func() time.Time { return fixedNow }),
	)
}

func makeCandidate(n int) selection.Candidate {
	return selection.Candidate{
		Question: question.Question{
			ID:         fmt.Sprintf("q%d", n),
			Code:       fmt.Sprintf("BIO-%03d", n),
			Text:       fmt.Sprintf("Question %d", n),
			Options:    "right|wrong a|wrong b|wrong c",
			CategoryID: "cat1",
			Difficulty: 2,
		},
		Category: category.Category{
			ID:            "cat1",
			Subject:       "Biology",
			Content:       "Cell Biology",
			Concept:       "Mitosis",
			GeneralWeight: 1,
		},
	}
}

func makeCandidates(n int) []selection.Candidate {
	out := make([]selection.Candidate, n)
	for i := range out {
		out[i] = makeCandidate(i)
	}
	return out
}

func makeResponse(questionID string, correct bool, at time.Time) response.UserResponse {
	return response.UserResponse{
		ID:         "r-" + questionID + at.Format("150405"),
		UserID:     "user1",
		QuestionID: questionID,
		Answer:     "right",
		Correct:    correct,
		CreatedAt:  at,
	}
}

func TestSelect_EmptyPool(t *testing.T) {
	engine := newTestEngine(&fakeSource{}, 1)

	result, err := engine.Select(context.Background(), "user1", selection.Filters{}, selection.DefaultTuning())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Questions) != 0 {
		t.Errorf("expected no questions, got %d", len(result.Questions))
	}
	if result.TotalPages != 0 {
		t.Errorf("expected 0 total pages, got %d", result.TotalPages)
	}
	if result.CurrentPage != 1 {
		t.Errorf("expected current page 1, got %d", result.CurrentPage)
	}
}

func TestSelect_PageSizeAndTotalPages(t *testing.T) {
	src := &fakeSource{candidates: makeCandidates(23)}
	engine := newTestEngine(src, 1)

	result, err := engine.Select(context.Background(), "user1", selection.Filters{}, selection.DefaultTuning())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Questions) != 10 {
		t.Errorf("expected 10 questions, got %d", len(result.Questions))
	}
	if result.TotalPages != 3 {
		t.Errorf("expected 3 total pages for 23 candidates, got %d", result.TotalPages)
	}

	seen := make(map[string]bool)
	for _, q := range result.Questions {
		if seen[q.Question.ID] {
			t.Errorf("question %s selected twice", q.Question.ID)
		}
		seen[q.Question.ID] = true
	}
}

func TestSelect_PoolSmallerThanPageSize(t *testing.T) {
	src := &fakeSource{candidates: makeCandidates(4)}
	engine := newTestEngine(src, 1)

	result, err := engine.Select(context.Background(), "user1", selection.Filters{}, selection.DefaultTuning())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Questions) != 4 {
		t.Errorf("expected all 4 questions, got %d", len(result.Questions))
	}
	if result.TotalPages != 1 {
		t.Errorf("expected 1 total page, got %d", result.TotalPages)
	}
}

func TestSelect_ZeroTuningGetsDefaults(t *testing.T) {
	src := &fakeSource{candidates: makeCandidates(23)}
	engine := newTestEngine(src, 1)

	result, err := engine.Select(context.Background(), "user1", selection.Filters{}, selection.Tuning{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Questions) != 10 {
		t.Errorf("expected default page size 10, got %d questions", len(result.Questions))
	}
	if result.CurrentPage != 1 {
		t.Errorf("expected default page 1, got %d", result.CurrentPage)
	}
	if want := fixedNow.Add(-72 * time.Hour); !src.gotSince.Equal(want) {
		t.Errorf("expected default 72 hour window from the engine clock, got since=%v", src.gotSince)
	}
}

func TestSelect_NegativeWeightRejected(t *testing.T) {
	engine := newTestEngine(&fakeSource{candidates: makeCandidates(3)}, 1)

	tuning := selection.DefaultTuning()
	tuning.IncorrectStreakProbWeight = -0.5

	_, err := engine.Select(context.Background(), "user1", selection.Filters{}, tuning)
	if !errors.Is(err, selection.ErrNegativeWeight) {
		t.Errorf("expected ErrNegativeWeight, got %v", err)
	}
}

func TestSelect_SourceErrorPropagates(t *testing.T) {
	sentinel := errors.New("db down")
	engine := newTestEngine(&fakeSource{err: sentinel}, 1)

	_, err := engine.Select(context.Background(), "user1", selection.Filters{}, selection.DefaultTuning())
	if !errors.Is(err, sentinel) {
		t.Errorf("expected source error to propagate, got %v", err)
	}
}

func TestSelect_CanceledContext(t *testing.T) {
	engine := newTestEngine(&fakeSource{candidates: makeCandidates(3)}, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Select(ctx, "user1", selection.Filters{}, selection.DefaultTuning())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSelect_MalformedOptionsFails(t *testing.T) {
	c := makeCandidate(0)
	c.Question.Options = "[not valid json"
	engine := newTestEngine(&fakeSource{candidates: []selection.Candidate{c}}, 1)

	_, err := engine.Select(context.Background(), "user1", selection.Filters{}, selection.DefaultTuning())
	if err == nil {
		t.Fatal("expected error for malformed options")
	}
}

func TestSelect_IncorrectStreakStopsAtCorrect(t *testing.T) {
	c := makeCandidate(0)
	c.Responses = []response.UserResponse{
		makeResponse(c.Question.ID, true, fixedNow.Add(-3*time.Hour)),
		makeResponse(c.Question.ID, false, fixedNow.Add(-2*time.Hour)),
		makeResponse(c.Question.ID, false, fixedNow.Add(-1*time.Hour)),
	}
	engine := newTestEngine(&fakeSource{candidates: []selection.Candidate{c}}, 1)

	result, err := engine.Select(context.Background(), "user1", selection.Filters{}, selection.DefaultTuning())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Questions[0].IncorrectStreak != 2 {
		t.Errorf("expected streak 2, got %d", result.Questions[0].IncorrectStreak)
	}
}

func TestSelect_IncorrectStreakAllIncorrect(t *testing.T) {
	c := makeCandidate(0)
	c.Responses = []response.UserResponse{
		makeResponse(c.Question.ID, false, fixedNow.Add(-3*time.Hour)),
		makeResponse(c.Question.ID, false, fixedNow.Add(-2*time.Hour)),
		makeResponse(c.Question.ID, false, fixedNow.Add(-1*time.Hour)),
	}
	engine := newTestEngine(&fakeSource{candidates: []selection.Candidate{c}}, 1)

	result, err := engine.Select(context.Background(), "user1", selection.Filters{}, selection.DefaultTuning())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Questions[0].IncorrectStreak != 3 {
		t.Errorf("expected streak 3, got %d", result.Questions[0].IncorrectStreak)
	}
}

func TestSelect_ExposureFlags(t *testing.T) {
	overexposed := makeCandidate(0)
	for i := 1; i <= 4; i++ {
		overexposed.Responses = append(overexposed.Responses,
			makeResponse(overexposed.Question.ID, false, fixedNow.Add(-time.Duration(i)*time.Hour)))
	}
	overexposed.Responses = append(overexposed.Responses,
		makeResponse(overexposed.Question.ID, true, fixedNow.Add(-30*time.Minute)))

	fresh := makeCandidate(1)

	src := &fakeSource{candidates: []selection.Candidate{overexposed, fresh}}
	engine := newTestEngine(src, 1)

	result, err := engine.Select(context.Background(), "user1", selection.Filters{}, selection.DefaultTuning())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byID := make(map[string]selection.SelectedQuestion)
	for _, q := range result.Questions {
		byID[q.Question.ID] = q
	}

	over, ok := byID[overexposed.Question.ID]
	if !ok {
		t.Fatal("expected overexposed question in result")
	}
	if over.PassesSeenTimes {
		t.Error("expected PassesSeenTimes false for 5 recent responses against a threshold of 3")
	}
	if over.PassesCorrectTimes {
		t.Error("expected PassesCorrectTimes false after a recent correct answer")
	}

	fr, ok := byID[fresh.Question.ID]
	if !ok {
		t.Fatal("expected fresh question in result")
	}
	if !fr.PassesSeenTimes || !fr.PassesCorrectTimes {
		t.Error("expected both pass flags true for an unseen question")
	}
}

func TestSelect_ResponsesOutsideWindowIgnored(t *testing.T) {
	c := makeCandidate(0)
	c.Responses = []response.UserResponse{
		makeResponse(c.Question.ID, true, fixedNow.Add(-100*time.Hour)),
		makeResponse(c.Question.ID, false, fixedNow.Add(-90*time.Hour)),
	}
	engine := newTestEngine(&fakeSource{candidates: []selection.Candidate{c}}, 1)

	result, err := engine.Select(context.Background(), "user1", selection.Filters{}, selection.DefaultTuning())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	q := result.Questions[0]
	if !q.PassesSeenTimes {
		t.Error("expected PassesSeenTimes true when all responses predate the window")
	}
	if !q.PassesCorrectTimes {
		t.Error("expected PassesCorrectTimes true when the correct answer predates the window")
	}
}

func TestSelect_MissingProfileDefaults(t *testing.T) {
	engine := newTestEngine(&fakeSource{candidates: makeCandidates(1)}, 1)

	result, err := engine.Select(context.Background(), "user1", selection.Filters{}, selection.DefaultTuning())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	q := result.Questions[0]
	if q.ConceptMastery != 0 {
		t.Errorf("expected default concept mastery 0, got %v", q.ConceptMastery)
	}
	if q.ContentMastery != 0.5 {
		t.Errorf("expected default content mastery 0.5, got %v", q.ContentMastery)
	}
}

func TestSelect_ProfileMasteryCarriedThrough(t *testing.T) {
	c := makeCandidate(0)
	concept, content := 0.8, 0.3
	c.Profile = &knowledge.Profile{
		ID:             "p1",
		UserID:         "user1",
		CategoryID:     c.Category.ID,
		ConceptMastery: &concept,
		ContentMastery: &content,
	}
	engine := newTestEngine(&fakeSource{candidates: []selection.Candidate{c}}, 1)

	result, err := engine.Select(context.Background(), "user1", selection.Filters{}, selection.DefaultTuning())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	q := result.Questions[0]
	if q.ConceptMastery != 0.8 || q.ContentMastery != 0.3 {
		t.Errorf("expected mastery (0.8, 0.3), got (%v, %v)", q.ConceptMastery, q.ContentMastery)
	}
}

func TestSelect_OptionsSplitWithCorrectFirst(t *testing.T) {
	engine := newTestEngine(&fakeSource{candidates: makeCandidates(1)}, 1)

	result, err := engine.Select(context.Background(), "user1", selection.Filters{}, selection.DefaultTuning())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	opts := result.Questions[0].Options
	if len(opts) != 4 {
		t.Fatalf("expected 4 options, got %d", len(opts))
	}
	if opts[0] != "right" {
		t.Errorf("expected correct option first, got %q", opts[0])
	}
}

func TestSelect_OmittedDifficultyContributesNothing(t *testing.T) {
	easy := makeCandidate(0)
	easy.Question.Difficulty = 1
	hard := makeCandidate(1)
	hard.Question.Difficulty = 5

	engine := newTestEngine(&fakeSource{candidates: []selection.Candidate{easy, hard}}, 1)

	result, err := engine.Select(context.Background(), "user1", selection.Filters{}, selection.DefaultTuning())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Questions) != 2 {
		t.Fatalf("expected both questions, got %d", len(result.Questions))
	}
	if math.Abs(result.Questions[0].Weight-result.Questions[1].Weight) > 1e-9 {
		t.Errorf("expected equal weights with no desired difficulty, got %v and %v",
			result.Questions[0].Weight, result.Questions[1].Weight)
	}
}

func TestSelect_DesiredDifficultyBoostsMatch(t *testing.T) {
	easy := makeCandidate(0)
	easy.Question.Difficulty = 1
	hard := makeCandidate(1)
	hard.Question.Difficulty = 5

	tuning := selection.DefaultTuning()
	desired := 5
	tuning.DesiredDifficulty = &desired

	engine := newTestEngine(&fakeSource{candidates: []selection.Candidate{easy, hard}}, 1)

	result, err := engine.Select(context.Background(), "user1", selection.Filters{}, tuning)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	weights := make(map[string]float64)
	for _, q := range result.Questions {
		weights[q.Question.ID] = q.Weight
	}

	diff := weights[hard.Question.ID] - weights[easy.Question.ID]
	if math.Abs(diff-tuning.DesiredDifficultyProbWeight) > 1e-9 {
		t.Errorf("expected matching question to gain exactly the difficulty weight %v, got gain %v",
			tuning.DesiredDifficultyProbWeight, diff)
	}
}

func TestSelect_StreakRaisesWeight(t *testing.T) {
	struggling := makeCandidate(0)
	struggling.Responses = []response.UserResponse{
		makeResponse(struggling.Question.ID, false, fixedNow.Add(-2*time.Hour)),
		makeResponse(struggling.Question.ID, false, fixedNow.Add(-1*time.Hour)),
	}
	mastered := makeCandidate(1)

	engine := newTestEngine(&fakeSource{candidates: []selection.Candidate{struggling, mastered}}, 1)

	result, err := engine.Select(context.Background(), "user1", selection.Filters{}, selection.DefaultTuning())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	weights := make(map[string]float64)
	for _, q := range result.Questions {
		weights[q.Question.ID] = q.Weight
	}

	if weights[struggling.Question.ID] <= weights[mastered.Question.ID] {
		t.Errorf("expected streaking question to weigh more: %v vs %v",
			weights[struggling.Question.ID], weights[mastered.Question.ID])
	}
}

func TestSelect_SamplingFollowsWeights(t *testing.T) {
	heavy := makeCandidate(0)
	heavy.Category.GeneralWeight = 9
	light := makeCandidate(1)
	light.Category.ID = "cat2"
	light.Category.GeneralWeight = 1

	tuning := selection.DefaultTuning()
	tuning.IncorrectStreakProbWeight = 0
	tuning.ConceptContentMasteryProbWeight = 0
	tuning.DesiredDifficultyProbWeight = 0
	tuning.TestFrequencyProbWeight = 1
	tuning.PageSize = 1

	src := &fakeSource{candidates: []selection.Candidate{heavy, light}}
	engine := newTestEngine(src, 42)

	const trials = 1000
	heavyPicks := 0
	for i := 0; i < trials; i++ {
		result, err := engine.Select(context.Background(), "user1", selection.Filters{}, tuning)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Questions[0].Question.ID == heavy.Question.ID {
			heavyPicks++
		}
	}

	// Expected ratio is 9/(9+1/9)... the light raw weight normalizes to
	// 1/9, so heavy should win roughly 90% of independent draws. Allow a
	// generous statistical margin.
	if heavyPicks < 800 {
		t.Errorf("expected the heavy candidate to dominate, won %d/%d draws", heavyPicks, trials)
	}
	if heavyPicks == trials {
		t.Error("expected the light candidate to win occasionally")
	}
}

func TestSelect_UniformWhenWeightsAllZero(t *testing.T) {
	tuning := selection.DefaultTuning()
	tuning.IncorrectStreakProbWeight = 0
	tuning.ConceptContentMasteryProbWeight = 0
	tuning.DesiredDifficultyProbWeight = 0
	tuning.TestFrequencyProbWeight = 0
	tuning.PageSize = 1

	src := &fakeSource{candidates: makeCandidates(4)}
	engine := newTestEngine(src, 7)

	const trials = 2000
	counts := make(map[string]int)
	for i := 0; i < trials; i++ {
		result, err := engine.Select(context.Background(), "user1", selection.Filters{}, tuning)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		counts[result.Questions[0].Question.ID]++
	}

	for id, n := range counts {
		if n < 350 || n > 650 {
			t.Errorf("expected roughly uniform pick counts, %s got %d/%d", id, n, trials)
		}
	}
}

func TestSelect_SeedOnlyAffectsSampling(t *testing.T) {
	candidates := makeCandidates(30)

	a, err := newTestEngine(&fakeSource{candidates: candidates}, 1).
		Select(context.Background(), "user1", selection.Filters{}, selection.DefaultTuning())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := newTestEngine(&fakeSource{candidates: candidates}, 2).
		Select(context.Background(), "user1", selection.Filters{}, selection.DefaultTuning())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.TotalPages != b.TotalPages || a.CurrentPage != b.CurrentPage {
		t.Errorf("expected identical pagination across seeds, got (%d,%d) and (%d,%d)",
			a.TotalPages, a.CurrentPage, b.TotalPages, b.CurrentPage)
	}
	if len(a.Questions) != len(b.Questions) {
		t.Errorf("expected identical page sizes across seeds, got %d and %d",
			len(a.Questions), len(b.Questions))
	}
}

func TestSelect_WindowCoversWiderInterval(t *testing.T) {
	src := &fakeSource{candidates: makeCandidates(1)}
	engine := newTestEngine(src, 1)

	tuning := selection.DefaultTuning()
	tuning.IntervalTotalHours = 24
	tuning.IntervalCorrectHours = 168

	if _, err := engine.Select(context.Background(), "user1", selection.Filters{}, tuning); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := fixedNow.Add(-168 * time.Hour); !src.gotSince.Equal(want) {
		t.Errorf("expected the window to cover the wider interval (168h), got since=%v", src.gotSince)
	}
	if src.gotUserID != "user1" {
		t.Errorf("expected user id to reach the source, got %q", src.gotUserID)
	}
}
