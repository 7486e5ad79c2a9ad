package scoring_test

import (
	"encoding/json"
	"math"
	"testing"

	"quiz-grading-service/internal/domain"
	"quiz-grading-service/internal/scoring"
)

func TestWeightedPartialWithPenalty(t *testing.T) {
	q := domain.Question{
		ID: "q1",
		Body: &domain.Choice{
			Options:        map[string]string{"a": "A", "b": "B", "c": "C", "d": "D", "e": "E"},
			CorrectAnswers: []string{"a", "b", "c", "d"},
		},
		Scoring: domain.WeightedScoring{
			Mode:                domain.WeightedPartialWithPenalty,
			MaxPoints:           10,
			PointsPerCorrect:    2,
			PenaltyPerIncorrect: 1,
		},
	}

	got := scoring.Score(q, []any{"a", "b", "c", "e"})
	if got.Awarded != 5 || got.Max != 10 {
		t.Fatalf("expected 5/10, got %+v", got)
	}
	if got.Correct {
		t.Fatalf("expected partially correct answer not marked correct")
	}
}

func TestScoreVariants(t *testing.T) {
	choice := &domain.Choice{Options: map[string]string{"a": "A", "b": "B", "c": "C"}, CorrectAnswers: []string{"a", "b"}}
	blanks := &domain.FillInTheBlank{CorrectAnswers: map[string]string{"country": "France", "capital": "Paris"}}
	ranking := &domain.Ranking{Items: map[string]string{"x": "X", "y": "Y", "z": "Z"}, CorrectOrder: []string{"x", "y", "z"}}
	matrix := &domain.SingleSelectionMatrix{
		Rows:           map[string]string{"r1": "Row 1", "r2": "Row 2"},
		Columns:        map[string]string{"c1": "Col 1", "c2": "Col 2"},
		CorrectAnswers: map[string]string{"r1": "c1", "r2": "c2"},
	}
	multiMatrix := &domain.MultipleSelectionMatrix{
		Rows:           map[string]string{"r1": "Row 1", "r2": "Row 2"},
		Columns:        map[string]string{"c1": "Col 1", "c2": "Col 2"},
		CorrectAnswers: map[string][]string{"r1": {"c1", "c2"}, "r2": {"c2"}},
	}

	tests := []struct {
		name     string
		body     domain.QuestionBody
		scoring  domain.ScoringConfig
		answer   any
		awarded  float64
		max      float64
		correct  bool
		deferred bool
	}{
		{name: "simple multiple choice correct", body: &domain.MultipleChoice{CorrectAnswer: "b"}, scoring: domain.SimpleScoring{Points: 3}, answer: "b", awarded: 3, max: 3, correct: true},
		{name: "simple multiple choice wrong", body: &domain.MultipleChoice{CorrectAnswer: "b"}, scoring: domain.SimpleScoring{Points: 3}, answer: "a", awarded: 0, max: 3},
		{name: "simple short answer folds case", body: &domain.ShortAnswer{CorrectAnswer: "Paris"}, scoring: domain.SimpleScoring{Points: 2}, answer: "  paris ", awarded: 2, max: 2, correct: true},
		{name: "weighted all-or-nothing exact set", body: choice, scoring: domain.WeightedScoring{Mode: domain.WeightedAllOrNothing, MaxPoints: 4}, answer: []string{"b", "a"}, awarded: 4, max: 4, correct: true},
		{name: "weighted all-or-nothing extra option", body: choice, scoring: domain.WeightedScoring{Mode: domain.WeightedAllOrNothing, MaxPoints: 4}, answer: []string{"a", "b", "c"}, awarded: 0, max: 4},
		{name: "weighted penalty floors at zero", body: choice, scoring: domain.WeightedScoring{Mode: domain.WeightedPartialWithPenalty, MaxPoints: 4, PointsPerCorrect: 1, PenaltyPerIncorrect: 5}, answer: []string{"a", "c"}, awarded: 0, max: 4},
		{name: "weighted no penalty caps at max", body: choice, scoring: domain.WeightedScoring{Mode: domain.WeightedPartialNoPenalty, MaxPoints: 3, PointsPerCorrect: 2}, answer: []string{"a", "b", "c"}, awarded: 3, max: 3},
		{name: "weighted blanks partial", body: blanks, scoring: domain.WeightedScoring{Mode: domain.WeightedPartialNoPenalty, MaxPoints: 2, PointsPerCorrect: 1}, answer: map[string]any{"country": "france", "capital": "Lyon"}, awarded: 1, max: 2},
		{name: "rubric deferred", body: &domain.LongAnswer{}, scoring: domain.RubricScoring{RubricID: "essay", MaxPoints: 20}, answer: "text", awarded: 0, max: 20, deferred: true},
		{name: "manual deferred", body: &domain.Whiteboard{}, scoring: domain.ManualScoring{MaxPoints: 5}, answer: nil, awarded: 0, max: 5, deferred: true},
		{name: "partial match above threshold", body: &domain.ShortAnswer{CorrectAnswer: "photosynthesis"}, scoring: domain.PartialMatchScoring{MaxPoints: 2, MatchThreshold: 0.8}, answer: "Photosynthesys", awarded: 2, max: 2, correct: true},
		{name: "partial match case sensitive", body: &domain.ShortAnswer{CorrectAnswer: "DNA"}, scoring: domain.PartialMatchScoring{MaxPoints: 2, CaseSensitive: true, MatchThreshold: 1}, answer: "dna", awarded: 0, max: 2},
		{name: "partial match below threshold", body: &domain.ShortAnswer{CorrectAnswer: "mitochondria"}, scoring: domain.PartialMatchScoring{MaxPoints: 2, MatchThreshold: 0.9}, answer: "ribosome", awarded: 0, max: 2},
		{name: "partial match empty key", body: &domain.ShortAnswer{}, scoring: domain.PartialMatchScoring{MaxPoints: 5, MatchThreshold: 0.9}, answer: "", awarded: 0, max: 5},
		{name: "partial match every blank", body: blanks, scoring: domain.PartialMatchScoring{MaxPoints: 1, MatchThreshold: 0.8}, answer: map[string]string{"country": "Frances", "capital": "Paris"}, awarded: 1, max: 1, correct: true},
		{name: "ranking exact order", body: ranking, scoring: domain.RankingScoring{Mode: domain.RankingExactOrder, MaxPoints: 3}, answer: []string{"x", "y", "z"}, awarded: 3, max: 3, correct: true},
		{name: "ranking exact order wrong", body: ranking, scoring: domain.RankingScoring{Mode: domain.RankingExactOrder, MaxPoints: 3}, answer: []string{"x", "z", "y"}, awarded: 0, max: 3},
		{name: "ranking partial order", body: ranking, scoring: domain.RankingScoring{Mode: domain.RankingPartialOrder, MaxPoints: 3, PointsPerCorrectPosition: 1}, answer: []string{"x", "z", "y"}, awarded: 1, max: 3},
		{name: "matrix partial", body: matrix, scoring: domain.MatrixScoring{Mode: domain.MatrixPartial, MaxPoints: 4, PointsPerRow: 2}, answer: map[string]any{"r1": "c1", "r2": "c1"}, awarded: 2, max: 4},
		{name: "matrix all-or-nothing", body: matrix, scoring: domain.MatrixScoring{Mode: domain.MatrixAllOrNothing, MaxPoints: 4, PointsPerRow: 2}, answer: map[string]any{"r1": "c1", "r2": "c1"}, awarded: 0, max: 4},
		{name: "multi matrix rows as sets", body: multiMatrix, scoring: domain.MatrixScoring{Mode: domain.MatrixPartial, MaxPoints: 2, PointsPerRow: 1}, answer: map[string]any{"r1": []any{"c2", "c1"}, "r2": "c2"}, awarded: 2, max: 2, correct: true},
		{name: "wrong answer shape scores zero", body: choice, scoring: domain.WeightedScoring{Mode: domain.WeightedPartialNoPenalty, MaxPoints: 2, PointsPerCorrect: 1}, answer: 42, awarded: 0, max: 2},
		{name: "mismatched policy scores zero", body: &domain.MultipleChoice{CorrectAnswer: "a"}, scoring: domain.RankingScoring{Mode: domain.RankingExactOrder, MaxPoints: 2}, answer: "a", awarded: 0, max: 2},
		{name: "negative points treated as zero", body: &domain.MultipleChoice{CorrectAnswer: "a"}, scoring: domain.SimpleScoring{Points: -3}, answer: "a", awarded: 0, max: 0, correct: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := scoring.Score(domain.Question{ID: "q", Body: tc.body, Scoring: tc.scoring}, tc.answer)
			if math.Abs(got.Awarded-tc.awarded) > 1e-9 || got.Max != tc.max {
				t.Fatalf("expected %v/%v, got %v/%v", tc.awarded, tc.max, got.Awarded, got.Max)
			}
			if got.Correct != tc.correct || got.Deferred != tc.deferred {
				t.Fatalf("expected correct=%v deferred=%v, got %+v", tc.correct, tc.deferred, got)
			}
		})
	}
}

func TestDefaultScoring(t *testing.T) {
	tests := []struct {
		body domain.QuestionBody
		want domain.ScoringConfig
	}{
		{&domain.MultipleChoice{}, domain.SimpleScoring{Points: 1}},
		{&domain.ShortAnswer{}, domain.SimpleScoring{Points: 1}},
		{&domain.Choice{}, domain.WeightedScoring{Mode: domain.WeightedAllOrNothing, MaxPoints: 1}},
		{&domain.FillInTheBlank{}, domain.WeightedScoring{Mode: domain.WeightedPartialNoPenalty, MaxPoints: 1, PointsPerCorrect: 1}},
		{&domain.Ranking{}, domain.RankingScoring{Mode: domain.RankingExactOrder, MaxPoints: 1}},
		{&domain.SingleSelectionMatrix{}, domain.MatrixScoring{Mode: domain.MatrixPartial, MaxPoints: 1, PointsPerRow: 1}},
		{&domain.MultipleSelectionMatrix{}, domain.MatrixScoring{Mode: domain.MatrixPartial, MaxPoints: 1, PointsPerRow: 1}},
		{&domain.LongAnswer{}, domain.ManualScoring{MaxPoints: 1}},
		{&domain.Article{}, domain.ManualScoring{MaxPoints: 1}},
		{&domain.Whiteboard{}, domain.ManualScoring{MaxPoints: 1}},
	}
	for _, tc := range tests {
		t.Run(string(tc.body.QuestionType()), func(t *testing.T) {
			got := scoring.DefaultScoring(domain.Question{Body: tc.body})
			if got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestDefaultScoringAppliesWithoutConfig(t *testing.T) {
	q := domain.Question{ID: "q1", Body: &domain.FillInTheBlank{CorrectAnswers: map[string]string{"a": "x", "b": "y"}}}
	got := scoring.Score(q, map[string]string{"a": "x"})
	if got.Awarded != 1 || got.Max != 1 {
		t.Fatalf("expected 1/1 under the blank default, got %+v", got)
	}

	got = scoring.Score(q, json.RawMessage(`{"a":"wrong"}`))
	if got.Awarded != 0 {
		t.Fatalf("expected 0 for wrong blank, got %+v", got)
	}
}

func TestTotalPoints(t *testing.T) {
	pages := []domain.QuizPage{{
		ID: "p1",
		Questions: []domain.Question{
			{ID: "a", Body: &domain.MultipleChoice{}},
			{ID: "b", Body: &domain.Choice{}, Scoring: domain.WeightedScoring{Mode: domain.WeightedAllOrNothing, MaxPoints: 4}},
			{ID: "c", Body: &domain.LongAnswer{}, Scoring: domain.RubricScoring{RubricID: "r", MaxPoints: 10}},
		},
	}}

	regular := domain.QuizConfig{ID: "q", Body: &domain.RegularQuiz{Pages: pages}}
	if got := scoring.TotalPoints(regular); got != 15 {
		t.Fatalf("expected 15 points, got %v", got)
	}

	container := domain.QuizConfig{ID: "c", Body: &domain.ContainerQuiz{NestedQuizzes: []domain.NestedQuizConfig{
		{ID: "n1", Pages: pages},
		{ID: "n2", Pages: pages},
	}}}
	if got := scoring.TotalPoints(container); got != 30 {
		t.Fatalf("expected 30 points, got %v", got)
	}
}

func TestApplyManualScore(t *testing.T) {
	if got := scoring.ApplyManualScore(10, 12); got != 10 {
		t.Fatalf("expected clamp to 10, got %v", got)
	}
	if got := scoring.ApplyManualScore(10, -1); got != 0 {
		t.Fatalf("expected clamp to 0, got %v", got)
	}
	if got := scoring.ApplyManualScore(10, 7.5); got != 7.5 {
		t.Fatalf("expected 7.5, got %v", got)
	}
}
