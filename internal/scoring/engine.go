// Package scoring computes awarded and maximum points for a learner answer.
package scoring

import (
	"math"

	"quiz-grading-service/internal/domain"
)

// Result is the outcome of scoring a single question response.
type Result struct {
	Awarded  float64
	Max      float64
	Correct  bool // the answer fully matches the key
	Deferred bool // rubric or manual grading decides Awarded
}

// Score evaluates answer against the question's own scoring config, or the
// type default when it has none. A mis-shaped answer scores zero. Short-answer
// and fill-in-the-blank text is compared case-insensitively with runs of
// whitespace collapsed; partial-match scoring applies its own case setting.
func Score(q domain.Question, answer any) Result {
	return ScoreWith(q, q.Scoring, answer)
}

// ScoreWith evaluates answer under cfg instead of the question's config.
func ScoreWith(q domain.Question, cfg domain.ScoringConfig, answer any) Result {
	if cfg == nil {
		cfg = DefaultScoring(q)
	}
	e := &evaluator{question: q, answer: normalizeAnswer(answer)}
	cfg.Accept(e)
	return e.result
}

// EffectiveScoring returns the config Score would use for q.
func EffectiveScoring(q domain.Question) domain.ScoringConfig {
	if q.Scoring != nil {
		return q.Scoring
	}
	return DefaultScoring(q)
}

// QuestionPoints is the maximum score a question can award.
func QuestionPoints(q domain.Question) float64 {
	return nonNegative(EffectiveScoring(q).MaxScore())
}

// TotalPoints sums QuestionPoints over every page. Container quizzes sum their nested quizzes.
func TotalPoints(cfg domain.QuizConfig) float64 {
	total := 0.0
	for _, q := range cfg.Questions() {
		total += QuestionPoints(q)
	}
	return total
}

// ApplyManualScore clamps an instructor-entered score for a deferred question to [0, max].
func ApplyManualScore(max, entered float64) float64 {
	return clamp(entered, 0, nonNegative(max))
}

// evaluator implements domain.ScoringVisitor for one question and answer.
type evaluator struct {
	question domain.Question
	answer   any
	result   Result
}

func (e *evaluator) VisitSimple(s domain.SimpleScoring) {
	max := nonNegative(s.Points)
	e.allOrNothing(max, exactMatch(e.question.Body, e.answer))
}

func (e *evaluator) VisitWeighted(s domain.WeightedScoring) {
	max := nonNegative(s.MaxPoints)
	correct := exactMatch(e.question.Body, e.answer)
	e.result = Result{Max: max, Correct: correct}

	switch s.Mode {
	case domain.WeightedPartialWithPenalty:
		right, wrong, ok := selectionCounts(e.question.Body, e.answer)
		if !ok {
			return
		}
		raw := float64(right)*nonNegative(s.PointsPerCorrect) - float64(wrong)*nonNegative(s.PenaltyPerIncorrect)
		e.result.Awarded = clamp(raw, 0, max)
	case domain.WeightedPartialNoPenalty:
		right, _, ok := selectionCounts(e.question.Body, e.answer)
		if !ok {
			return
		}
		e.result.Awarded = math.Min(float64(right)*nonNegative(s.PointsPerCorrect), max)
	default:
		e.allOrNothing(max, correct)
	}
}

func (e *evaluator) VisitRubric(s domain.RubricScoring) {
	e.result = Result{Max: nonNegative(s.MaxPoints), Deferred: true}
}

func (e *evaluator) VisitManual(s domain.ManualScoring) {
	e.result = Result{Max: nonNegative(s.MaxPoints), Deferred: true}
}

func (e *evaluator) VisitPartialMatch(s domain.PartialMatchScoring) {
	max := nonNegative(s.MaxPoints)
	threshold := clamp(s.MatchThreshold, 0, 1)
	passes := func(got, want string) bool {
		return similarity(got, want, s.CaseSensitive) >= threshold
	}

	matched := false
	switch body := e.question.Body.(type) {
	case *domain.ShortAnswer:
		if got, ok := asString(e.answer); ok && body.CorrectAnswer != "" {
			matched = passes(got, body.CorrectAnswer)
		}
	case *domain.FillInTheBlank:
		if got, ok := asStringMap(e.answer); ok && len(body.CorrectAnswers) > 0 {
			matched = true
			for blank, want := range body.CorrectAnswers {
				if !passes(got[blank], want) {
					matched = false
					break
				}
			}
		}
	}
	e.allOrNothing(max, matched)
}

func (e *evaluator) VisitRanking(s domain.RankingScoring) {
	max := nonNegative(s.MaxPoints)
	body, ok := e.question.Body.(*domain.Ranking)
	if !ok {
		e.result = Result{Max: max}
		return
	}
	got, ok := asStringSlice(e.answer)
	if !ok {
		e.result = Result{Max: max}
		return
	}
	exact := len(body.CorrectOrder) > 0 && equalSlices(got, body.CorrectOrder)

	if s.Mode == domain.RankingPartialOrder {
		placed := 0
		for i := 0; i < len(got) && i < len(body.CorrectOrder); i++ {
			if got[i] == body.CorrectOrder[i] {
				placed++
			}
		}
		e.result = Result{
			Max:     max,
			Correct: exact,
			Awarded: math.Min(float64(placed)*nonNegative(s.PointsPerCorrectPosition), max),
		}
		return
	}
	e.allOrNothing(max, exact)
}

func (e *evaluator) VisitMatrix(s domain.MatrixScoring) {
	max := nonNegative(s.MaxPoints)
	right, rows, ok := matrixRows(e.question.Body, e.answer)
	if !ok || rows == 0 {
		e.result = Result{Max: max}
		return
	}
	all := right == rows

	if s.Mode == domain.MatrixAllOrNothing {
		e.allOrNothing(max, all)
		return
	}
	e.result = Result{
		Max:     max,
		Correct: all,
		Awarded: math.Min(float64(right)*nonNegative(s.PointsPerRow), max),
	}
}

func (e *evaluator) allOrNothing(max float64, correct bool) {
	e.result = Result{Max: max, Correct: correct}
	if correct {
		e.result.Awarded = max
	}
}

func nonNegative(x float64) float64 {
	if x < 0 || math.IsNaN(x) {
		return 0
	}
	return x
}

func clamp(x, lo, hi float64) float64 {
	if math.IsNaN(x) || x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
