package scoring

import "quiz-grading-service/internal/domain"

// DefaultScoring is the policy applied to a question with no explicit scoring config.
func DefaultScoring(q domain.Question) domain.ScoringConfig {
	switch q.Body.(type) {
	case *domain.MultipleChoice, *domain.ShortAnswer:
		return domain.SimpleScoring{Points: 1}
	case *domain.Choice:
		return domain.WeightedScoring{Mode: domain.WeightedAllOrNothing, MaxPoints: 1}
	case *domain.FillInTheBlank:
		return domain.WeightedScoring{Mode: domain.WeightedPartialNoPenalty, MaxPoints: 1, PointsPerCorrect: 1}
	case *domain.Ranking:
		return domain.RankingScoring{Mode: domain.RankingExactOrder, MaxPoints: 1}
	case *domain.SingleSelectionMatrix, *domain.MultipleSelectionMatrix:
		return domain.MatrixScoring{Mode: domain.MatrixPartial, MaxPoints: 1, PointsPerRow: 1}
	default:
		// long-answer, article, whiteboard
		return domain.ManualScoring{MaxPoints: 1}
	}
}
