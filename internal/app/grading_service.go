package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"quiz-grading-service/internal/domain"
	"quiz-grading-service/internal/scoring"
	"quiz-grading-service/internal/weighting"
)

// QuizRepository loads resolved quiz configs (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.QuizConfig, error)
}

// AttemptRepository keeps a learner's answers until the attempt is finished.
type AttemptRepository interface {
	SaveAnswer(ctx context.Context, quizID, userID, questionID string, answer json.RawMessage) error
	Answers(ctx context.Context, quizID, userID string) (map[string]json.RawMessage, error)
	Clear(ctx context.Context, quizID, userID string) error
}

// GradebookRepository loads the grade tree of a course.
type GradebookRepository interface {
	GetGradeTree(ctx context.Context, courseID string) (domain.GradeNode, error)
}

// QuizSummary is what a learner sees when an attempt starts.
type QuizSummary struct {
	QuizID      string          `json:"quizId"`
	Title       string          `json:"title"`
	Kind        domain.QuizKind `json:"kind"`
	Questions   int             `json:"questions"`
	TotalPoints float64         `json:"totalPoints"`
}

// GradingService contains the quiz grading use cases.
type GradingService struct {
	quizzes  QuizRepository
	attempts AttemptRepository
	grades   GradebookRepository
	logger   *zap.Logger
}

func NewGradingService(quizzes QuizRepository, attempts AttemptRepository, grades GradebookRepository, logger *zap.Logger) *GradingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradingService{quizzes: quizzes, attempts: attempts, grades: grades, logger: logger}
}

// Quiz returns the resolved config. Configs that fail resolution surface as
// domain.ErrQuizUnavailable.
func (s *GradingService) Quiz(ctx context.Context, quizID string) (domain.QuizConfig, error) {
	cfg, err := s.quizzes.GetQuiz(ctx, quizID)
	if errors.Is(err, domain.ErrInvalidConfig) {
		s.logger.Warn("quiz config rejected", zap.String("quizId", quizID), zap.Error(err))
		return domain.QuizConfig{}, fmt.Errorf("%w: %w", domain.ErrQuizUnavailable, err)
	}
	if err != nil {
		return domain.QuizConfig{}, err
	}
	return cfg, nil
}

// Start loads the quiz so learners cannot attempt unknown or broken quizzes.
func (s *GradingService) Start(ctx context.Context, quizID, userID string) (QuizSummary, error) {
	cfg, err := s.Quiz(ctx, quizID)
	if err != nil {
		return QuizSummary{}, err
	}
	questions := cfg.Questions()
	for _, q := range questions {
		if q.Scoring == nil {
			continue
		}
		if err := domain.ValidateScoring(q.Scoring); err != nil {
			s.logger.Warn("questionable scoring config", zap.String("quizId", quizID), zap.String("questionId", q.ID), zap.Error(err))
		}
	}
	s.logger.Debug("attempt started", zap.String("quizId", quizID), zap.String("userId", userID))
	return QuizSummary{
		QuizID:      cfg.ID,
		Title:       cfg.Title,
		Kind:        cfg.Kind(),
		Questions:   len(questions),
		TotalPoints: scoring.TotalPoints(cfg),
	}, nil
}

// SubmitAnswer scores one answer and records it for the attempt. Resubmitting a
// question replaces the earlier answer.
func (s *GradingService) SubmitAnswer(ctx context.Context, quizID, userID string, submission domain.AnswerSubmission) (domain.AnswerResult, error) {
	cfg, err := s.Quiz(ctx, quizID)
	if err != nil {
		return domain.AnswerResult{}, err
	}
	question, ok := cfg.FindQuestion(submission.QuestionID)
	if !ok {
		return domain.AnswerResult{}, domain.ErrQuestionNotFound
	}

	result := scoring.Score(question, submission.Answer)
	if err := s.attempts.SaveAnswer(ctx, quizID, userID, question.ID, submission.Answer); err != nil {
		return domain.AnswerResult{}, fmt.Errorf("save answer: %w", err)
	}
	return answerResult(question.ID, result), nil
}

// FinishAttempt scores every question of the quiz against the recorded answers and
// clears them. Unanswered questions award zero.
func (s *GradingService) FinishAttempt(ctx context.Context, quizID, userID string) (domain.AttemptResult, error) {
	cfg, err := s.Quiz(ctx, quizID)
	if err != nil {
		return domain.AttemptResult{}, err
	}
	answers, err := s.attempts.Answers(ctx, quizID, userID)
	if err != nil {
		return domain.AttemptResult{}, fmt.Errorf("load answers: %w", err)
	}

	out := domain.AttemptResult{QuizID: quizID, UserID: userID}
	for _, q := range cfg.Questions() {
		var res scoring.Result
		if raw, ok := answers[q.ID]; ok {
			res = scoring.Score(q, raw)
		} else {
			res = scoring.Result{Max: scoring.QuestionPoints(q)}
		}
		if res.Deferred {
			out.PendingReview++
		}
		out.Awarded += res.Awarded
		out.MaxPoints += res.Max
		out.Questions = append(out.Questions, answerResult(q.ID, res))
	}
	if out.MaxPoints > 0 {
		out.Percentage = out.Awarded / out.MaxPoints * 100
	}
	if g := cfg.Grading(); g != nil && g.Enabled && g.PassingScore != nil && out.PendingReview == 0 {
		passed := out.Percentage >= *g.PassingScore
		out.Passed = &passed
	}

	if err := s.attempts.Clear(ctx, quizID, userID); err != nil {
		s.logger.Warn("clear attempt", zap.String("quizId", quizID), zap.String("userId", userID), zap.Error(err))
	}
	s.logger.Info("attempt finished",
		zap.String("quizId", quizID),
		zap.String("userId", userID),
		zap.Float64("awarded", out.Awarded),
		zap.Float64("max", out.MaxPoints),
		zap.Int("pending", out.PendingReview),
	)
	return out, nil
}

// CourseWeights normalizes the grade tree of a course.
func (s *GradingService) CourseWeights(ctx context.Context, courseID string) (weighting.Node, error) {
	if s.grades == nil {
		return weighting.Node{}, domain.ErrCourseNotFound
	}
	tree, err := s.grades.GetGradeTree(ctx, courseID)
	if err != nil {
		return weighting.Node{}, err
	}
	return weighting.Normalize(tree), nil
}

func answerResult(questionID string, r scoring.Result) domain.AnswerResult {
	return domain.AnswerResult{
		QuestionID: questionID,
		Awarded:    r.Awarded,
		MaxPoints:  r.Max,
		Correct:    r.Correct,
		Deferred:   r.Deferred,
	}
}
