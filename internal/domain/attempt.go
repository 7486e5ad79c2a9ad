package domain

import "encoding/json"

// AnswerSubmission is one learner answer as received from clients.
type AnswerSubmission struct {
	QuestionID string
	Answer     json.RawMessage
}

// AnswerResult summarizes the outcome of scoring a single answer.
type AnswerResult struct {
	QuestionID string  `json:"questionId"`
	Awarded    float64 `json:"awarded"`
	MaxPoints  float64 `json:"maxPoints"`
	Correct    bool    `json:"correct"`
	Deferred   bool    `json:"deferred,omitempty"` // awaiting rubric or manual grading
}

// AttemptResult is the scored view of every question in a quiz for one learner.
type AttemptResult struct {
	QuizID        string         `json:"quizId"`
	UserID        string         `json:"userId"`
	Awarded       float64        `json:"awarded"`
	MaxPoints     float64        `json:"maxPoints"`
	Percentage    float64        `json:"percentage"`
	Passed        *bool          `json:"passed,omitempty"`
	PendingReview int            `json:"pendingReview"`
	Questions     []AnswerResult `json:"questions"`
}
