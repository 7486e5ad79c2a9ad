package domain

import "errors"

var (
	// ErrInvalidConfig is returned when a stored quiz config is not an object or lacks id/title.
	ErrInvalidConfig = errors.New("invalid quiz config")
	// ErrQuizUnavailable is the user-facing form of a config that could not be resolved.
	ErrQuizUnavailable = errors.New("this quiz's configuration is missing or corrupted")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound indicates a submitted question ID is invalid.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrCourseNotFound indicates no grade tree is stored for a course.
	ErrCourseNotFound = errors.New("course not found")
)
