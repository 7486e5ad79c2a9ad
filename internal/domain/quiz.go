package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// CurrentVersion tags canonical quiz configs. Stored values without it are legacy.
const CurrentVersion = "2"

// QuizKind discriminates the two canonical quiz shapes.
type QuizKind string

const (
	KindRegular   QuizKind = "regular"
	KindContainer QuizKind = "container"
)

// QuizConfig is the canonical quiz configuration. Body is either *RegularQuiz or *ContainerQuiz.
type QuizConfig struct {
	Version string
	ID      string
	Title   string
	Body    QuizBody
}

// QuizBody is implemented only by *RegularQuiz and *ContainerQuiz.
type QuizBody interface {
	Kind() QuizKind
	isQuizBody()
}

// RegularQuiz holds pages of questions directly.
type RegularQuiz struct {
	Pages       []QuizPage     `json:"pages"`
	Resources   []QuizResource `json:"resources,omitempty"`
	GlobalTimer *int           `json:"globalTimer,omitempty"`
	Grading     *GradingConfig `json:"grading,omitempty"`
}

// ContainerQuiz is a sequence of independent nested quizzes.
type ContainerQuiz struct {
	NestedQuizzes   []NestedQuizConfig `json:"nestedQuizzes"`
	SequentialOrder bool               `json:"sequentialOrder,omitempty"`
	GlobalTimer     *int               `json:"globalTimer,omitempty"`
	Grading         *GradingConfig     `json:"grading,omitempty"`
}

func (*RegularQuiz) Kind() QuizKind   { return KindRegular }
func (*ContainerQuiz) Kind() QuizKind { return KindContainer }
func (*RegularQuiz) isQuizBody()      {}
func (*ContainerQuiz) isQuizBody()    {}

// NestedQuizConfig is one quiz inside a container, with its own resources.
type NestedQuizConfig struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Pages       []QuizPage     `json:"pages"`
	Resources   []QuizResource `json:"resources,omitempty"`
	GlobalTimer *int           `json:"globalTimer,omitempty"`
	Grading     *GradingConfig `json:"grading,omitempty"`
}

// QuizPage is an ordered group of questions.
type QuizPage struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// QuizResource is a rich-text block shown on the listed pages.
type QuizResource struct {
	ID      string   `json:"id"`
	Title   string   `json:"title,omitempty"`
	Content string   `json:"content"`
	PageIDs []string `json:"pageIds,omitempty"`
}

// GradingConfig controls pass/fail and what learners see after submission.
type GradingConfig struct {
	Enabled            bool     `json:"enabled"`
	PassingScore       *float64 `json:"passingScore,omitempty"` // 0-100
	ShowScore          bool     `json:"showScore,omitempty"`
	ShowCorrectAnswers bool     `json:"showCorrectAnswers,omitempty"`
}

// Kind reports the body variant, or "" for a zero config.
func (c QuizConfig) Kind() QuizKind {
	if c.Body == nil {
		return ""
	}
	return c.Body.Kind()
}

// Grading returns the outermost grading config, if any.
func (c QuizConfig) Grading() *GradingConfig {
	switch b := c.Body.(type) {
	case *RegularQuiz:
		return b.Grading
	case *ContainerQuiz:
		return b.Grading
	}
	return nil
}

// Questions flattens every question of every page, in order. Container quizzes
// contribute their nested quizzes in listed order.
func (c QuizConfig) Questions() []Question {
	var out []Question
	switch b := c.Body.(type) {
	case *RegularQuiz:
		out = appendPageQuestions(out, b.Pages)
	case *ContainerQuiz:
		for _, nested := range b.NestedQuizzes {
			out = appendPageQuestions(out, nested.Pages)
		}
	}
	return out
}

// FindQuestion looks a question up by ID.
func (c QuizConfig) FindQuestion(id string) (Question, bool) {
	for _, q := range c.Questions() {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

func appendPageQuestions(out []Question, pages []QuizPage) []Question {
	for _, page := range pages {
		out = append(out, page.Questions...)
	}
	return out
}

func (c QuizConfig) MarshalJSON() ([]byte, error) {
	if c.Body == nil {
		return nil, errors.New("quiz config has no body")
	}
	fields, err := objectFields(c.Body)
	if err != nil {
		return nil, err
	}
	for key, v := range map[string]any{
		"version": c.Version,
		"id":      c.ID,
		"title":   c.Title,
		"type":    c.Body.Kind(),
	} {
		if err := setField(fields, key, v); err != nil {
			return nil, err
		}
	}
	return json.Marshal(fields)
}

func (c *QuizConfig) UnmarshalJSON(data []byte) error {
	var head struct {
		Version string   `json:"version"`
		ID      string   `json:"id"`
		Title   string   `json:"title"`
		Type    QuizKind `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	var body QuizBody
	switch head.Type {
	case KindRegular:
		body = &RegularQuiz{}
	case KindContainer:
		body = &ContainerQuiz{}
	default:
		return fmt.Errorf("%w: unknown quiz type %q", ErrInvalidConfig, head.Type)
	}
	if err := json.Unmarshal(data, body); err != nil {
		return err
	}
	*c = QuizConfig{Version: head.Version, ID: head.ID, Title: head.Title, Body: body}
	return nil
}
