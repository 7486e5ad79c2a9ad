package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

// QuestionType is the wire discriminant of a question.
type QuestionType string

const (
	TypeMultipleChoice          QuestionType = "multiple-choice"
	TypeShortAnswer             QuestionType = "short-answer"
	TypeLongAnswer              QuestionType = "long-answer"
	TypeArticle                 QuestionType = "article"
	TypeFillInTheBlank          QuestionType = "fill-in-the-blank"
	TypeChoice                  QuestionType = "choice"
	TypeRanking                 QuestionType = "ranking"
	TypeSingleSelectionMatrix   QuestionType = "single-selection-matrix"
	TypeMultipleSelectionMatrix QuestionType = "multiple-selection-matrix"
	TypeWhiteboard              QuestionType = "whiteboard"
)

// Question carries the fields shared by every variant. A nil Scoring means the
// type-specific default applies.
type Question struct {
	ID       string
	Prompt   string
	Feedback string
	Scoring  ScoringConfig
	Body     QuestionBody
}

// QuestionBody holds the variant-specific answer space.
type QuestionBody interface {
	QuestionType() QuestionType
	isQuestionBody()
}

type MultipleChoice struct {
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correctAnswer"`
}

type ShortAnswer struct {
	CorrectAnswer string `json:"correctAnswer"`
}

type LongAnswer struct {
	MaxLength int `json:"maxLength,omitempty"`
}

type Article struct {
	Content string `json:"content,omitempty"`
}

// FillInTheBlank answers are keyed by the token inside each {{...}} marker.
type FillInTheBlank struct {
	CorrectAnswers map[string]string `json:"correctAnswers"`
}

type Choice struct {
	Options        map[string]string `json:"options"`
	CorrectAnswers []string          `json:"correctAnswers"`
}

type Ranking struct {
	Items        map[string]string `json:"items"`
	CorrectOrder []string          `json:"correctOrder"`
}

type SingleSelectionMatrix struct {
	Rows           map[string]string `json:"rows"`
	Columns        map[string]string `json:"columns"`
	CorrectAnswers map[string]string `json:"correctAnswers"`
}

type MultipleSelectionMatrix struct {
	Rows           map[string]string   `json:"rows"`
	Columns        map[string]string   `json:"columns"`
	CorrectAnswers map[string][]string `json:"correctAnswers"`
}

type Whiteboard struct {
	BackgroundImage string `json:"backgroundImage,omitempty"`
}

func (*MultipleChoice) QuestionType() QuestionType          { return TypeMultipleChoice }
func (*ShortAnswer) QuestionType() QuestionType             { return TypeShortAnswer }
func (*LongAnswer) QuestionType() QuestionType              { return TypeLongAnswer }
func (*Article) QuestionType() QuestionType                 { return TypeArticle }
func (*FillInTheBlank) QuestionType() QuestionType          { return TypeFillInTheBlank }
func (*Choice) QuestionType() QuestionType                  { return TypeChoice }
func (*Ranking) QuestionType() QuestionType                 { return TypeRanking }
func (*SingleSelectionMatrix) QuestionType() QuestionType   { return TypeSingleSelectionMatrix }
func (*MultipleSelectionMatrix) QuestionType() QuestionType { return TypeMultipleSelectionMatrix }
func (*Whiteboard) QuestionType() QuestionType              { return TypeWhiteboard }

func (*MultipleChoice) isQuestionBody()          {}
func (*ShortAnswer) isQuestionBody()             {}
func (*LongAnswer) isQuestionBody()              {}
func (*Article) isQuestionBody()                 {}
func (*FillInTheBlank) isQuestionBody()          {}
func (*Choice) isQuestionBody()                  {}
func (*Ranking) isQuestionBody()                 {}
func (*SingleSelectionMatrix) isQuestionBody()   {}
func (*MultipleSelectionMatrix) isQuestionBody() {}
func (*Whiteboard) isQuestionBody()              {}

// NewQuestionBody returns an empty body for a wire type.
func NewQuestionBody(t QuestionType) (QuestionBody, error) {
	switch t {
	case TypeMultipleChoice:
		return &MultipleChoice{}, nil
	case TypeShortAnswer:
		return &ShortAnswer{}, nil
	case TypeLongAnswer:
		return &LongAnswer{}, nil
	case TypeArticle:
		return &Article{}, nil
	case TypeFillInTheBlank:
		return &FillInTheBlank{}, nil
	case TypeChoice:
		return &Choice{}, nil
	case TypeRanking:
		return &Ranking{}, nil
	case TypeSingleSelectionMatrix:
		return &SingleSelectionMatrix{}, nil
	case TypeMultipleSelectionMatrix:
		return &MultipleSelectionMatrix{}, nil
	case TypeWhiteboard:
		return &Whiteboard{}, nil
	}
	return nil, fmt.Errorf("unknown question type %q", t)
}

// Type is shorthand for q.Body.QuestionType().
func (q Question) Type() QuestionType {
	if q.Body == nil {
		return ""
	}
	return q.Body.QuestionType()
}

func (q Question) MarshalJSON() ([]byte, error) {
	if q.Body == nil {
		return nil, errors.New("question has no body")
	}
	fields, err := objectFields(q.Body)
	if err != nil {
		return nil, err
	}
	if err := setField(fields, "type", q.Body.QuestionType()); err != nil {
		return nil, err
	}
	if err := setField(fields, "id", q.ID); err != nil {
		return nil, err
	}
	if err := setField(fields, "prompt", q.Prompt); err != nil {
		return nil, err
	}
	if q.Feedback != "" {
		if err := setField(fields, "feedback", q.Feedback); err != nil {
			return nil, err
		}
	}
	if q.Scoring != nil {
		raw, err := MarshalScoring(q.Scoring)
		if err != nil {
			return nil, err
		}
		fields["scoring"] = raw
	}
	return json.Marshal(fields)
}

func (q *Question) UnmarshalJSON(data []byte) error {
	var head struct {
		ID       string          `json:"id"`
		Type     QuestionType    `json:"type"`
		Prompt   string          `json:"prompt"`
		Feedback string          `json:"feedback"`
		Scoring  json.RawMessage `json:"scoring"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	body, err := NewQuestionBody(head.Type)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, body); err != nil {
		return fmt.Errorf("question %s: %w", head.ID, err)
	}
	var scoring ScoringConfig
	if len(head.Scoring) > 0 && string(head.Scoring) != "null" {
		if scoring, err = UnmarshalScoring(head.Scoring); err != nil {
			return fmt.Errorf("question %s: %w", head.ID, err)
		}
	}
	*q = Question{ID: head.ID, Prompt: head.Prompt, Feedback: head.Feedback, Scoring: scoring, Body: body}
	return nil
}

var blankPattern = regexp.MustCompile(`\{\{([^{}]+)\}\}`)

// ExtractBlanks returns the blank tokens of a prompt in order of first appearance.
// A token reused later in the prompt is reported once.
func ExtractBlanks(prompt string) []string {
	matches := blankPattern.FindAllStringSubmatch(prompt, -1)
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		out = append(out, m[1])
	}
	return out
}
