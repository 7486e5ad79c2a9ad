package schema

import (
	"encoding/json"
	"fmt"

	"quiz-grading-service/internal/domain"
)

// Legacy configs carry no discriminant; the populated field decides the shape.
// Field names below are the ones persisted before version 2:
//
//	{"id", "title", "pages" | "quizzes", "resources", "globalTimer", "gradingConfig", "sequentialOrder"}

func isContainerQuiz(obj map[string]any) bool {
	quizzes, ok := obj["quizzes"].([]any)
	return ok && len(quizzes) > 0
}

func isRegularQuiz(obj map[string]any) bool {
	pages, ok := obj["pages"].([]any)
	return ok && len(pages) > 0
}

func resolveLegacy(obj map[string]any) domain.QuizConfig {
	cfg := domain.QuizConfig{
		Version: domain.CurrentVersion,
		ID:      obj["id"].(string),
		Title:   obj["title"].(string),
	}

	var resources []domain.QuizResource
	decodeField(obj, "resources", &resources)
	timer := legacyTimer(obj)
	grading := legacyGrading(obj)

	switch {
	case isContainerQuiz(obj):
		container := &domain.ContainerQuiz{
			NestedQuizzes: []domain.NestedQuizConfig{},
			GlobalTimer:   timer,
			Grading:       grading,
		}
		decodeField(obj, "sequentialOrder", &container.SequentialOrder)
		for _, item := range obj["quizzes"].([]any) {
			nested, ok := item.(map[string]any)
			if !ok {
				continue
			}
			container.NestedQuizzes = append(container.NestedQuizzes, convertNested(nested, resources))
		}
		cfg.Body = container
	case isRegularQuiz(obj):
		cfg.Body = &domain.RegularQuiz{
			Pages:       convertPages(obj["pages"]),
			Resources:   resources,
			GlobalTimer: timer,
			Grading:     grading,
		}
	default:
		// Records saved mid-edit may have neither shape yet.
		cfg.Body = &domain.RegularQuiz{
			Pages:       []domain.QuizPage{},
			Resources:   resources,
			GlobalTimer: timer,
			Grading:     grading,
		}
	}
	return cfg
}

// convertNested moves the container's resources into the nested quiz. Each nested
// quiz receives its own copy.
func convertNested(nested map[string]any, parentResources []domain.QuizResource) domain.NestedQuizConfig {
	out := domain.NestedQuizConfig{
		ID:          stringField(nested, "id"),
		Title:       stringField(nested, "title"),
		Pages:       convertPages(nested["pages"]),
		Resources:   copyResources(parentResources),
		GlobalTimer: legacyTimer(nested),
		Grading:     legacyGrading(nested),
	}
	var own []domain.QuizResource
	decodeField(nested, "resources", &own)
	out.Resources = append(out.Resources, own...)
	return out
}

func convertPages(raw any) []domain.QuizPage {
	items, _ := raw.([]any)
	pages := make([]domain.QuizPage, 0, len(items))
	for _, item := range items {
		page, ok := item.(map[string]any)
		if !ok {
			continue
		}
		converted := domain.QuizPage{
			ID:        stringField(page, "id"),
			Title:     stringField(page, "title"),
			Questions: []domain.Question{},
		}
		questions, _ := page["questions"].([]any)
		for _, q := range questions {
			m, ok := q.(map[string]any)
			if !ok {
				continue
			}
			if question, ok := convertQuestion(m); ok {
				converted.Questions = append(converted.Questions, question)
			}
		}
		pages = append(pages, converted)
	}
	return pages
}

// convertQuestion passes every question through unchanged except fill-in-the-blank,
// whose positional answers become a map keyed by blank token. Questions that match
// no known variant are dropped; an unreadable scoring config falls back to the
// question's default scoring.
func convertQuestion(m map[string]any) (domain.Question, bool) {
	if t, _ := m["type"].(string); domain.QuestionType(t) == domain.TypeFillInTheBlank {
		if positional, ok := m["correctAnswers"].([]any); ok {
			rewritten := make(map[string]any, len(m))
			for k, v := range m {
				rewritten[k] = v
			}
			prompt, _ := m["prompt"].(string)
			rewritten["correctAnswers"] = zipBlanks(domain.ExtractBlanks(prompt), positional)
			m = rewritten
		}
	}
	return decodeQuestion(m)
}

func decodeQuestion(m map[string]any) (domain.Question, bool) {
	if q, err := unmarshalQuestion(m); err == nil {
		return q, true
	}
	if _, ok := m["scoring"]; !ok {
		return domain.Question{}, false
	}
	unscored := make(map[string]any, len(m))
	for k, v := range m {
		if k != "scoring" {
			unscored[k] = v
		}
	}
	q, err := unmarshalQuestion(unscored)
	if err != nil {
		return domain.Question{}, false
	}
	return q, true
}

func unmarshalQuestion(m map[string]any) (domain.Question, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return domain.Question{}, err
	}
	var q domain.Question
	err = json.Unmarshal(data, &q)
	return q, err
}

// decodePages decodes the questions of canonical pages one at a time so that a
// single unreadable question does not reject the quiz.
func decodePages(raw any) (any, bool) {
	items, ok := raw.([]any)
	if !ok {
		return raw, false
	}
	out := make([]any, 0, len(items))
	for _, item := range items {
		page, ok := item.(map[string]any)
		if !ok {
			out = append(out, item)
			continue
		}
		questions, ok := page["questions"].([]any)
		if !ok {
			out = append(out, page)
			continue
		}
		decoded := make([]domain.Question, 0, len(questions))
		for _, q := range questions {
			m, ok := q.(map[string]any)
			if !ok {
				continue
			}
			if question, ok := decodeQuestion(m); ok {
				decoded = append(decoded, question)
			}
		}
		copied := make(map[string]any, len(page))
		for k, v := range page {
			copied[k] = v
		}
		copied["questions"] = decoded
		out = append(out, copied)
	}
	return out, true
}

// zipBlanks pairs tokens with answers by index. Tokens past the end of answers get no entry.
func zipBlanks(tokens []string, answers []any) map[string]string {
	out := make(map[string]string, len(tokens))
	for i, token := range tokens {
		if i >= len(answers) {
			break
		}
		switch v := answers[i].(type) {
		case nil:
		case string:
			out[token] = v
		default:
			out[token] = fmt.Sprint(v)
		}
	}
	return out
}

func legacyTimer(obj map[string]any) *int {
	var timer *int
	decodeField(obj, "globalTimer", &timer)
	return timer
}

func legacyGrading(obj map[string]any) *domain.GradingConfig {
	var grading *domain.GradingConfig
	decodeField(obj, "gradingConfig", &grading)
	if grading == nil {
		decodeField(obj, "grading", &grading)
	}
	return grading
}

func copyResources(in []domain.QuizResource) []domain.QuizResource {
	out := make([]domain.QuizResource, len(in))
	for i, r := range in {
		out[i] = r
		if r.PageIDs != nil {
			out[i].PageIDs = append([]string(nil), r.PageIDs...)
		}
	}
	return out
}

// decodeField best-effort decodes obj[key] into target, leaving target untouched on mismatch.
func decodeField(obj map[string]any, key string, target any) {
	v, ok := obj[key]
	if !ok || v == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = json.Unmarshal(data, target)
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}
