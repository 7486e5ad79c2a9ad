package scoring

import (
	"encoding/json"
	"strings"

	"quiz-grading-service/internal/domain"
)

// exactMatch reports whether answer fully matches the question's key.
func exactMatch(body domain.QuestionBody, answer any) bool {
	switch b := body.(type) {
	case *domain.MultipleChoice:
		got, ok := asString(answer)
		return ok && b.CorrectAnswer != "" && got == b.CorrectAnswer
	case *domain.ShortAnswer:
		got, ok := asString(answer)
		return ok && b.CorrectAnswer != "" && equalText(got, b.CorrectAnswer)
	case *domain.FillInTheBlank:
		got, ok := asStringMap(answer)
		if !ok || len(b.CorrectAnswers) == 0 {
			return false
		}
		for blank, want := range b.CorrectAnswers {
			if !equalText(got[blank], want) {
				return false
			}
		}
		return true
	case *domain.Choice:
		got, ok := asStringSlice(answer)
		return ok && len(b.CorrectAnswers) > 0 && setEqual(toSet(got), toSet(b.CorrectAnswers))
	case *domain.Ranking:
		got, ok := asStringSlice(answer)
		return ok && len(b.CorrectOrder) > 0 && equalSlices(got, b.CorrectOrder)
	case *domain.SingleSelectionMatrix, *domain.MultipleSelectionMatrix:
		right, rows, ok := matrixRows(body, answer)
		return ok && rows > 0 && right == rows
	}
	return false
}

// selectionCounts returns how many answered parts are right and wrong, for the
// question types a weighted policy can count.
func selectionCounts(body domain.QuestionBody, answer any) (right, wrong int, ok bool) {
	switch b := body.(type) {
	case *domain.Choice:
		got, ok := asStringSlice(answer)
		if !ok {
			return 0, 0, false
		}
		correct := toSet(b.CorrectAnswers)
		for key := range toSet(got) {
			if _, hit := correct[key]; hit {
				right++
			} else {
				wrong++
			}
		}
		return right, wrong, true
	case *domain.FillInTheBlank:
		got, ok := asStringMap(answer)
		if !ok {
			return 0, 0, false
		}
		for blank, want := range b.CorrectAnswers {
			value := strings.TrimSpace(got[blank])
			switch {
			case value == "":
			case equalText(value, want):
				right++
			default:
				wrong++
			}
		}
		return right, wrong, true
	case *domain.MultipleChoice:
		got, ok := asString(answer)
		if !ok {
			return 0, 0, false
		}
		switch {
		case got == "":
		case got == b.CorrectAnswer:
			right = 1
		default:
			wrong = 1
		}
		return right, wrong, true
	case *domain.MultipleSelectionMatrix:
		got, ok := asStringSliceMap(answer)
		if !ok {
			return 0, 0, false
		}
		for row, cols := range got {
			correct := toSet(b.CorrectAnswers[row])
			for col := range toSet(cols) {
				if _, hit := correct[col]; hit {
					right++
				} else {
					wrong++
				}
			}
		}
		return right, wrong, true
	case *domain.SingleSelectionMatrix:
		got, ok := asStringMap(answer)
		if !ok {
			return 0, 0, false
		}
		for row, col := range got {
			if col == "" {
				continue
			}
			if b.CorrectAnswers[row] == col {
				right++
			} else {
				wrong++
			}
		}
		return right, wrong, true
	}
	return 0, 0, false
}

// matrixRows counts keyed rows answered correctly. rows is the number of rows with a key.
func matrixRows(body domain.QuestionBody, answer any) (right, rows int, ok bool) {
	switch b := body.(type) {
	case *domain.SingleSelectionMatrix:
		got, ok := asStringMap(answer)
		if !ok {
			return 0, 0, false
		}
		for row, want := range b.CorrectAnswers {
			if got[row] == want {
				right++
			}
		}
		return right, len(b.CorrectAnswers), true
	case *domain.MultipleSelectionMatrix:
		got, ok := asStringSliceMap(answer)
		if !ok {
			return 0, 0, false
		}
		for row, want := range b.CorrectAnswers {
			if setEqual(toSet(got[row]), toSet(want)) {
				right++
			}
		}
		return right, len(b.CorrectAnswers), true
	}
	return 0, 0, false
}

// normalizeAnswer decodes raw JSON answers so the converters see plain values.
func normalizeAnswer(answer any) any {
	raw, ok := answer.(json.RawMessage)
	if !ok {
		return answer
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil
	}
	return decoded
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asStringSlice(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

func asStringMap(v any) (map[string]string, bool) {
	switch t := v.(type) {
	case map[string]string:
		return t, true
	case map[string]any:
		out := make(map[string]string, len(t))
		for k, e := range t {
			if s, ok := e.(string); ok {
				out[k] = s
			}
		}
		return out, true
	}
	return nil, false
}

func asStringSliceMap(v any) (map[string][]string, bool) {
	switch t := v.(type) {
	case map[string][]string:
		return t, true
	case map[string]any:
		out := make(map[string][]string, len(t))
		for k, e := range t {
			if s, ok := e.(string); ok {
				out[k] = []string{s}
				continue
			}
			if cols, ok := asStringSlice(e); ok {
				out[k] = cols
			}
		}
		return out, true
	}
	return nil, false
}

func toSet(arr []string) map[string]struct{} {
	m := make(map[string]struct{}, len(arr))
	for _, s := range arr {
		m[s] = struct{}{}
	}
	return m
}

func setEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

func equalSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
