// Package schema upgrades stored quiz configs of any accepted version to the
// canonical domain.QuizConfig.
package schema

import (
	"encoding/json"
	"fmt"

	"quiz-grading-service/internal/domain"
)

// ResolveToLatest converts raw into the canonical config. raw may be a decoded JSON
// object, JSON bytes or text, or an already canonical domain.QuizConfig, which is
// returned unchanged. It fails with domain.ErrInvalidConfig only when raw is not an
// object, lacks string id/title, or carries the canonical tag with an unknown type.
func ResolveToLatest(raw any) (domain.QuizConfig, error) {
	switch v := raw.(type) {
	case domain.QuizConfig:
		if v.Body == nil {
			return domain.QuizConfig{}, invalid("config has no body")
		}
		return v, nil
	case *domain.QuizConfig:
		if v == nil || v.Body == nil {
			return domain.QuizConfig{}, invalid("config has no body")
		}
		return *v, nil
	}

	obj, err := asObject(raw)
	if err != nil {
		return domain.QuizConfig{}, err
	}
	if err := checkIdentity(obj); err != nil {
		return domain.QuizConfig{}, err
	}
	if isCanonical(obj) {
		return decodeCanonical(obj)
	}
	return resolveLegacy(obj), nil
}

// TryResolveToLatest is ResolveToLatest for call sites that treat an unusable
// config as absent.
func TryResolveToLatest(raw any) (domain.QuizConfig, bool) {
	if !IsValidQuizConfig(raw) {
		return domain.QuizConfig{}, false
	}
	cfg, err := ResolveToLatest(raw)
	if err != nil {
		return domain.QuizConfig{}, false
	}
	return cfg, true
}

// IsValidQuizConfig reports whether raw has the minimum shape ResolveToLatest accepts.
func IsValidQuizConfig(raw any) bool {
	switch v := raw.(type) {
	case domain.QuizConfig:
		return v.Body != nil
	case *domain.QuizConfig:
		return v != nil && v.Body != nil
	}
	obj, err := asObject(raw)
	if err != nil {
		return false
	}
	if checkIdentity(obj) != nil {
		return false
	}
	if isCanonical(obj) {
		_, err := decodeCanonical(obj)
		return err == nil
	}
	return true
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, fmt.Sprintf(format, args...))
}

func asObject(raw any) (map[string]any, error) {
	var decoded any
	switch v := raw.(type) {
	case map[string]any:
		return v, nil
	case nil:
		return nil, invalid("config is null")
	case []byte:
		if err := json.Unmarshal(v, &decoded); err != nil {
			return nil, invalid("decode: %v", err)
		}
	case json.RawMessage:
		if err := json.Unmarshal(v, &decoded); err != nil {
			return nil, invalid("decode: %v", err)
		}
	case string:
		if err := json.Unmarshal([]byte(v), &decoded); err != nil {
			return nil, invalid("decode: %v", err)
		}
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, invalid("encode %T: %v", raw, err)
		}
		if err := json.Unmarshal(data, &decoded); err != nil {
			return nil, invalid("decode: %v", err)
		}
	}
	obj, ok := decoded.(map[string]any)
	if !ok {
		return nil, invalid("config is not an object")
	}
	return obj, nil
}

func checkIdentity(obj map[string]any) error {
	if _, ok := obj["id"].(string); !ok {
		return invalid("missing string id")
	}
	if _, ok := obj["title"].(string); !ok {
		return invalid("missing string title")
	}
	return nil
}

func isCanonical(obj map[string]any) bool {
	version, _ := obj["version"].(string)
	return version == domain.CurrentVersion
}

func decodeCanonical(obj map[string]any) (domain.QuizConfig, error) {
	kind, _ := obj["type"].(string)
	if kind != string(domain.KindRegular) && kind != string(domain.KindContainer) {
		return domain.QuizConfig{}, invalid("unknown quiz type %q", kind)
	}
	data, err := json.Marshal(withDecodedQuestions(obj))
	if err != nil {
		return domain.QuizConfig{}, invalid("encode: %v", err)
	}
	var cfg domain.QuizConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return domain.QuizConfig{}, invalid("decode canonical config: %v", err)
	}
	return cfg, nil
}

// withDecodedQuestions returns a shallow copy of a canonical object whose page
// questions are already decoded, dropping the ones no variant accepts.
func withDecodedQuestions(obj map[string]any) map[string]any {
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		out[k] = v
	}
	if pages, ok := decodePages(obj["pages"]); ok {
		out["pages"] = pages
	}
	nested, ok := obj["nestedQuizzes"].([]any)
	if !ok {
		return out
	}
	quizzes := make([]any, 0, len(nested))
	for _, item := range nested {
		quiz, ok := item.(map[string]any)
		if !ok {
			quizzes = append(quizzes, item)
			continue
		}
		copied := make(map[string]any, len(quiz))
		for k, v := range quiz {
			copied[k] = v
		}
		if pages, ok := decodePages(quiz["pages"]); ok {
			copied["pages"] = pages
		}
		quizzes = append(quizzes, copied)
	}
	out["nestedQuizzes"] = quizzes
	return out
}
