package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ScoringType is the wire discriminant of a scoring config.
type ScoringType string

const (
	ScoringSimple       ScoringType = "simple"
	ScoringWeighted     ScoringType = "weighted"
	ScoringRubric       ScoringType = "rubric"
	ScoringManual       ScoringType = "manual"
	ScoringPartialMatch ScoringType = "partial-match"
	ScoringRanking      ScoringType = "ranking"
	ScoringMatrix       ScoringType = "matrix"
)

type WeightedMode string

const (
	WeightedAllOrNothing       WeightedMode = "all-or-nothing"
	WeightedPartialWithPenalty WeightedMode = "partial-with-penalty"
	WeightedPartialNoPenalty   WeightedMode = "partial-no-penalty"
)

type RankingMode string

const (
	RankingExactOrder   RankingMode = "exact-order"
	RankingPartialOrder RankingMode = "partial-order"
)

type MatrixMode string

const (
	MatrixAllOrNothing MatrixMode = "all-or-nothing"
	MatrixPartial      MatrixMode = "partial"
)

// ScoringConfig is a closed set of scoring policies. Consumers dispatch through
// Accept, so a new policy cannot be added without every ScoringVisitor handling it.
type ScoringConfig interface {
	ScoringType() ScoringType
	MaxScore() float64
	Accept(v ScoringVisitor)
}

// ScoringVisitor has one method per ScoringConfig variant.
type ScoringVisitor interface {
	VisitSimple(SimpleScoring)
	VisitWeighted(WeightedScoring)
	VisitRubric(RubricScoring)
	VisitManual(ManualScoring)
	VisitPartialMatch(PartialMatchScoring)
	VisitRanking(RankingScoring)
	VisitMatrix(MatrixScoring)
}

// SimpleScoring awards Points for an exactly correct answer.
type SimpleScoring struct {
	Points float64 `json:"points"`
}

type WeightedScoring struct {
	Mode                WeightedMode `json:"mode"`
	MaxPoints           float64      `json:"maxPoints"`
	PointsPerCorrect    float64      `json:"pointsPerCorrect,omitempty"`
	PenaltyPerIncorrect float64      `json:"penaltyPerIncorrect,omitempty"`
}

// RubricScoring defers to an externally defined rubric; MaxPoints mirrors the rubric maximum.
type RubricScoring struct {
	RubricID  string  `json:"rubricId"`
	MaxPoints float64 `json:"maxPoints"`
}

type ManualScoring struct {
	MaxPoints float64 `json:"maxPoints"`
}

type PartialMatchScoring struct {
	MaxPoints      float64 `json:"maxPoints"`
	CaseSensitive  bool    `json:"caseSensitive"`
	MatchThreshold float64 `json:"matchThreshold"`
}

type RankingScoring struct {
	Mode                     RankingMode `json:"mode"`
	MaxPoints                float64     `json:"maxPoints"`
	PointsPerCorrectPosition float64     `json:"pointsPerCorrectPosition,omitempty"`
}

type MatrixScoring struct {
	Mode         MatrixMode `json:"mode"`
	MaxPoints    float64    `json:"maxPoints"`
	PointsPerRow float64    `json:"pointsPerRow,omitempty"`
}

func (SimpleScoring) ScoringType() ScoringType       { return ScoringSimple }
func (WeightedScoring) ScoringType() ScoringType     { return ScoringWeighted }
func (RubricScoring) ScoringType() ScoringType       { return ScoringRubric }
func (ManualScoring) ScoringType() ScoringType       { return ScoringManual }
func (PartialMatchScoring) ScoringType() ScoringType { return ScoringPartialMatch }
func (RankingScoring) ScoringType() ScoringType      { return ScoringRanking }
func (MatrixScoring) ScoringType() ScoringType       { return ScoringMatrix }

func (s SimpleScoring) MaxScore() float64       { return s.Points }
func (s WeightedScoring) MaxScore() float64     { return s.MaxPoints }
func (s RubricScoring) MaxScore() float64       { return s.MaxPoints }
func (s ManualScoring) MaxScore() float64       { return s.MaxPoints }
func (s PartialMatchScoring) MaxScore() float64 { return s.MaxPoints }
func (s RankingScoring) MaxScore() float64      { return s.MaxPoints }
func (s MatrixScoring) MaxScore() float64       { return s.MaxPoints }

func (s SimpleScoring) Accept(v ScoringVisitor)       { v.VisitSimple(s) }
func (s WeightedScoring) Accept(v ScoringVisitor)     { v.VisitWeighted(s) }
func (s RubricScoring) Accept(v ScoringVisitor)       { v.VisitRubric(s) }
func (s ManualScoring) Accept(v ScoringVisitor)       { v.VisitManual(s) }
func (s PartialMatchScoring) Accept(v ScoringVisitor) { v.VisitPartialMatch(s) }
func (s RankingScoring) Accept(v ScoringVisitor)      { v.VisitRanking(s) }
func (s MatrixScoring) Accept(v ScoringVisitor)       { v.VisitMatrix(s) }

// MarshalScoring encodes a scoring config with its "type" discriminant.
func MarshalScoring(cfg ScoringConfig) ([]byte, error) {
	if cfg == nil {
		return nil, errors.New("nil scoring config")
	}
	return marshalTagged(string(cfg.ScoringType()), cfg)
}

// UnmarshalScoring decodes a tagged scoring config.
func UnmarshalScoring(data []byte) (ScoringConfig, error) {
	tag, err := readTag(data)
	if err != nil {
		return nil, err
	}
	switch ScoringType(tag) {
	case ScoringSimple:
		return decodeScoring[SimpleScoring](data)
	case ScoringWeighted:
		return decodeScoring[WeightedScoring](data)
	case ScoringRubric:
		return decodeScoring[RubricScoring](data)
	case ScoringManual:
		return decodeScoring[ManualScoring](data)
	case ScoringPartialMatch:
		return decodeScoring[PartialMatchScoring](data)
	case ScoringRanking:
		return decodeScoring[RankingScoring](data)
	case ScoringMatrix:
		return decodeScoring[MatrixScoring](data)
	}
	return nil, fmt.Errorf("unknown scoring type %q", tag)
}

func decodeScoring[T ScoringConfig](data []byte) (ScoringConfig, error) {
	var cfg T
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidateScoring checks the documented invariants of a scoring config.
func ValidateScoring(cfg ScoringConfig) error {
	v := &scoringValidator{}
	cfg.Accept(v)
	return errors.Join(v.errs...)
}

type scoringValidator struct {
	errs []error
}

func (v *scoringValidator) nonNegative(name string, values ...float64) {
	for _, x := range values {
		if x < 0 {
			v.errs = append(v.errs, fmt.Errorf("%s must be non-negative, got %v", name, x))
			return
		}
	}
}

func (v *scoringValidator) VisitSimple(s SimpleScoring) { v.nonNegative("simple points", s.Points) }

func (v *scoringValidator) VisitWeighted(s WeightedScoring) {
	v.nonNegative("weighted points", s.MaxPoints, s.PointsPerCorrect, s.PenaltyPerIncorrect)
	switch s.Mode {
	case WeightedAllOrNothing, WeightedPartialWithPenalty, WeightedPartialNoPenalty:
	default:
		v.errs = append(v.errs, fmt.Errorf("unknown weighted mode %q", s.Mode))
	}
}

func (v *scoringValidator) VisitRubric(s RubricScoring) { v.nonNegative("rubric maxPoints", s.MaxPoints) }

func (v *scoringValidator) VisitManual(s ManualScoring) { v.nonNegative("manual maxPoints", s.MaxPoints) }

func (v *scoringValidator) VisitPartialMatch(s PartialMatchScoring) {
	v.nonNegative("partial-match maxPoints", s.MaxPoints)
	if s.MatchThreshold < 0 || s.MatchThreshold > 1 {
		v.errs = append(v.errs, fmt.Errorf("matchThreshold must be within [0,1], got %v", s.MatchThreshold))
	}
}

func (v *scoringValidator) VisitRanking(s RankingScoring) {
	v.nonNegative("ranking points", s.MaxPoints, s.PointsPerCorrectPosition)
	switch s.Mode {
	case RankingExactOrder, RankingPartialOrder:
	default:
		v.errs = append(v.errs, fmt.Errorf("unknown ranking mode %q", s.Mode))
	}
}

func (v *scoringValidator) VisitMatrix(s MatrixScoring) {
	v.nonNegative("matrix points", s.MaxPoints, s.PointsPerRow)
	switch s.Mode {
	case MatrixAllOrNothing, MatrixPartial:
	default:
		v.errs = append(v.errs, fmt.Errorf("unknown matrix mode %q", s.Mode))
	}
}
