package weighting_test

import (
	"math"
	"strings"
	"testing"

	"quiz-grading-service/internal/domain"
	"quiz-grading-service/internal/weighting"
)

func TestEqualSplitAcrossUnweightedSiblings(t *testing.T) {
	tree := course(item("a", nil), item("b", nil), item("c", nil))
	out := weighting.Normalize(tree)

	sum := 0.0
	for _, id := range []string{"a", "b", "c"} {
		n := mustFind(t, &out, id)
		assertWeight(t, id, n.AdjustedWeight, 100.0/3)
		sum += *n.AdjustedWeight
	}
	if math.Abs(sum-100) > 1e-9 {
		t.Fatalf("expected sum 100, got %v", sum)
	}
}

func TestUnweightedTakesRemainder(t *testing.T) {
	out := weighting.Normalize(course(item("exam", weight(70)), item("labs", nil)))

	assertWeight(t, "exam", mustFind(t, &out, "exam").AdjustedWeight, 70)
	assertWeight(t, "labs", mustFind(t, &out, "labs").AdjustedWeight, 30)
}

func TestExtraCreditExcludedFromDistribution(t *testing.T) {
	bonus := item("bonus", nil)
	bonus.ExtraCredit = true
	out := weighting.Normalize(course(item("final", nil), bonus))

	assertWeight(t, "final", mustFind(t, &out, "final").AdjustedWeight, 100)
	n := mustFind(t, &out, "bonus")
	if n.AdjustedWeight != nil || n.OverallWeight != nil {
		t.Fatalf("expected unweighted extra credit, got adjusted=%v overall=%v", n.AdjustedWeight, n.OverallWeight)
	}
}

func TestWeightedExtraCreditKeepsItsWeight(t *testing.T) {
	bonus := item("bonus", weight(5))
	bonus.ExtraCredit = true
	out := weighting.Normalize(course(item("final", nil), bonus))

	assertWeight(t, "final", mustFind(t, &out, "final").AdjustedWeight, 100)
	assertWeight(t, "bonus", mustFind(t, &out, "bonus").OverallWeight, 5)
	if !strings.Contains(mustFind(t, &out, "bonus").WeightExplanation, "(extra credit)") {
		t.Fatalf("expected extra credit in explanation")
	}
}

func TestAutoWeightedZeroCategory(t *testing.T) {
	bonus := item("bonus", nil)
	bonus.ExtraCredit = true
	out := weighting.Normalize(course(category("optional", nil, bonus), item("exam", nil)))

	opt := mustFind(t, &out, "optional")
	if !opt.AutoWeightedZero {
		t.Fatalf("expected optional to be auto weighted zero")
	}
	assertWeight(t, "optional", opt.AdjustedWeight, 0)
	assertWeight(t, "exam", mustFind(t, &out, "exam").AdjustedWeight, 100)
}

func TestExtraCreditOnlyCourseIsNotFlagged(t *testing.T) {
	bonus := item("bonus", nil)
	bonus.ExtraCredit = true
	out := weighting.Normalize(course(bonus))

	if out.AutoWeightedZero {
		t.Fatalf("expected course root not to be auto weighted zero")
	}
	assertWeight(t, "course", out.AdjustedWeight, 100)
}

func TestNestedAutoWeightedZeroPropagates(t *testing.T) {
	out := weighting.Normalize(course(category("outer", nil, category("inner", nil)), item("exam", nil)))

	for _, id := range []string{"inner", "outer"} {
		if !mustFind(t, &out, id).AutoWeightedZero {
			t.Fatalf("expected %s to be auto weighted zero", id)
		}
	}
	assertWeight(t, "exam", mustFind(t, &out, "exam").AdjustedWeight, 100)
}

func TestZeroExplicitWeightsFlagParent(t *testing.T) {
	out := weighting.Normalize(course(category("hw", nil, item("h1", weight(0)), item("h2", weight(0))), item("exam", nil)))

	hw := mustFind(t, &out, "hw")
	if !hw.AutoWeightedZero {
		t.Fatalf("expected hw to be auto weighted zero")
	}
	assertWeight(t, "h1", mustFind(t, &out, "h1").AdjustedWeight, 0)
	assertWeight(t, "exam", mustFind(t, &out, "exam").AdjustedWeight, 100)
}

func TestExplicitWeightsRescale(t *testing.T) {
	out := weighting.Normalize(course(item("a", weight(20)), item("b", weight(30))))

	assertWeight(t, "a", mustFind(t, &out, "a").AdjustedWeight, 40)
	assertWeight(t, "b", mustFind(t, &out, "b").AdjustedWeight, 60)
}

func TestOverweightLeavesUnweightedAtZero(t *testing.T) {
	out := weighting.Normalize(course(item("a", weight(80)), item("b", weight(40)), item("c", nil)))

	assertWeight(t, "a", mustFind(t, &out, "a").AdjustedWeight, 80)
	assertWeight(t, "b", mustFind(t, &out, "b").AdjustedWeight, 40)
	assertWeight(t, "c", mustFind(t, &out, "c").AdjustedWeight, 0)
}

func TestOverallWeightMultipliesAncestors(t *testing.T) {
	tree := course(
		category("hw", weight(40), item("q1", weight(50)), item("q2", nil)),
		category("exams", weight(60), item("mid", nil)),
	)
	tree.Children[0].Name = "Homework"
	tree.Children[0].Children[0].Name = "Quiz 1"
	out := weighting.Normalize(tree)

	q1 := mustFind(t, &out, "q1")
	assertWeight(t, "q1", q1.OverallWeight, 20)
	assertWeight(t, "mid", mustFind(t, &out, "mid").OverallWeight, 60)
	want := "Homework 40.00% × Quiz 1 50.00% = 20.00% of course"
	if q1.WeightExplanation != want {
		t.Fatalf("expected explanation %q, got %q", want, q1.WeightExplanation)
	}
	assertWeight(t, "root", out.OverallWeight, 100)
}

func TestLeavesInTreeOrder(t *testing.T) {
	out := weighting.Normalize(course(
		category("hw", nil, item("h1", nil), item("h2", nil)),
		item("exam", nil),
	))

	leaves := out.Leaves()
	var ids []string
	total := 0.0
	for _, l := range leaves {
		ids = append(ids, l.ID)
		total += *l.OverallWeight
	}
	if strings.Join(ids, ",") != "h1,h2,exam" {
		t.Fatalf("unexpected leaf order %v", ids)
	}
	if math.Abs(total-100) > 1e-9 {
		t.Fatalf("expected leaf weights to sum to 100, got %v", total)
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	tree := course(item("a", weight(20)), item("b", weight(30)))
	_ = weighting.Normalize(tree)
	if *tree.Children[0].Weight != 20 || *tree.Children[1].Weight != 30 {
		t.Fatalf("input weights changed: %v %v", *tree.Children[0].Weight, *tree.Children[1].Weight)
	}
}

func TestDeepTree(t *testing.T) {
	leaf := item("leaf", nil)
	node := leaf
	for i := 0; i < 10000; i++ {
		node = category("c", nil, node)
	}
	out := weighting.Normalize(course(node))
	leaves := out.Leaves()
	if len(leaves) != 1 {
		t.Fatalf("expected 1 leaf, got %d", len(leaves))
	}
	assertWeight(t, "leaf", leaves[0].OverallWeight, 100)
}

func course(children ...domain.GradeNode) domain.GradeNode {
	return domain.GradeNode{ID: "course", Name: "Course", Kind: domain.NodeCategory, Children: children}
}

func category(id string, w *float64, children ...domain.GradeNode) domain.GradeNode {
	return domain.GradeNode{ID: id, Name: id, Kind: domain.NodeCategory, Weight: w, Children: children}
}

func item(id string, w *float64) domain.GradeNode {
	return domain.GradeNode{ID: id, Name: id, Kind: domain.NodeItem, Weight: w}
}

func weight(v float64) *float64 {
	return &v
}

func mustFind(t *testing.T, n *weighting.Node, id string) *weighting.Node {
	t.Helper()
	found := n.Find(id)
	if found == nil {
		t.Fatalf("node %s not found", id)
	}
	return found
}

func assertWeight(t *testing.T, id string, got *float64, want float64) {
	t.Helper()
	if got == nil {
		t.Fatalf("%s: expected weight %v, got nil", id, want)
	}
	if math.Abs(*got-want) > 1e-9 {
		t.Fatalf("%s: expected weight %v, got %v", id, want, *got)
	}
}
