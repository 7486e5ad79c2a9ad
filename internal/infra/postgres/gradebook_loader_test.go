package postgres

import (
	"testing"

	"quiz-grading-service/internal/domain"
)

func TestBuildGradeTreeNestsRowsInOrder(t *testing.T) {
	forty := 40.0
	rows := []GradeRow{
		{ID: "hw", Name: "Homework", Kind: "category", Weight: &forty},
		{ID: "exam", Name: "Exam", Kind: "item"},
		{ID: "hw1", ParentID: strPtr("hw"), Name: "HW 1", Kind: "item"},
		{ID: "hw2", ParentID: strPtr("hw"), Name: "HW 2", Kind: "item", ExtraCredit: true},
	}

	tree := BuildGradeTree("physics", rows)
	if tree.ID != "physics" || tree.Kind != domain.NodeCategory {
		t.Fatalf("expected course root, got %+v", tree)
	}
	if len(tree.Children) != 2 || tree.Children[0].ID != "hw" || tree.Children[1].ID != "exam" {
		t.Fatalf("unexpected top level %+v", tree.Children)
	}
	hw := tree.Children[0]
	if hw.Weight == nil || *hw.Weight != 40 {
		t.Fatalf("expected homework weight 40, got %v", hw.Weight)
	}
	if len(hw.Children) != 2 || hw.Children[0].ID != "hw1" || !hw.Children[1].ExtraCredit {
		t.Fatalf("unexpected homework children %+v", hw.Children)
	}
}

func TestBuildGradeTreeHandlesBrokenParents(t *testing.T) {
	rows := []GradeRow{
		{ID: "orphan", ParentID: strPtr("gone"), Name: "Orphan", Kind: "item"},
		{ID: "a", ParentID: strPtr("b"), Name: "A", Kind: "category"},
		{ID: "b", ParentID: strPtr("a"), Name: "B", Kind: "category"},
	}

	tree := BuildGradeTree("c1", rows)
	if len(tree.Children) != 1 || tree.Children[0].ID != "orphan" {
		t.Fatalf("expected orphan at top level and cycle dropped, got %+v", tree.Children)
	}
}

func strPtr(s string) *string {
	return &s
}
