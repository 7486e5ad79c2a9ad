package domain

// NodeKind distinguishes grade categories from gradable items.
type NodeKind string

const (
	NodeCategory NodeKind = "category"
	NodeItem     NodeKind = "item"
)

// GradeNode is one category or item of a course grade tree. Weight is the author's
// explicit percentage among siblings (0-100); nil means "distribute automatically".
type GradeNode struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Kind        NodeKind    `json:"kind,omitempty" yaml:"kind,omitempty"`
	Weight      *float64    `json:"weight,omitempty" yaml:"weight,omitempty"`
	ExtraCredit bool        `json:"extraCredit,omitempty" yaml:"extraCredit,omitempty"`
	Children    []GradeNode `json:"children,omitempty" yaml:"children,omitempty"`
}

// IsCategory reports whether the node groups other nodes. Nodes without an
// explicit kind are categories only when they have children.
func (n GradeNode) IsCategory() bool {
	switch n.Kind {
	case NodeCategory:
		return true
	case NodeItem:
		return false
	}
	return len(n.Children) > 0
}
