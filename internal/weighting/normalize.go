// Package weighting derives adjusted and overall weights for a course grade tree.
//
// Siblings normalize against each other so that regular (non extra credit) weights
// sum to 100%. Unweighted siblings split whatever explicit weights leave over, and a
// group made only of explicit weights is rescaled proportionally. Extra credit sits
// outside that sum. The overall weight of a node is its adjusted fraction multiplied
// by every ancestor's, so a leaf's overall weight is its share of the final grade.
package weighting

import (
	"math"
	"strconv"
	"strings"

	"quiz-grading-service/internal/domain"
)

const epsilon = 1e-9

// Node is the normalized view of a domain.GradeNode.
type Node struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Kind              domain.NodeKind `json:"kind"`
	Weight            *float64        `json:"weight,omitempty"`
	ExtraCredit       bool            `json:"extraCredit,omitempty"`
	AdjustedWeight    *float64        `json:"adjustedWeight"`
	OverallWeight     *float64        `json:"overallWeight"`
	AutoWeightedZero  bool            `json:"autoWeightedZero,omitempty"`
	WeightExplanation string          `json:"weightExplanation"`
	Children          []Node          `json:"children,omitempty"`

	chain []string
}

// Leaf is a gradable item with its share of the course grade.
type Leaf struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	ExtraCredit   bool     `json:"extraCredit,omitempty"`
	OverallWeight *float64 `json:"overallWeight"`
}

// Normalize computes weights for every node under root. root is the course and
// always carries 100%. The input tree is not modified.
func Normalize(root domain.GradeNode) Node {
	out := copyTree(root)
	order := levelOrder(&out)

	// Children precede parents in reverse level order. The root always carries
	// 100% and is never flagged.
	for i := len(order) - 1; i >= 1; i-- {
		markAutoZero(order[i])
	}

	out.AdjustedWeight = float(100)
	out.OverallWeight = float(100)
	out.WeightExplanation = out.Name + " = 100.00% of course"
	for _, n := range order {
		distribute(n)
	}
	return out
}

// Leaves lists the item nodes in tree order.
func (n *Node) Leaves() []Leaf {
	var leaves []Leaf
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.Kind == domain.NodeItem {
			leaves = append(leaves, Leaf{ID: cur.ID, Name: cur.Name, ExtraCredit: cur.ExtraCredit, OverallWeight: cur.OverallWeight})
			continue
		}
		for i := len(cur.Children) - 1; i >= 0; i-- {
			stack = append(stack, &cur.Children[i])
		}
	}
	return leaves
}

// Find returns the node with the given ID, or nil.
func (n *Node) Find(id string) *Node {
	for _, cur := range levelOrder(n) {
		if cur.ID == id {
			return cur
		}
	}
	return nil
}

func copyTree(root domain.GradeNode) Node {
	type frame struct {
		src *domain.GradeNode
		dst *Node
	}
	out := newNode(root)
	stack := []frame{{src: &root, dst: &out}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		f.dst.Children = make([]Node, len(f.src.Children))
		for i := range f.src.Children {
			f.dst.Children[i] = newNode(f.src.Children[i])
			stack = append(stack, frame{src: &f.src.Children[i], dst: &f.dst.Children[i]})
		}
	}
	return out
}

func newNode(src domain.GradeNode) Node {
	n := Node{ID: src.ID, Name: src.Name, ExtraCredit: src.ExtraCredit, Kind: domain.NodeItem}
	if src.IsCategory() {
		n.Kind = domain.NodeCategory
	}
	if src.Weight != nil {
		n.Weight = float(*src.Weight)
	}
	return n
}

func levelOrder(root *Node) []*Node {
	order := []*Node{root}
	for i := 0; i < len(order); i++ {
		for j := range order[i].Children {
			order = append(order, &order[i].Children[j])
		}
	}
	return order
}

// markAutoZero flags categories that can carry no regular weight: no regular
// children, or regular children whose explicit weights are all zero.
func markAutoZero(n *Node) {
	if n.Kind != domain.NodeCategory {
		return
	}
	regular := 0
	sum := 0.0
	unweighted := 0
	for i := range n.Children {
		c := &n.Children[i]
		if c.ExtraCredit || c.AutoWeightedZero {
			continue
		}
		regular++
		if c.Weight == nil {
			unweighted++
			continue
		}
		sum += *c.Weight
	}
	n.AutoWeightedZero = regular == 0 || (unweighted == 0 && math.Abs(sum) < epsilon)
}

// distribute assigns adjusted and overall weights to the children of parent.
func distribute(parent *Node) {
	var regular []*Node
	for i := range parent.Children {
		c := &parent.Children[i]
		switch {
		case c.ExtraCredit:
			if c.Weight != nil {
				c.AdjustedWeight = float(*c.Weight)
			}
		case c.AutoWeightedZero:
			c.AdjustedWeight = float(0)
		default:
			regular = append(regular, c)
		}
	}

	sum := 0.0
	unweighted := 0
	for _, c := range regular {
		if c.Weight == nil {
			unweighted++
			continue
		}
		sum += *c.Weight
	}

	for _, c := range regular {
		switch {
		case unweighted > 0 && c.Weight == nil:
			c.AdjustedWeight = float(math.Max(0, (100-sum)/float64(unweighted)))
		case unweighted > 0, math.Abs(sum-100) < epsilon:
			c.AdjustedWeight = float(*c.Weight)
		case math.Abs(sum) < epsilon:
			c.AdjustedWeight = float(0)
		default:
			c.AdjustedWeight = float(*c.Weight * 100 / sum)
		}
	}

	for i := range parent.Children {
		c := &parent.Children[i]
		if c.AdjustedWeight != nil && parent.OverallWeight != nil {
			c.OverallWeight = float(*c.AdjustedWeight / 100 * *parent.OverallWeight)
		}
		explain(parent, c)
	}
}

func explain(parent, c *Node) {
	if c.OverallWeight == nil {
		c.WeightExplanation = c.Name + ": not weighted"
		return
	}
	label := c.Name + " " + percent(*c.AdjustedWeight)
	switch {
	case c.AutoWeightedZero:
		label = c.Name + " auto (0%)"
	case c.ExtraCredit:
		label += " (extra credit)"
	}
	c.chain = append(append([]string(nil), parent.chain...), label)
	c.WeightExplanation = strings.Join(c.chain, " × ") + " = " + percent(*c.OverallWeight) + " of course"
}

func percent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}

func float(v float64) *float64 {
	return &v
}
