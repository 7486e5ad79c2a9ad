package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-grading-service/internal/domain"
)

// GradebookLoader builds a course grade tree from the grade_nodes adjacency list.
type GradebookLoader struct {
	pool *pgxpool.Pool
}

func NewGradebookLoader(pool *pgxpool.Pool) *GradebookLoader {
	return &GradebookLoader{pool: pool}
}

// GradeRow is one stored grade node.
type GradeRow struct {
	ID          string
	ParentID    *string
	Name        string
	Kind        string
	Weight      *float64
	ExtraCredit bool
}

func (l *GradebookLoader) GetGradeTree(ctx context.Context, courseID string) (domain.GradeNode, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT id, parent_id, name, kind, weight, extra_credit
		FROM grade_nodes
		WHERE course_id=$1
		ORDER BY position, id`, courseID)
	if err != nil {
		return domain.GradeNode{}, fmt.Errorf("load grade nodes: %w", err)
	}
	records, err := scanGradeRows(rows)
	if err != nil {
		return domain.GradeNode{}, err
	}
	if len(records) == 0 {
		return domain.GradeNode{}, domain.ErrCourseNotFound
	}
	return BuildGradeTree(courseID, records), nil
}

func scanGradeRows(rows pgx.Rows) ([]GradeRow, error) {
	defer rows.Close()
	var out []GradeRow
	for rows.Next() {
		var r GradeRow
		if err := rows.Scan(&r.ID, &r.ParentID, &r.Name, &r.Kind, &r.Weight, &r.ExtraCredit); err != nil {
			return nil, fmt.Errorf("scan grade node: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read grade nodes: %w", err)
	}
	return out, nil
}

// BuildGradeTree nests rows under a course root in row order. Rows whose parent is
// missing become top-level nodes; rows caught in a parent cycle are dropped.
func BuildGradeTree(courseID string, rows []GradeRow) domain.GradeNode {
	known := make(map[string]bool, len(rows))
	for _, r := range rows {
		known[r.ID] = true
	}
	children := make(map[string][]int, len(rows))
	for i, r := range rows {
		parent := courseID
		if r.ParentID != nil && known[*r.ParentID] {
			parent = *r.ParentID
		}
		children[parent] = append(children[parent], i)
	}

	// Walk from the root so each row is visited at most once, then build bottom-up.
	order := []string{courseID}
	index := map[string]int{courseID: -1}
	for i := 0; i < len(order); i++ {
		for _, c := range children[order[i]] {
			id := rows[c].ID
			if _, seen := index[id]; seen {
				continue
			}
			index[id] = c
			order = append(order, id)
		}
	}

	built := make(map[string]domain.GradeNode, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		node := domain.GradeNode{ID: courseID, Name: courseID, Kind: domain.NodeCategory}
		if c := index[id]; c >= 0 {
			r := rows[c]
			node = domain.GradeNode{ID: r.ID, Name: r.Name, Kind: domain.NodeKind(r.Kind), Weight: r.Weight, ExtraCredit: r.ExtraCredit}
		}
		for _, c := range children[id] {
			if child, ok := built[rows[c].ID]; ok && index[rows[c].ID] == c {
				node.Children = append(node.Children, child)
			}
		}
		built[id] = node
	}
	return built[courseID]
}
