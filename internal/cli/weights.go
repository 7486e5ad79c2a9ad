package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"quiz-grading-service/internal/domain"
	"quiz-grading-service/internal/weighting"
)

// NewWeightsCmd prints adjusted and overall weights for a grade tree file.
// YAML and JSON trees are both accepted.
func NewWeightsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "weights <file>",
		Short: "Normalize a course grade tree and print each node's weight",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var tree domain.GradeNode
			if err := yaml.Unmarshal(data, &tree); err != nil {
				return fmt.Errorf("parse grade tree: %w", err)
			}
			return printWeights(cmd, weighting.Normalize(tree))
		},
	}
}

func printWeights(cmd *cobra.Command, root weighting.Node) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NODE\tADJUSTED\tOVERALL\tEXPLANATION")

	type entry struct {
		node  *weighting.Node
		depth int
	}
	stack := []entry{{node: &root}}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := e.node
		fmt.Fprintf(w, "%s%s\t%s\t%s\t%s\n",
			strings.Repeat("  ", e.depth), n.Name,
			formatWeight(n.AdjustedWeight), formatWeight(n.OverallWeight), n.WeightExplanation)
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, entry{node: &n.Children[i], depth: e.depth + 1})
		}
	}
	return w.Flush()
}

func formatWeight(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64) + "%"
}
