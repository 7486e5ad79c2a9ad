package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"quiz-grading-service/internal/schema"
	"quiz-grading-service/internal/scoring"
)

// NewResolveCmd prints the canonical form of a stored quiz config.
func NewResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <file>",
		Short: "Upgrade a quiz config file to the current version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			cfg, err := schema.ResolveToLatest(data)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			// Keep stdout pipeable as JSON.
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d questions, %g total points\n", cfg.ID, len(cfg.Questions()), scoring.TotalPoints(cfg))
			return nil
		},
	}
}
