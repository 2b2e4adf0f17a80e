package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"
)

var logger = slog.Default()

// SetLogger installs the application logger for all commands.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

var rootCmd = &cobra.Command{
	Use:   "vita",
	Short: "Adaptive health-activity scheduler",
	Long: `vita turns a set of recurring health activities and a pool of
constrained resources (specialists, equipment, travel periods) into a
concrete multi-day calendar of committed time slots, with fallback chains
for activities that cannot be placed.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the command tree.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
