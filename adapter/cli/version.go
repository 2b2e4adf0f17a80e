package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is injected at build time.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the vita version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("vita %s\n", Version)
	},
}
