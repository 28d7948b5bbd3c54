package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jbtool/jbt/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, argv []string) {
		fmt.Printf("jbt %s (%s) built %s\n", version.Version, version.Commit, version.BuildTime)
	},
	Args: cobra.NoArgs,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
