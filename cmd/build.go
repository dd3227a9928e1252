package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/behnamazizi/localnet-bookmarks/internal/build"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Builds the bookmark page",
	Long: `The build command reads the site list, packs icons found in the icons
directory into a sprite, renders the page template and writes a single
self-contained HTML file to the configured output path.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := build.NewBuilder(appConfig).Build()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Built: %s\n", res.Output)
		fmt.Fprintf(out, "Build version: %s\n", res.Version)
		fmt.Fprintf(out, "Icons packed: %d\n", res.Icons)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
