package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/behnamazizi/localnet-bookmarks/internal/build"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validates the site list and reports sites without icons",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rep, err := build.NewBuilder(appConfig).Check()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%d sites in %d categories, %d icons\n", rep.Sites, rep.Categories, rep.Icons)
		if len(rep.MissingIcons) > 0 {
			fmt.Fprintf(out, "No icon for %d hosts (expected <host>.png in %s):\n", len(rep.MissingIcons), appConfig.IconsDir)
			for _, h := range rep.MissingIcons {
				fmt.Fprintf(out, "  %s\n", h)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
