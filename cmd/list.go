package cmd

import (
	"github.com/spf13/cobra"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list [path]",
	Short: "List the entries of one folder",
	Long: `List every non-hidden entry of a folder, one level deep, directories
first. Unlike tree, no file type filtering is applied.

Examples:
  fsview list ~/notes
  fsview list --format text .`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if err := checkFormat(format); err != nil {
			return err
		}

		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		nodes, err := rt.facade.List(pathArg(args))
		if err != nil {
			return err
		}
		if format == formatText {
			for _, n := range nodes {
				writeTree(cmd.OutOrStdout(), n, 0)
			}
			return nil
		}
		return writeJSON(cmd.OutOrStdout(), nodes)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().String("format", formatJSON, "Output format (json|text)")
}
