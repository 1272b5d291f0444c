package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// treeCmd represents the tree command
var treeCmd = &cobra.Command{
	Use:   "tree [path]",
	Short: "Print the document tree of a folder",
	Long: `Print the projection of a folder: hidden entries are skipped, files are
limited to document and text types, and directories are expanded down to
the given depth.

Examples:
  fsview tree ~/notes
  fsview tree --depth 1 --format text ~/notes
  fsview tree --exclude node_modules --exclude "*.log" .`,
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

		var maxDepth *uint
		if cmd.Flags().Changed("depth") {
			d, _ := cmd.Flags().GetUint("depth")
			maxDepth = &d
		}

		root, err := rt.facade.Project(pathArg(args), maxDepth)
		if err != nil {
			return err
		}
		if format == formatText {
			writeTree(cmd.OutOrStdout(), root, 0)
			return nil
		}
		return writeJSON(cmd.OutOrStdout(), root)
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)

	treeCmd.Flags().UintP("depth", "d", 3, "Maximum depth to expand (default from tree.default_depth)")
	treeCmd.Flags().StringSlice("exclude", nil, "Entry name patterns to leave out (doublestar syntax)")
	treeCmd.Flags().String("format", formatJSON, "Output format (json|text)")

	viper.BindPFlag("tree.exclude", treeCmd.Flags().Lookup("exclude"))
}

// pathArg returns the single path argument, or the current directory.
func pathArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}
