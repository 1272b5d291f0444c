package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/TFMV/fsview/internal/watch"
	"github.com/spf13/cobra"
)

var (
	// Watch command options
	watchKinds   []string
	watchFormat  string
	watchTimeout time.Duration
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch [path]...",
	Short: "Watch folders for filesystem changes",
	Long: `Watch one or more folders, non-recursively, and print one line per
change event until interrupted.

Examples:
  fsview watch ~/notes
  fsview watch --kinds create,remove ~/notes ~/drafts
  fsview watch --format text --timeout 10m .`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(watchFormat); err != nil {
			return err
		}
		kinds, err := parseKinds(watchKinds)
		if err != nil {
			return err
		}
		if len(args) == 0 {
			args = []string{"."}
		}

		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if watchTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, watchTimeout)
			defer cancel()
		}

		events, unsubscribe := rt.facade.Events().Subscribe()
		defer unsubscribe()

		for _, path := range args {
			if err := rt.facade.WatchStart(path); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s for changes...\n", strings.Join(args, ", "))
		fmt.Fprintln(cmd.ErrOrStderr(), "Press Ctrl+C to exit.")

		for {
			select {
			case <-ctx.Done():
				return nil
			case msg, ok := <-events:
				if !ok {
					return nil
				}
				if len(kinds) > 0 && !kinds[msg.Event.Kind] {
					continue
				}
				if watchFormat == formatText {
					fmt.Fprintf(out, "%s %-7s %s\n", time.Now().Format(time.RFC3339), msg.Event.Kind, msg.Event.Path)
					continue
				}
				if err := writeEventJSON(out, msg.Event); err != nil {
					return err
				}
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringSliceVar(&watchKinds, "kinds", []string{}, "Event kinds to print (create, modify, remove, access, other, unknown)")
	watchCmd.Flags().StringVar(&watchFormat, "format", formatJSON, "Output format (json|text)")
	watchCmd.Flags().DurationVar(&watchTimeout, "timeout", 0, "Duration to watch before exiting (e.g., 1h, 30m)")
}

// parseKinds converts kind names to a lookup set. An empty list selects all.
func parseKinds(names []string) (map[watch.Kind]bool, error) {
	kinds := make(map[watch.Kind]bool, len(names))
	for _, name := range names {
		k := watch.Kind(strings.ToLower(strings.TrimSpace(name)))
		switch k {
		case watch.KindCreate, watch.KindModify, watch.KindRemove,
			watch.KindAccess, watch.KindOther, watch.KindUnknown:
			kinds[k] = true
		default:
			return nil, fmt.Errorf("unknown event kind: %s", name)
		}
	}
	return kinds, nil
}
