package app

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Refresh the handler catalog from the remote index",
	Long: `Fetches the latest remote index, downloads new and changed handler
files, and rebuilds the dispatch table. Without --force the remote fetch
is skipped when the local catalog is still fresh.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		log := newLogger()
		defer func() {
			_ = log.Sync()
		}()

		include, _ := cmd.Flags().GetStringSlice("include")
		exclude, _ := cmd.Flags().GetStringSlice("exclude")
		force, _ := cmd.Flags().GetBool("force")

		m, err := newManager(log, include, exclude)
		if err != nil {
			return err
		}

		progress := func(done, total int, name string) {
			fmt.Printf("[%d/%d] %s\n", done, total, name)
		}

		load := m.Load
		if force {
			load = m.Sync
		}
		syncedAt, err := load(cmd.Context(), progress)
		if err != nil {
			return err
		}

		fmt.Printf("catalog synced at %s, %d handlers registered\n",
			time.Unix(syncedAt, 0).Format(time.RFC3339), len(m.Handlers()))
		return nil
	},
}

func init() {
	syncCmd.Flags().Bool("force", false, "Refresh even when the catalog is fresh")
	syncCmd.Flags().StringSlice("include", nil, "Glob patterns of handler ids to include")
	syncCmd.Flags().StringSlice("exclude", nil, "Glob patterns of handler ids to exclude")
}
