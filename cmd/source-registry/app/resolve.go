package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <url>",
	Short: "Resolve a URL to its handler",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		defer func() {
			_ = log.Sync()
		}()

		sourceFile, _ := cmd.Flags().GetString("source-file")

		m, err := newManager(log, nil, nil)
		if err != nil {
			return err
		}
		if _, err := m.Load(cmd.Context(), nil); err != nil {
			return err
		}

		inst, err := m.Prepare(cmd.Context(), args[0], sourceFile)
		if err != nil {
			return err
		}

		d := inst.Descriptor()
		fmt.Printf("handler:  %s\n", d.Name)
		fmt.Printf("file:     %s\n", d.FilePath)
		fmt.Printf("home:     %s\n", inst.HomeURL)
		if d.Language != "" {
			fmt.Printf("language: %s\n", d.Language)
		}
		return nil
	},
}

func init() {
	resolveCmd.Flags().String("source-file", "", "Load an ad-hoc handler script before resolving")
}
