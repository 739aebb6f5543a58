package app

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered handlers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		log := newLogger()
		defer func() {
			_ = log.Sync()
		}()

		m, err := newManager(log, nil, nil)
		if err != nil {
			return err
		}
		if _, err := m.Load(cmd.Context(), nil); err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tLANGUAGE\tCAPABILITIES\tBASE URLS")
		for _, d := range m.Handlers() {
			caps := make([]string, 0, 3)
			if d.CanSearch {
				caps = append(caps, "search")
			}
			if d.CanLogin {
				caps = append(caps, "login")
			}
			if d.Disabled {
				caps = append(caps, "disabled")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				d.Name, d.Language, strings.Join(caps, ","),
				strings.Join(d.BaseURLs, " "))
		}
		return w.Flush()
	},
}
