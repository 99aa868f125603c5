package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/journallm/journallm/internal/api/validate"
	"github.com/journallm/journallm/internal/contextwindow"
	"github.com/journallm/journallm/internal/model"
)

func init() {
	var startFlag, endFlag string
	var days int
	var asJSON bool
	contextCmd := &cobra.Command{
		Use:   "context",
		Short: "Print the context window for a date range or the last N days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			useRange := startFlag != "" || endFlag != ""
			if useRange && cmd.Flags().Changed("days") {
				return fmt.Errorf("use either --days or --start and --end")
			}
			a, err := newApp(cmd.Context(), needs{store: true})
			if err != nil {
				return err
			}
			defer a.Close()

			b := contextwindow.New(a.store.Entries(), nil)
			var w *model.ContextWindow
			if useRange {
				start, end, verr := validate.DateRange("--start", startFlag, "--end", endFlag)
				if verr != nil {
					return verr
				}
				w, err = b.Window(cmd.Context(), start, end)
			} else {
				w, err = b.Recent(cmd.Context(), days)
			}
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), w)
			}
			fmt.Fprintln(cmd.OutOrStdout(), w.Text)
			return nil
		},
	}
	contextCmd.Flags().StringVar(&startFlag, "start", "", "start date (YYYY-MM-DD)")
	contextCmd.Flags().StringVar(&endFlag, "end", "", "end date (YYYY-MM-DD)")
	contextCmd.Flags().IntVar(&days, "days", 7, "trailing number of days ending today")
	contextCmd.Flags().BoolVar(&asJSON, "json", false, "print entries, metrics and text as JSON")
	rootCmd.AddCommand(contextCmd)
}
