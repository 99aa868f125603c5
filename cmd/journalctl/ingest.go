package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/journallm/journallm/internal/config"
	"github.com/journallm/journallm/internal/extract"
	"github.com/journallm/journallm/internal/ingest"
)

func init() {
	// init-db
	rootCmd.AddCommand(&cobra.Command{
		Use:   "init-db",
		Short: "Create the journal tables if they do not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), needs{store: true})
			if err != nil {
				return err
			}
			defer a.Close()
			where := a.cfg.SQLitePath
			if a.cfg.DBDriver != config.DriverSQLite {
				where = a.cfg.DBDriver
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Database initialized at %s\n", where)
			return nil
		},
	})

	// ingest
	var dateFlag string
	var skipUnchanged bool
	ingestCmd := &cobra.Command{
		Use:   "ingest PATH",
		Short: "Ingest one journal Markdown file",
		Long:  "Ingest one journal Markdown file. The entry date comes from --date, then a YYYY-MM-DD in the file name, then today.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); err != nil {
				return fmt.Errorf("file not found: %s", args[0])
			}
			date, err := ingest.ResolveDate(dateFlag, args[0], time.Now())
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), needs{store: true, backend: true})
			if err != nil {
				return err
			}
			defer a.Close()

			ing := ingest.New(a.store.Entries(), extract.New(a.backend, a.log), a.log)
			outcome, err := ing.IngestFile(cmd.Context(), args[0], date, ingest.Options{SkipIfUnchanged: skipUnchanged})
			if err != nil {
				return err
			}
			if outcome == ingest.OutcomeSkipped {
				fmt.Fprintf(cmd.OutOrStdout(), "Skipped %s (unchanged)\n", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Ingested journal for %s from %s\n", date.Format("2006-01-02"), args[0])
			return nil
		},
	}
	ingestCmd.Flags().StringVarP(&dateFlag, "date", "d", "", "entry date YYYY-MM-DD")
	ingestCmd.Flags().BoolVar(&skipUnchanged, "skip-unchanged", false, "skip the file when its content hash is already stored")
	rootCmd.AddCommand(ingestCmd)

	// ingest-dir
	var notesDir string
	var dirNoSkip bool
	ingestDirCmd := &cobra.Command{
		Use:   "ingest-dir",
		Short: "Batch ingest all Markdown notes under a directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fi, err := os.Stat(notesDir); err != nil || !fi.IsDir() {
				return fmt.Errorf("notes directory %s not found", notesDir)
			}
			a, err := newApp(cmd.Context(), needs{store: true, backend: true})
			if err != nil {
				return err
			}
			defer a.Close()

			ing := ingest.New(a.store.Entries(), extract.New(a.backend, a.log), a.log)
			sum, err := ing.IngestDirectory(cmd.Context(), notesDir, ingest.Options{SkipIfUnchanged: !dirNoSkip})
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), sum)
			return nil
		},
	}
	ingestDirCmd.Flags().StringVar(&notesDir, "notes-dir", "notes", "directory containing Markdown notes")
	ingestDirCmd.Flags().BoolVar(&dirNoSkip, "no-skip", false, "reingest even if files appear unchanged")
	rootCmd.AddCommand(ingestDirCmd)

	// extract
	rootCmd.AddCommand(&cobra.Command{
		Use:   "extract PATH",
		Short: "Print the extracted metadata for a journal file without storing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), needs{backend: true})
			if err != nil {
				return err
			}
			defer a.Close()

			ex, err := extract.New(a.backend, a.log).Extract(cmd.Context(), string(text))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Extracted JSON:")
			return writeJSON(cmd.OutOrStdout(), ex)
		},
	})
}

func printSummary(w io.Writer, sum ingest.Summary) {
	fmt.Fprintf(w, "Batch ingest complete. Processed: %d, skipped: %d, errors: %d.\n", sum.Processed, sum.Skipped, sum.Errors)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
