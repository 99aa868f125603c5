package ingest

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Summary counts the results of a directory ingest.
type Summary struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
}

// IngestDirectory ingests every *.md file under dir, ordered by file name.
// Files without a date in the name are skipped; per-file failures are counted
// and logged but do not stop the run.
func (i *Ingester) IngestDirectory(ctx context.Context, dir string, opts Options) (Summary, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && strings.HasSuffix(d.Name(), ".md") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}
	sort.SliceStable(paths, func(a, b int) bool { return filepath.Base(paths[a]) < filepath.Base(paths[b]) })

	var sum Summary
	if len(paths) == 0 {
		i.log.Info().Str("dir", dir).Msg("no markdown files found")
		return sum, nil
	}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		date, ok := InferDate(path)
		if !ok {
			i.log.Info().Str("path", path).Msg("skipping, no date in filename")
			sum.Skipped++
			continue
		}
		outcome, err := i.IngestFile(ctx, path, date, opts)
		switch {
		case err != nil:
			i.log.Error().Err(err).Str("path", path).Msg("ingest failed")
			sum.Errors++
		case outcome == OutcomeSkipped:
			sum.Skipped++
		default:
			sum.Processed++
		}
	}
	i.log.Info().Int("processed", sum.Processed).Int("skipped", sum.Skipped).Int("errors", sum.Errors).Msg("batch ingest complete")
	return sum, nil
}
