package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"kbbot/internal/logger"
)

// Stats summarizes a directory conversion run.
type Stats struct {
	Total     int
	Converted int
	Empty     int
	Failed    int
}

// ConvertDir converts every *.pdf in inputDir to <stem>.md in outputDir,
// processing up to workers files concurrently. Per-file failures are logged
// and counted; the returned error covers only setup problems (unreadable
// input dir, uncreatable output dir).
func ConvertDir(ctx context.Context, inputDir, outputDir string, workers int) (Stats, error) {
	var stats Stats

	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return stats, fmt.Errorf("read input dir: %w", err)
	}
	var pdfs []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			pdfs = append(pdfs, e.Name())
		}
	}
	stats.Total = len(pdfs)
	if len(pdfs) == 0 {
		logger.Warn("CONVERT", fmt.Sprintf("No PDF files found in %s", inputDir))
		return stats, nil
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return stats, fmt.Errorf("create output dir: %w", err)
	}

	if workers <= 0 {
		workers = 4
	}
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, name := range pdfs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			src := filepath.Join(inputDir, name)
			stem := strings.TrimSuffix(name, filepath.Ext(name))
			dst := filepath.Join(outputDir, stem+".md")

			md, err := ConvertFile(src)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				stats.Failed++
				logger.Error("CONVERT", fmt.Sprintf("%s: %v", name, err))
			case md == "":
				stats.Empty++
				logger.Warn("CONVERT", fmt.Sprintf("%s: no extractable text", name))
			default:
				if err := os.WriteFile(dst, []byte(md), 0o644); err != nil {
					stats.Failed++
					logger.Error("CONVERT", fmt.Sprintf("%s: %v", name, err))
					return nil
				}
				stats.Converted++
				logger.Success("CONVERT", fmt.Sprintf("%s -> %s", name, filepath.Base(dst)))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}
	return stats, nil
}
