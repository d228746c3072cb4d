package sanitize

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"kbbot/internal/logger"
)

// Options controls the directory driver.
type Options struct {
	DryRun   bool // report would-be changes without writing
	NoBackup bool // skip .bak copies before overwriting
}

// Stats summarizes a directory cleaning run.
type Stats struct {
	Files         int
	Changed       int
	Unchanged     int
	Failed        int
	OriginalBytes int
	CleanedBytes  int
}

// CleanDir cleans every *.md file in dir in place. Files that do not shrink
// are left untouched. Per-file errors are logged and counted, never
// propagated: a partially failing run still processes the remaining files.
func CleanDir(dir string, opts Options) Stats {
	var stats Stats

	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Error("CLEAN", fmt.Sprintf("Cannot read directory %s: %v", dir, err))
		return stats
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".md") {
			continue
		}
		stats.Files++
		path := filepath.Join(dir, e.Name())

		original, cleaned, err := cleanFile(path, opts)
		if err != nil {
			logger.Error("CLEAN", fmt.Sprintf("%s: %v", e.Name(), err))
			stats.Failed++
			continue
		}
		stats.OriginalBytes += original
		stats.CleanedBytes += cleaned

		if cleaned < original {
			stats.Changed++
			reduction := float64(original-cleaned) / float64(original) * 100
			verb := "cleaned"
			if opts.DryRun {
				verb = "would clean"
			}
			logger.Success("CLEAN", fmt.Sprintf("%s: %s %d -> %d bytes (-%.1f%%)",
				e.Name(), verb, original, cleaned, reduction))
		} else {
			stats.Unchanged++
			logger.Info("CLEAN", fmt.Sprintf("%s: unchanged", e.Name()))
		}
	}
	return stats
}

// cleanFile reads, cleans and (unless dry-run) rewrites one file. Returned
// sizes are zero when the file could not be read.
func cleanFile(path string, opts Options) (original, cleaned int, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, fmt.Errorf("read: %w", err)
	}
	content := CleanContent(string(raw))

	original = len(raw)
	cleaned = len(content)
	if cleaned >= original || opts.DryRun {
		return original, cleaned, nil
	}

	if !opts.NoBackup {
		if err := writeBackup(path, raw); err != nil {
			// Backup failure is non-fatal; the overwrite still happens.
			logger.Warn("CLEAN", fmt.Sprintf("%s: backup failed: %v", filepath.Base(path), err))
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return 0, 0, fmt.Errorf("write: %w", err)
	}
	return original, cleaned, nil
}

// writeBackup copies the pre-cleaning bytes to <path>.bak, appending a
// numeric suffix when a backup already exists.
func writeBackup(path string, raw []byte) error {
	target := path + ".bak"
	for i := 1; ; i++ {
		if _, err := os.Stat(target); os.IsNotExist(err) {
			break
		}
		target = fmt.Sprintf("%s.bak.%d", path, i)
	}
	return os.WriteFile(target, raw, 0o644)
}
