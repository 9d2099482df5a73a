package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/ngmvpwd/pakaya-sub001/internal/service"
)

// BackupWorker writes a full snapshot to disk on a fixed interval so a
// recent export always exists even if nobody triggers one manually.
type BackupWorker struct {
	backups  *service.BackupService
	dir      string
	interval time.Duration
	keep     int
	log      zerolog.Logger
}

// NewBackupWorker creates a new BackupWorker. keep bounds how many
// snapshot files are retained; older ones are pruned after each run.
func NewBackupWorker(backups *service.BackupService, dir string, interval time.Duration, keep int, log zerolog.Logger) *BackupWorker {
	return &BackupWorker{
		backups:  backups,
		dir:      dir,
		interval: interval,
		keep:     keep,
		log:      log.With().Str("component", "backup_worker").Logger(),
	}
}

// Start runs the periodic export loop. Call in a goroutine.
func (w *BackupWorker) Start(ctx context.Context) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		w.log.Error().Err(err).Str("dir", w.dir).Msg("backup directory unavailable, worker disabled")
		return
	}

	w.log.Info().Dur("interval", w.interval).Str("dir", w.dir).Msg("BackupWorker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("BackupWorker stopped")
			return
		case <-ticker.C:
			if err := w.runOnce(ctx); err != nil {
				w.log.Error().Err(err).Msg("scheduled backup failed")
			}
		}
	}
}

func (w *BackupWorker) runOnce(ctx context.Context) error {
	snap, err := w.backups.Export(ctx, "scheduled export")
	if err != nil {
		return err
	}

	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	name := fmt.Sprintf("backup-%s.json", time.Now().UTC().Format("2006-01-02T15-04-05"))
	path := filepath.Join(w.dir, name)

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}

	w.log.Info().Str("file", name).Int("bytes", len(raw)).Msg("snapshot written")
	w.prune()
	return nil
}

// prune deletes the oldest snapshots beyond the retention count.
func (w *BackupWorker) prune() {
	matches, err := filepath.Glob(filepath.Join(w.dir, "backup-*.json"))
	if err != nil || len(matches) <= w.keep {
		return
	}

	// Timestamped names sort chronologically.
	for i := 0; i < len(matches)-w.keep; i++ {
		if err := os.Remove(matches[i]); err != nil {
			w.log.Warn().Err(err).Str("file", matches[i]).Msg("snapshot prune failed")
		}
	}
}
