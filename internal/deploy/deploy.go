// Package deploy promotes the staging store to production.
//
// A deploy replaces production's assignment tables wholesale with
// staging's current content. When history is kept, a timestamped full
// copy of the pre-deploy production file is written first and a deploy
// record referencing it is stored in production.
//
// The replace runs inside one production transaction, but the snapshot
// and the replace together are not one atomic unit: a failure after the
// snapshot but during the replace is reported as a PartialError and
// needs an operator to reconcile production against the last snapshot.
// Staging is never mutated.
package deploy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/packstage/packstage/internal/config"
	"github.com/packstage/packstage/internal/store"
)

// timestampLayout renders YY_MM_DD_HH_MM_SS; microseconds are appended
// separately because Go's reference layout has no underscore-separated
// fractional seconds.
const timestampLayout = "06_01_02_15_04_05"

// PartialError reports a deploy that failed after it started mutating
// production. Fatal; requires manual inspection of production against
// the referenced snapshot (empty when history was disabled).
type PartialError struct {
	Snapshot string
	Err      error
}

func (e *PartialError) Error() string {
	if e.Snapshot != "" {
		return fmt.Sprintf("deploy failed mid-replace, reconcile production against snapshot %s: %v", e.Snapshot, e.Err)
	}
	return fmt.Sprintf("deploy failed mid-replace with no snapshot to reconcile against: %v", e.Err)
}

func (e *PartialError) Unwrap() error {
	return e.Err
}

// Options configures one deploy.
type Options struct {
	// Comment is stored on the deploy history record.
	Comment string
}

// Outcome reports what a successful deploy did.
type Outcome struct {
	// Snapshot is the path of the pre-deploy backup, empty when
	// history is disabled.
	Snapshot string

	// Deployed is the number of assignment rows now in production.
	Deployed int
}

// Manager performs staging-to-production deployment.
type Manager struct {
	cfg config.Config
	log zerolog.Logger
	now func() time.Time
}

// New returns a Manager for the given configuration.
func New(cfg config.Config, log zerolog.Logger) *Manager {
	return &Manager{cfg: cfg, log: log, now: time.Now}
}

// Timestamp renders t in the backup naming format
// YY_MM_DD_HH_MM_SS_ffff (microsecond precision).
func Timestamp(t time.Time) string {
	return fmt.Sprintf("%s_%06d", t.Format(timestampLayout), t.Nanosecond()/1000)
}

// Deploy copies the staging assignment set over production.
//
// Order of operations: snapshot production (when keep_history is set
// and production exists), then replace production's assignments inside
// one transaction and commit. Failures before the replace leave
// production in its pre-deploy state; failures during the replace or
// its commit surface as a PartialError.
func (m *Manager) Deploy(ctx context.Context, opts Options) (*Outcome, error) {
	stagingPath := m.cfg.StagingPath()
	productionPath := m.cfg.ProductionDatabase

	if stagingPath == productionPath {
		return nil, fmt.Errorf("staging and production resolve to the same file %s, refusing to deploy", productionPath)
	}
	if !store.Exists(stagingPath) {
		return nil, fmt.Errorf("staging database %s does not exist, run initialize first", stagingPath)
	}

	snapshot := ""
	if m.cfg.KeepHistory {
		path, err := m.snapshotProduction()
		if err != nil {
			return nil, fmt.Errorf("snapshot production: %w", err)
		}
		snapshot = path
	}

	staging, err := store.Open(stagingPath, store.ReadOnly())
	if err != nil {
		return nil, err
	}
	defer staging.Close()

	rows, err := staging.Assignments(ctx)
	if err != nil {
		return nil, err
	}

	production, err := store.Open(productionPath)
	if err != nil {
		return nil, err
	}
	defer production.Close()

	if err := production.Initialize(ctx); err != nil {
		return nil, err
	}

	if err := production.ReplaceAssignments(ctx, rows); err != nil {
		return nil, &PartialError{Snapshot: snapshot, Err: err}
	}
	if snapshot != "" {
		rec := store.Record{
			ID:       uuid.NewString(),
			At:       m.now(),
			Comment:  opts.Comment,
			Snapshot: snapshot,
		}
		if err := production.AddDeployRecord(ctx, rec); err != nil {
			return nil, &PartialError{Snapshot: snapshot, Err: err}
		}
	}
	if err := production.Commit(ctx, ""); err != nil {
		return nil, &PartialError{Snapshot: snapshot, Err: err}
	}

	m.log.Info().
		Str("staging", stagingPath).
		Str("production", productionPath).
		Str("snapshot", snapshot).
		Int("assignments", len(rows)).
		Msg("deployed staging to production")

	return &Outcome{Snapshot: snapshot, Deployed: len(rows)}, nil
}

// History returns production's deploy records, newest first.
func (m *Manager) History(ctx context.Context) ([]store.Record, error) {
	production, err := store.Open(m.cfg.ProductionDatabase, store.ReadOnly())
	if err != nil {
		return nil, err
	}
	defer production.Close()

	return production.DeployHistory(ctx)
}

// snapshotProduction copies the production file into the history
// folder under a timestamped name. A production store that does not
// exist yet snapshots as an empty database; the record still marks
// that a deploy happened.
func (m *Manager) snapshotProduction() (string, error) {
	productionPath := m.cfg.ProductionDatabase

	historyDir := m.cfg.HistoryDir()
	if err := os.MkdirAll(historyDir, 0o755); err != nil {
		return "", err
	}

	ext := filepath.Ext(productionPath)
	if ext == "" {
		ext = ".db"
	}
	target := filepath.Join(historyDir, Timestamp(m.now())+ext)

	if !store.Exists(productionPath) {
		m.log.Warn().
			Str("production", productionPath).
			Msg("no production database yet, snapshotting empty")
		return target, os.WriteFile(target, nil, 0o644)
	}

	if err := copyFile(productionPath, target); err != nil {
		return "", err
	}
	return target, nil
}

// copyFile writes a byte-for-byte copy of src at dst.
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
