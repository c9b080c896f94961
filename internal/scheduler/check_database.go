package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/pricesync/internal/database"
	"github.com/rs/zerolog"
)

const (
	// walWarnFrames is the WAL size above which a checkpoint is overdue
	walWarnFrames = 1000

	checkDatabaseTimeout = 2 * time.Minute
)

// DatabaseChecker is the database as seen by CheckDatabaseJob
type DatabaseChecker interface {
	Name() string
	IntegrityCheck(ctx context.Context) (string, error)
	Checkpoint(ctx context.Context) (database.WALStatus, error)
}

// CheckDatabaseJob verifies integrity of the SQLite database and reports WAL growth
type CheckDatabaseJob struct {
	log zerolog.Logger
	db  DatabaseChecker
}

// NewCheckDatabaseJob creates a new CheckDatabaseJob
func NewCheckDatabaseJob(db DatabaseChecker) *CheckDatabaseJob {
	return &CheckDatabaseJob{
		log: zerolog.Nop(),
		db:  db,
	}
}

// SetLogger sets the logger for the job
func (j *CheckDatabaseJob) SetLogger(log zerolog.Logger) {
	j.log = log
}

// Name returns the job name
func (j *CheckDatabaseJob) Name() string {
	return "check_database"
}

// Run runs the integrity check, then a passive WAL checkpoint.
// Only a failed or non-ok integrity check is an error.
func (j *CheckDatabaseJob) Run() error {
	if j.db == nil {
		j.log.Warn().Msg("Database not initialized, skipping")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), checkDatabaseTimeout)
	defer cancel()

	log := j.log.With().Str("database", j.db.Name()).Logger()

	result, err := j.db.IntegrityCheck(ctx)
	if err != nil {
		return err
	}
	if result != "ok" {
		log.Error().Str("result", result).Msg("Database integrity check failed")
		return fmt.Errorf("database %s is corrupted: %s", j.db.Name(), result)
	}
	log.Debug().Msg("Database integrity OK")

	status, err := j.db.Checkpoint(ctx)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("WAL checkpoint failed")
	case status.Busy:
		log.Warn().Int("wal_frames", status.Frames).Msg("WAL checkpoint blocked by a reader or writer")
	case status.Frames > walWarnFrames:
		log.Warn().
			Int("wal_frames", status.Frames).
			Int("checkpointed", status.Checkpointed).
			Msg("WAL file is large")
	default:
		log.Debug().Int("wal_frames", status.Frames).Msg("WAL checkpoint OK")
	}

	return nil
}
