package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/aristath/pricesync/internal/database"
	testutil "github.com/aristath/pricesync/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDatabaseChecker struct {
	mock.Mock
}

func (m *mockDatabaseChecker) Name() string {
	return "pricesync"
}

func (m *mockDatabaseChecker) IntegrityCheck(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockDatabaseChecker) Checkpoint(ctx context.Context) (database.WALStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(database.WALStatus), args.Error(1)
}

func TestCheckDatabaseJob_Name(t *testing.T) {
	job := NewCheckDatabaseJob(nil)
	assert.Equal(t, "check_database", job.Name())
}

func TestCheckDatabaseJob_Run_NoDatabase(t *testing.T) {
	job := NewCheckDatabaseJob(nil)
	job.SetLogger(zerolog.Nop())

	assert.NoError(t, job.Run())
}

func TestCheckDatabaseJob_Run_HealthyDatabase(t *testing.T) {
	db := testutil.NewTestDB(t)

	_, err := db.Conn().Exec(`INSERT INTO price_cache (ticker, price, currency, last_updated) VALUES ('AAPL', '200', 'EUR', 1700000000)`)
	require.NoError(t, err)

	assert.NoError(t, NewCheckDatabaseJob(db).Run())
}

func TestCheckDatabaseJob_Run_Corrupted(t *testing.T) {
	db := new(mockDatabaseChecker)
	db.On("IntegrityCheck", mock.Anything).Return("*** in database main ***", nil)

	err := NewCheckDatabaseJob(db).Run()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupted")
	db.AssertNotCalled(t, "Checkpoint", mock.Anything)
}

func TestCheckDatabaseJob_Run_IntegrityQueryFails(t *testing.T) {
	db := new(mockDatabaseChecker)
	db.On("IntegrityCheck", mock.Anything).Return("", errors.New("disk I/O error"))

	assert.Error(t, NewCheckDatabaseJob(db).Run())
}

func TestCheckDatabaseJob_Run_CheckpointProblemsAreNotErrors(t *testing.T) {
	for _, tc := range []struct {
		name   string
		status database.WALStatus
		err    error
	}{
		{name: "busy", status: database.WALStatus{Busy: true, Frames: 10}},
		{name: "large", status: database.WALStatus{Frames: walWarnFrames + 1}},
		{name: "failed", err: errors.New("locked")},
	} {
		t.Run(tc.name, func(t *testing.T) {
			db := new(mockDatabaseChecker)
			db.On("IntegrityCheck", mock.Anything).Return("ok", nil)
			db.On("Checkpoint", mock.Anything).Return(tc.status, tc.err)

			assert.NoError(t, NewCheckDatabaseJob(db).Run())
			db.AssertExpectations(t)
		})
	}
}
