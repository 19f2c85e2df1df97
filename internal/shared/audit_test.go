package shared

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func TestAuditRecord(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(pgxmock.AnyArg(), "bulk.isActive", "users", "bulk", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	logger := NewAuditLogger(mock)
	err = logger.Record(context.Background(), AuditLog{
		ActorID:  "actor",
		Action:   "bulk.isActive",
		Entity:   "users",
		EntityID: "bulk",
		Meta:     map[string]any{"count": 2},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRecordRequiresFields(t *testing.T) {
	logger := NewAuditLogger(nil)
	require.Error(t, logger.Record(context.Background(), AuditLog{Action: "x"}))
}

func TestAuditPrune(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM audit_logs").
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 7))

	n, err := NewAuditLogger(mock).Prune(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	require.EqualValues(t, 7, n)
	require.NoError(t, mock.ExpectationsWereMet())
}
