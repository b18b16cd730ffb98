package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillswap-service/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func requestRows(status models.RequestStatus) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "user_low", "user_high", "sender_id", "receiver_id", "status", "message", "created_at", "updated_at"}).
		AddRow(3, 1, 2, 1, 2, string(status), nil, now, now)
}

func TestSendRequestDuplicateOppositeDirection(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPeerRepo(db)

	// A pending request from user 1 to user 2 already exists; user 2 sending
	// back probes the same sorted pair and is rejected.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM peers`)).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM peer_requests`)).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	_, err := repo.SendRequest(context.Background(), 2, 1, nil)
	assert.ErrorIs(t, err, ErrDuplicateRequest)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendRequestToExistingPeer(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPeerRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM peers`)).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	_, err := repo.SendRequest(context.Background(), 1, 2, nil)
	assert.ErrorIs(t, err, ErrAlreadyPeers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendRequestRaceMapsUniqueViolation(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPeerRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM peers`)).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM peer_requests`)).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO peer_requests`)).
		WithArgs(1, 2, 1, 2, nil).
		WillReturnError(&pq.Error{Code: pqUniqueViolation})
	mock.ExpectRollback()

	_, err := repo.SendRequest(context.Background(), 1, 2, nil)
	assert.ErrorIs(t, err, ErrDuplicateRequest)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRespondAcceptWritesPeerRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPeerRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM peer_requests WHERE id=$1 FOR UPDATE`)).
		WithArgs(3).
		WillReturnRows(requestRows(models.RequestPending))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE peer_requests SET status=$2`)).
		WithArgs(3, string(models.RequestAccepted)).
		WillReturnRows(requestRows(models.RequestAccepted))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO peers (user_low, user_high)`)).
		WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	req, err := repo.Respond(context.Background(), 3, 2, true)
	require.NoError(t, err)
	assert.Equal(t, models.RequestAccepted, req.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRespondDeclineSkipsPeerRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPeerRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM peer_requests WHERE id=$1 FOR UPDATE`)).
		WithArgs(3).
		WillReturnRows(requestRows(models.RequestPending))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE peer_requests SET status=$2`)).
		WithArgs(3, string(models.RequestDeclined)).
		WillReturnRows(requestRows(models.RequestDeclined))
	mock.ExpectCommit()

	req, err := repo.Respond(context.Background(), 3, 2, false)
	require.NoError(t, err)
	assert.Equal(t, models.RequestDeclined, req.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRespondResolvedRequest(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPeerRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM peer_requests WHERE id=$1 FOR UPDATE`)).
		WithArgs(3).
		WillReturnRows(requestRows(models.RequestAccepted))
	mock.ExpectRollback()

	_, err := repo.Respond(context.Background(), 3, 2, true)
	assert.ErrorIs(t, err, ErrRequestResolved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemovePeerClearsRequests(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPeerRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM peers`)).
		WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM peer_requests`)).
		WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.RemovePeer(context.Background(), 2, 1)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
