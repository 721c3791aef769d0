package persistence_test

import (
	"context"
	"testing"

	"ChatDesk/internal/modules/chat/infrastructure/persistence"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)
	return db, mock
}

func TestSessionRepository_DeleteWithMessagesInOneTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	repo := persistence.NewSessionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `chat_message` WHERE session_id = ?").
		WithArgs("S1").
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec("DELETE FROM `chat_session` WHERE id = ?").
		WithArgs("S1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteWithMessages(context.Background(), "S1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_DeleteWithMessagesRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := persistence.NewSessionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `chat_message`").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	assert.Error(t, repo.DeleteWithMessages(context.Background(), "S1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_GetLatestByEndUserNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := persistence.NewSessionRepository(db)

	mock.ExpectQuery("SELECT \\* FROM `chat_session` WHERE end_user_id = \\? ORDER BY created_at DESC").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	sess, err := repo.GetLatestByEndUser(context.Background(), "U1")
	require.NoError(t, err)
	assert.Nil(t, sess)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_RecordInboundIncrementsUnread(t *testing.T) {
	db, mock := newMockDB(t)
	repo := persistence.NewSessionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `chat_session` SET .*`unread_count`=unread_count \\+ \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.RecordInbound(context.Background(), "S1", "happy", "hi", testNow))
	assert.NoError(t, mock.ExpectationsWereMet())
}
