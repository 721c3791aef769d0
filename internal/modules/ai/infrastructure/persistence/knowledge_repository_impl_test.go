package persistence_test

import (
	"context"
	"testing"

	"ChatDesk/internal/modules/ai/infrastructure/persistence"

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

func TestKnowledgeRepository_DeleteBySourceReturnsCount(t *testing.T) {
	db, mock := newMockDB(t)
	repo := persistence.NewKnowledgeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `knowledge_chunk` WHERE").
		WithArgs("T1", "faq.md").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	n, err := repo.DeleteBySource(context.Background(), "T1", "faq.md")

	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKnowledgeRepository_UpdateVectorID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := persistence.NewKnowledgeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `knowledge_chunk` SET `vector_id`=").
		WithArgs("K1", "K1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.UpdateVectorID(context.Background(), "K1", "K1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
