package implementation

import (
	"context"
	"testing"

	"blog-autowriter-be/internal/entity"
	"blog-autowriter-be/internal/repository/contract"
	"blog-autowriter-be/internal/repository/specification"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestProfileRepository_CompareAndSwap(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepository(db)

	mock.ExpectExec(`UPDATE "profiles" SET .* WHERE .*id = \$\d+ AND revision = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	p := &entity.Profile{Id: "naver:1", Email: "a@example.com", CreditBalance: 0, Revision: 4}
	require.NoError(t, repo.CompareAndSwap(context.Background(), p, 4))
	assert.Equal(t, int64(5), p.Revision)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_CompareAndSwapConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepository(db)

	mock.ExpectExec(`UPDATE "profiles" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	p := &entity.Profile{Id: "naver:1", Revision: 4}
	err := repo.CompareAndSwap(context.Background(), p, 4)
	assert.ErrorIs(t, err, contract.ErrRevisionConflict)
	assert.Equal(t, int64(4), p.Revision)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_FindOneMissingReturnsNil(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "profiles" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	p, err := repo.FindOne(context.Background(), specification.ByProfileID{ID: "naver:404"})
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.NoError(t, mock.ExpectationsWereMet())
}
