package repositories

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"telebill/internal/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestTranslateDuplicate(t *testing.T) {
	user := &models.User{ID: 1, Email: "bob@example.com", Username: "bob"}

	t.Run("email taken", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := &userRepository{db: db}

		mock.ExpectQuery(`SELECT count\(\*\) FROM "users"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		err := repo.translateDuplicate(db, gorm.ErrDuplicatedKey, user)
		assert.ErrorIs(t, err, ErrEmailTaken)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("username taken", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := &userRepository{db: db}

		mock.ExpectQuery(`SELECT count\(\*\) FROM "users"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		err := repo.translateDuplicate(db, gorm.ErrDuplicatedKey, user)
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("probe failure still reports a conflict", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := &userRepository{db: db}

		mock.ExpectQuery(`SELECT count\(\*\) FROM "users"`).
			WillReturnError(assert.AnError)

		err := repo.translateDuplicate(db, gorm.ErrDuplicatedKey, user)
		assert.ErrorIs(t, err, ErrDuplicateUser)
	})

	t.Run("non-duplicate errors pass through wrapped", func(t *testing.T) {
		db, _ := newMockDB(t)
		repo := &userRepository{db: db}

		err := repo.translateDuplicate(db, assert.AnError, user)
		assert.ErrorIs(t, err, assert.AnError)
		assert.NotErrorIs(t, err, ErrDuplicateUser)
	})
}
