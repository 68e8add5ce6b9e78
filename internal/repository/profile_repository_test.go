package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/cert-registry-api/internal/models"
)

func newProfileRepoMock(t *testing.T) (*ProfileRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewProfileRepository(sqlx.NewDb(db, "sqlmock")), mock, func() { db.Close() }
}

func TestProfileRepositoryGet(t *testing.T) {
	repo, mock, cleanup := newProfileRepoMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"user_id", "full_name", "position", "module", "manager_id", "controlled_module"}).
		AddRow(20, "Иванов Иван Сергеевич", "Младший специалист", testDefaultModule, 10, nil)
	mock.ExpectQuery("SELECT (.+) FROM user_profiles WHERE user_id").
		WithArgs(20).
		WillReturnRows(rows)

	profile, err := repo.Get(context.Background(), 20)
	require.NoError(t, err)
	assert.Equal(t, 20, profile.UserID)
	require.NotNil(t, profile.ManagerID)
	assert.Equal(t, 10, *profile.ManagerID)
}

func TestProfileRepositoryUpsert(t *testing.T) {
	repo, mock, cleanup := newProfileRepoMock(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO user_profiles").
		WithArgs(20, "Иванов Иван Сергеевич", "Инженер", "Модуль А", nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), &models.Profile{
		UserID:   20,
		FullName: "Иванов Иван Сергеевич",
		Position: "Инженер",
		Module:   "Модуль А",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepositorySeed(t *testing.T) {
	repo, mock, cleanup := newProfileRepoMock(t)
	defer cleanup()

	managerID := 1
	users := []models.User{
		{ID: 2, FullName: "Васильев Михаил Андреевич", Role: models.RoleLead, ManagerID: &managerID},
		{ID: 100, FullName: "Беляева Наталья Константиновна", Role: models.RoleHR},
	}

	mock.ExpectExec("INSERT INTO user_profiles").
		WithArgs(2, "Васильев Михаил Андреевич", models.RoleLead.Label(), testDefaultModule, &managerID, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// HR is seeded with the default module as its controlled module
	mock.ExpectExec("INSERT INTO user_profiles").
		WithArgs(100, "Беляева Наталья Константиновна", models.RoleHR.Label(), testDefaultModule, nil, testDefaultModule).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Seed(context.Background(), users, testDefaultModule))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	for range schemaStatements {
		mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, EnsureSchema(context.Background(), sqlx.NewDb(db, "sqlmock")))
	assert.NoError(t, mock.ExpectationsWereMet())
}
