package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/avolkov/cert-registry-api/internal/directory"
	"github.com/avolkov/cert-registry-api/internal/models"
	appErrors "github.com/avolkov/cert-registry-api/pkg/errors"
)

func newProfileService(profiles ProfileStore) *ProfileService {
	return NewProfileService(directory.Default(), profiles, testModule, zap.NewNop())
}

func TestEnsureSeededIsIdempotent(t *testing.T) {
	profiles := newMockProfileStore()
	svc := newProfileService(profiles)

	require.NoError(t, svc.EnsureSeeded(context.Background()))
	assert.Len(t, profiles.profiles, 16)

	// HR gets the default module as its controlled module
	hr := profiles.profiles[100]
	require.NotNil(t, hr)
	require.NotNil(t, hr.ControlledModule)
	assert.Equal(t, testModule, *hr.ControlledModule)

	// a later run does not overwrite edits
	profiles.profiles[20].Position = "Инженер"
	require.NoError(t, svc.EnsureSeeded(context.Background()))
	assert.Equal(t, "Инженер", profiles.profiles[20].Position)
}

func TestSaveValidatesManager(t *testing.T) {
	svc := newProfileService(newMockProfileStore())
	viewer := models.DisplayUser{ID: 20, Role: models.RoleJunior}

	_, err := svc.Save(context.Background(), viewer, models.ProfileUpdateRequest{
		FullName: "Иванов Иван Сергеевич", Position: "Инженер", Module: "Модуль А", ManagerID: intPtr(20),
	})
	requireAppError(t, err, appErrors.ErrValidation.Code)

	_, err = svc.Save(context.Background(), viewer, models.ProfileUpdateRequest{
		FullName: "Иванов Иван Сергеевич", Position: "Инженер", Module: "Модуль А", ManagerID: intPtr(999),
	})
	requireAppError(t, err, appErrors.ErrValidation.Code)
}

func TestSaveKeepsControlledModuleForNonHR(t *testing.T) {
	profiles := newMockProfileStore()
	svc := newProfileService(profiles)
	viewer := models.DisplayUser{ID: 20, Role: models.RoleJunior}

	granted := "Модуль А"
	updated, err := svc.Save(context.Background(), viewer, models.ProfileUpdateRequest{
		FullName: "Иванов Иван Сергеевич", Position: "Инженер", Module: "Модуль А",
		ControlledModule: &granted,
	})
	require.NoError(t, err)
	assert.Nil(t, updated.ControlledModule)
}

func TestSaveHRMayChangeControlledModule(t *testing.T) {
	profiles := newMockProfileStore()
	svc := newProfileService(profiles)
	viewer := models.DisplayUser{ID: 100, Role: models.RoleHR}

	controlled := "Модуль Б"
	updated, err := svc.Save(context.Background(), viewer, models.ProfileUpdateRequest{
		FullName: "Беляева Наталья Константиновна", Position: "Курирующий HR", Module: testModule,
		ControlledModule: &controlled,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.ControlledModule)
	assert.Equal(t, "Модуль Б", *updated.ControlledModule)
}

func TestListDisplayUsersMergesOverlays(t *testing.T) {
	profiles := newMockProfileStore()
	profiles.profiles[20] = &models.Profile{
		UserID: 20, FullName: "Иванов-Петров Иван Сергеевич", Position: "Инженер", Module: "Модуль А",
	}
	svc := newProfileService(profiles)

	users, err := svc.ListDisplayUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 16)

	var junior *models.DisplayUser
	for i := range users {
		if users[i].ID == 20 {
			junior = &users[i]
		}
	}
	require.NotNil(t, junior)
	assert.Equal(t, "Иванов-Петров Иван Сергеевич", junior.FullName)
	assert.Equal(t, "Инженер", junior.Position)
}
