package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/cert-registry-api/internal/models"
)

func TestDefaultDirectory(t *testing.T) {
	dir := Default()
	assert.Len(t, dir.All(), 16)

	chief := dir.Get(1)
	require.NotNil(t, chief)
	assert.Equal(t, models.RoleChief, chief.Role)
	assert.Nil(t, chief.ManagerID)

	assert.Nil(t, dir.Get(999))
}

func TestGroupedForLogin(t *testing.T) {
	groups := Default().GroupedForLogin()
	require.Len(t, groups, 5)

	order := []models.UserRole{models.RoleChief, models.RoleLead, models.RoleSpecialist, models.RoleJunior, models.RoleHR}
	for i, g := range groups {
		assert.Equal(t, order[i], g.Role)
		assert.Equal(t, order[i].Label(), g.Label)
		assert.NotEmpty(t, g.Users)
	}
	assert.Len(t, groups[3].Users, 8)
}

func TestDescendantIDs(t *testing.T) {
	dir := Default()

	// the chief oversees everyone except HR
	chiefTeam := dir.DescendantIDs(1, nil)
	assert.Len(t, chiefTeam, 14)
	assert.NotContains(t, chiefTeam, 100)

	// a lead sees its specialists and their juniors
	leadTeam := dir.DescendantIDs(2, nil)
	assert.ElementsMatch(t, []int{10, 11, 20, 21, 22, 23}, leadTeam)

	// juniors have no team
	assert.Empty(t, dir.DescendantIDs(20, nil))
}

func TestDescendantIDsWithOverride(t *testing.T) {
	dir := Default()

	// re-pointing specialist 12 from lead 3 to lead 2 moves its juniors too
	overrides := map[int]*int{12: ptr(2)}
	leadTeam := dir.DescendantIDs(2, overrides)
	assert.Contains(t, leadTeam, 12)
	assert.Contains(t, leadTeam, 24)
	assert.Contains(t, leadTeam, 25)

	otherLead := dir.DescendantIDs(3, overrides)
	assert.NotContains(t, otherLead, 12)
	assert.NotContains(t, otherLead, 24)
}

func TestDescendantIDsCycleSafe(t *testing.T) {
	dir := Default()

	// override creates a cycle: 2 reports to 10, which reports to 2
	overrides := map[int]*int{2: ptr(10)}
	team := dir.DescendantIDs(2, overrides)
	assert.NotEmpty(t, team)

	seen := map[int]bool{}
	for _, id := range team {
		assert.False(t, seen[id], "id %d listed twice", id)
		seen[id] = true
	}
}
