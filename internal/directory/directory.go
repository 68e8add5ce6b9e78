package directory

import "github.com/avolkov/cert-registry-api/internal/models"

// Directory is the read-only embedded employee directory. Reporting links form
// a tree with the chief and HR as roots; the mutable profile overlay may
// re-point a manager link at runtime, which is honored by DescendantIDs.
type Directory struct {
	users []models.User
	byID  map[int]models.User
}

// New builds a directory over the given users.
func New(users []models.User) *Directory {
	byID := make(map[int]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return &Directory{users: users, byID: byID}
}

// Default returns the directory of the predefined employee set.
func Default() *Directory {
	return New(defaultUsers)
}

// Get returns the user with the given id, or nil.
func (d *Directory) Get(id int) *models.User {
	if u, ok := d.byID[id]; ok {
		return &u
	}
	return nil
}

// All returns every user in declaration order.
func (d *Directory) All() []models.User {
	out := make([]models.User, len(d.users))
	copy(out, d.users)
	return out
}

// RoleGroup is a set of users sharing a role, for the login picker.
type RoleGroup struct {
	Role  models.UserRole `json:"role"`
	Label string          `json:"label"`
	Users []models.User   `json:"users"`
}

// loginOrder fixes the hierarchy order for grouped listings.
var loginOrder = []models.UserRole{
	models.RoleChief,
	models.RoleLead,
	models.RoleSpecialist,
	models.RoleJunior,
	models.RoleHR,
}

// GroupedForLogin groups users by role in hierarchy order, skipping empty roles.
func (d *Directory) GroupedForLogin() []RoleGroup {
	grouped := make([]RoleGroup, 0, len(loginOrder))
	for _, role := range loginOrder {
		var users []models.User
		for _, u := range d.users {
			if u.Role == role {
				users = append(users, u)
			}
		}
		if len(users) > 0 {
			grouped = append(grouped, RoleGroup{Role: role, Label: role.Label(), Users: users})
		}
	}
	return grouped
}

// DescendantIDs walks the reporting graph and returns every direct and
// indirect subordinate of managerID. A profile override in managerOverrides
// takes precedence over the static link for that user. The walk keeps a
// visited set, so cycles introduced by overrides terminate and nodes reachable
// via multiple paths are counted once.
func (d *Directory) DescendantIDs(managerID int, managerOverrides map[int]*int) []int {
	children := make(map[int][]int, len(d.users))
	for _, u := range d.users {
		mid := u.ManagerID
		if override, ok := managerOverrides[u.ID]; ok && override != nil {
			mid = override
		}
		if mid == nil {
			continue
		}
		children[*mid] = append(children[*mid], u.ID)
	}

	var out []int
	seen := make(map[int]bool)
	stack := append([]int(nil), children[managerID]...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
		stack = append(stack, children[id]...)
	}
	return out
}
