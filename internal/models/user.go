package models

import "strings"

// UserRole represents the position of an employee in the reporting hierarchy.
type UserRole string

const (
	RoleJunior     UserRole = "junior"
	RoleSpecialist UserRole = "specialist"
	RoleLead       UserRole = "lead"
	RoleChief      UserRole = "chief"
	RoleHR         UserRole = "hr"
)

// RoleLabels maps roles to their human-readable titles.
var RoleLabels = map[UserRole]string{
	RoleJunior:     "Младший специалист",
	RoleSpecialist: "Специалист",
	RoleLead:       "Ведущий специалист",
	RoleChief:      "Главный специалист",
	RoleHR:         "Курирующий HR",
}

// Label returns the display title for the role, falling back to the raw value.
func (r UserRole) Label() string {
	if label, ok := RoleLabels[r]; ok {
		return label
	}
	return string(r)
}

// User is an immutable entry of the static employee directory.
type User struct {
	ID        int      `json:"id"`
	FullName  string   `json:"full_name"`
	Role      UserRole `json:"role"`
	ManagerID *int     `json:"manager_id,omitempty"`
}

// Initials derives the avatar initials: given name + patronymic when the full
// name has three parts, otherwise the first letters of the first two parts.
func (u User) Initials() string {
	return initialsOf(u.FullName)
}

// Profile is the mutable per-user overlay stored in the database.
type Profile struct {
	UserID           int     `db:"user_id" json:"user_id"`
	FullName         string  `db:"full_name" json:"full_name"`
	Position         string  `db:"position" json:"position"`
	Module           string  `db:"module" json:"module"`
	ManagerID        *int    `db:"manager_id" json:"manager_id,omitempty"`
	ControlledModule *string `db:"controlled_module" json:"controlled_module,omitempty"`
}

// DisplayUser merges a directory user with its profile overlay for presentation.
type DisplayUser struct {
	ID               int      `json:"id"`
	FullName         string   `json:"full_name"`
	Role             UserRole `json:"role"`
	RoleLabel        string   `json:"role_label"`
	Initials         string   `json:"initials"`
	Position         string   `json:"position"`
	Module           string   `json:"module"`
	ManagerID        *int     `json:"manager_id,omitempty"`
	ControlledModule *string  `json:"controlled_module,omitempty"`
}

// MergeProfile layers the profile over the directory entry; the profile wins
// field by field and the directory fills the gaps.
func MergeProfile(base User, profile *Profile) DisplayUser {
	du := DisplayUser{
		ID:        base.ID,
		FullName:  base.FullName,
		Role:      base.Role,
		RoleLabel: base.Role.Label(),
		Position:  base.Role.Label(),
		ManagerID: base.ManagerID,
	}
	if profile != nil {
		if profile.FullName != "" {
			du.FullName = profile.FullName
		}
		if profile.Position != "" {
			du.Position = profile.Position
		}
		du.Module = profile.Module
		if profile.ManagerID != nil {
			du.ManagerID = profile.ManagerID
		}
		du.ControlledModule = profile.ControlledModule
	}
	du.Initials = initialsOf(du.FullName)
	return du
}

func initialsOf(fullName string) string {
	parts := strings.Fields(fullName)
	switch {
	case len(parts) >= 3:
		return strings.ToUpper(firstRune(parts[1]) + firstRune(parts[2]))
	case len(parts) == 2:
		return strings.ToUpper(firstRune(parts[0]) + firstRune(parts[1]))
	case len(parts) == 1:
		runes := []rune(parts[0])
		if len(runes) > 2 {
			runes = runes[:2]
		}
		return strings.ToUpper(string(runes))
	default:
		return "??"
	}
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}
