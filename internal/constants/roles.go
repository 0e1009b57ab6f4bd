package constants

import (
	"database/sql/driver"
	"fmt"
)

// TeamRole names a roster position. Stored as plain text; validity is
// enforced in code, not by the database.
type TeamRole string

const (
	RoleCaptain TeamRole = "captain"
	RoleManager TeamRole = "manager"
	RolePlayer  TeamRole = "player"
	RoleCoach   TeamRole = "coach"
)

// Per-team capacity for the capped support roles.
const (
	MaxManagersPerTeam = 2
	MaxCoachesPerTeam  = 1
)

func (r TeamRole) String() string { return string(r) }

// IsValid reports whether r is one of the known roster roles.
func (r TeamRole) IsValid() bool {
	switch r {
	case RoleCaptain, RoleManager, RolePlayer, RoleCoach:
		return true
	}
	return false
}

// Capacity returns the per-team cap for the role, or -1 when uncapped.
func (r TeamRole) Capacity() int {
	switch r {
	case RoleCaptain:
		return 1
	case RoleManager:
		return MaxManagersPerTeam
	case RoleCoach:
		return MaxCoachesPerTeam
	default:
		return -1
	}
}

/* ---------- DB adapters so sqlx (or database/sql) scans/values cleanly ---------- */

// Scan implements the sql.Scanner interface
func (r *TeamRole) Scan(src interface{}) error {
	if src == nil {
		*r = ""
		return nil
	}
	switch v := src.(type) {
	case string:
		*r = TeamRole(v)
	case []byte:
		*r = TeamRole(v)
	default:
		return fmt.Errorf("TeamRole: cannot scan type %T", src)
	}
	return nil
}

// Value implements the driver.Valuer interface
func (r TeamRole) Value() (driver.Value, error) { return string(r), nil }
