package enums

import "fmt"

// UserRole is the ordered access tier for academy content. The paid tiers
// form a total order; admin sits outside the ladder and passes every gate.
type UserRole string

const (
	UserRoleNope    UserRole = "nope"
	UserRoleStudent UserRole = "student"
	UserRolePremium UserRole = "premium"
	UserRoleVIP     UserRole = "vip"
	UserRoleAdmin   UserRole = "admin"
)

var validUserRoles = []UserRole{
	UserRoleNope,
	UserRoleStudent,
	UserRolePremium,
	UserRoleVIP,
	UserRoleAdmin,
}

// tierRank orders the paid ladder. Admin deliberately has no rank here; gate
// checks must special-case it instead of relying on a large number.
var tierRank = map[UserRole]int{
	UserRoleNope:    0,
	UserRoleStudent: 1,
	UserRolePremium: 2,
	UserRoleVIP:     3,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsPaidTier reports whether the role represents active paid access.
func (r UserRole) IsPaidTier() bool {
	switch r {
	case UserRoleStudent, UserRolePremium, UserRoleVIP:
		return true
	}
	return false
}

// AtLeast reports whether the role sits at or above the required tier on the
// ladder. Admin always passes. Unknown roles never pass.
func (r UserRole) AtLeast(required UserRole) bool {
	if r == UserRoleAdmin {
		return true
	}
	have, ok := tierRank[r]
	if !ok {
		return false
	}
	want, ok := tierRank[required]
	if !ok {
		return false
	}
	return have >= want
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
