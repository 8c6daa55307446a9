package domain

// Role identifies the kind of actor behind a request. It is derived per
// request from the credential and never stored.
type Role string

const (
	RoleUser         Role = "User"
	RoleSupportAgent Role = "Support-Agent"
	RoleEngineer     Role = "Engineer"
)

// Roles is the closed set of recognised roles.
var Roles = []Role{RoleUser, RoleSupportAgent, RoleEngineer}

// Valid reports whether r belongs to the closed role set.
func (r Role) Valid() bool {
	for _, candidate := range Roles {
		if candidate == r {
			return true
		}
	}
	return false
}
