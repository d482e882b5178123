package entity

type Role string

const (
	RoleAdmin         Role = "ADMIN"
	RoleSalesTeamHead Role = "SALES_TEAM_HEAD"
	RoleSalesTeam     Role = "SALES_TEAM"
	RoleProcessing    Role = "PROCESSING"
	RoleStaff         Role = "STAFF"
	RoleHR            Role = "HR"
)

// User carries the slice of the identity record this core consumes.
// Authentication and session issuance live in the HTTP collaborator.
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanManageLeads covers lead creation: every role except HR works leads.
func (u User) CanManageLeads() bool {
	return u.Role != RoleHR
}
