package models

const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IsAdmin reports whether the user may mutate the catalog.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Session is the result of a successful remote login.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
