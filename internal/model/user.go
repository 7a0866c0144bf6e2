package model

// Role constants.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a registered account. Usernames are unique and case-sensitive.
//
// Passwords are stored and compared in plaintext for parity with the
// persisted document format; hardening is an explicit non-goal.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"isActive"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserPatch is a partial update applied to an existing user.
// Nil fields are left unchanged.
type UserPatch struct {
	Username *string
	Password *string
	Email    *string
	Role     *string
	IsActive *bool
}

// Apply merges the patch into the user.
func (p UserPatch) Apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Password != nil {
		u.Password = *p.Password
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
}
