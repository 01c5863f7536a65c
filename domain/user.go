package domain

import "time"

type Role string

const (
	RoleStudent Role = "student"
	RoleAlumni  Role = "alumni"
	RoleAdmin   Role = "admin"
)

// User carries the presence record directly: one Online/LastSeen pair per
// user, overwritten on connect and on last disconnect.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	Online    bool      `json:"online"`
	LastSeen  time.Time `json:"lastSeen"`
	CreatedAt time.Time `json:"createdAt"`
	// PasswordHash is set only for local-credential accounts; Google
	// accounts leave it empty. The account service blanks it before a
	// user ever crosses the API boundary.
	PasswordHash string `json:"passwordHash,omitempty"`
}
