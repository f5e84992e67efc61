package profile

import "time"

// User is the public attribute set read from the account directory.
type User struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Username  *string    `json:"username,omitempty"`
	AvatarURL *string    `json:"avatar_url,omitempty"`
	Bio       *string    `json:"bio,omitempty"`
	Email     *string    `json:"email,omitempty"`
	Phone     *string    `json:"phone,omitempty"`
	Address   *string    `json:"address,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Placeholder returns a fresh best-effort stand-in for a profile that could
// not be resolved. Callers always receive a usable value, never nil.
func Placeholder(id string) *User {
	return &User{
		ID:   id,
		Name: "Unknown User",
	}
}
