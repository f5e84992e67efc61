package follow

// Stats is the profile-screen counter pair for a user.
type Stats struct {
	Followers int `json:"followers"`
	Following int `json:"following"`
}
