package session

// User is the profile returned by the authentication endpoint and
// persisted next to the token.
type User struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	ProfilePictureURL string `json:"profile_picture_url"`
}

// Principal is the authenticated identity held by the Store.
// A non-nil Principal always carries a non-empty token.
type Principal struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Credentials struct {
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required"`
}
