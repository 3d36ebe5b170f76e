package model

// Auth modes. Exactly one is active at a time.
const (
	AuthModeGuest = "guest"
	AuthModeUser  = "user"
)

// User identifies a signed-in account as reported by the server.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthState is the persisted session state. Guest sessions carry no user
// or token. The zero value is not meaningful; use GuestAuth.
type AuthState struct {
	Mode  string `json:"mode"`
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// GuestAuth returns the anonymous session state.
func GuestAuth() AuthState {
	return AuthState{Mode: AuthModeGuest}
}

// UserAuth returns an authenticated session state.
func UserAuth(user User, token string) AuthState {
	u := user
	return AuthState{Mode: AuthModeUser, User: &u, Token: token}
}

// IsAuthenticated reports whether the state carries a usable credential.
func (a AuthState) IsAuthenticated() bool {
	return a.Mode == AuthModeUser && a.Token != ""
}
