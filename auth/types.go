package auth

// Backend endpoints used by the session.
const (
	EndpointLogin    = "/auth/login"
	EndpointProfile  = "/auth/me"
	EndpointLogout   = "/auth/logout"
	EndpointRegister = "/auth/register"
)

type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by login and register. Token may be empty when
// the backend defers sign-in, e.g. until an email is confirmed.
type LoginResponse struct {
	Token string   `json:"token"`
	User  *Profile `json:"user,omitempty"`
}

type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
