package domain

// LoginRequest is the email/password sign-in payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is what a successful sign-in returns: the backend-issued tokens
// plus the resolved profile so clients need no second round-trip.
type Session struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token,omitempty"`
	ExpiresIn    int      `json:"expires_in"`
	UserID       string   `json:"user_id"`
	Email        string   `json:"email"`
	Profile      *Profile `json:"profile,omitempty"`
}

// AccessClaims are the token claims the middleware cares about.
type AccessClaims struct {
	Sub   string
	Email string
	Role  string
}

// DevLogin is a row of the dev_logins table used by the DEV_AUTH fallback
// when no GoTrue instance is reachable (local development only).
type DevLogin struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	ProfileID    string `json:"profile_id"`
}
