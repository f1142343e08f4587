package adminsdk

import "time"

// TokenHead is the scheme prefix clients put before the token.
const TokenHead = "Bearer "

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`

	// OTPCode is required once the account has TOTP enabled.
	OTPCode string `json:"otp_code,omitempty"`
}

// TokenResponse is returned by login and token refresh.
type TokenResponse struct {
	Token     string `json:"token"`
	TokenHead string `json:"token_head"`

	// ExpiresIn is the token lifetime in seconds.
	ExpiresIn int64 `json:"expires_in"`
}

// AdminInfo describes the authenticated admin.
type AdminInfo struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Nickname    string     `json:"nickname,omitempty"`
	Email       string     `json:"email,omitempty"`
	Authorities []string   `json:"authorities"`
	TOTPEnabled bool       `json:"totp_enabled"`
	LoginAt     *time.Time `json:"login_at,omitempty"`

	// MFA reports whether the current token was issued after a one-time code.
	MFA bool `json:"mfa"`
}

// ChangePasswordRequest is the body of POST /v1/admin/password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// CreateUserRequest is the body of POST /v1/admin/users.
type CreateUserRequest struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Nickname string   `json:"nickname,omitempty"`
	Email    string   `json:"email,omitempty"`
	Note     string   `json:"note,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

// UserResponse is a created or listed admin user.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Nickname  string    `json:"nickname,omitempty"`
	Email     string    `json:"email,omitempty"`
	Status    int       `json:"status"`
	Roles     []string  `json:"roles,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PermissionResponse is one entry of GET /v1/admin/permissions.
type PermissionResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Value  string `json:"value,omitempty"`
	Type   int    `json:"type"`
	URI    string `json:"uri,omitempty"`
	Status int    `json:"status"`
}

// TOTPEnrollResponse carries the secret for an authenticator app.
type TOTPEnrollResponse struct {
	Secret string `json:"secret"`
	URL    string `json:"url"`
}

// TOTPCodeRequest is the body of TOTP verify and disable.
type TOTPCodeRequest struct {
	Code string `json:"code"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string            `json:"status"`
	Uptime  string            `json:"uptime,omitempty"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}
