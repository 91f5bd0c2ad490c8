package auth

const (
	MsgEmailEmpty      = "Email is empty"
	MsgPasswordEmpty   = "Password is empty"
	MsgUserNotFound    = "User not found"
	MsgWrongPassword   = "Wrong password"
	MsgUserNotVerified = "User is not verified"
	MsgUserLoggedIn    = "User logged in"
)

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the session on success.
type LoginResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Session *Session `json:"-"`
}

type LoginResult struct {
	Message string      `json:"message"`
	User    interface{} `json:"user"`
	Tokens  AuthTokens  `json:"tokens"`
}
