package user

const (
	MsgEmailEmpty       = "Email is empty"
	MsgPasswordEmpty    = "Password is empty"
	MsgEmailInvalid     = "Email is not valid"
	MsgPasswordTooShort = "Password is too short"
	MsgPasswordTooLong  = "Password is too long"
	MsgUserExists       = "User already exists"
	MsgUserNotFound     = "User not found"
	MsgUserCreated      = "User created"
	MsgUserEdited       = "User edited"
	MsgUserDeleted      = "User deleted"
	MsgUserVerified     = "User verified"
	MsgInvalidRole      = "Role is not valid"
)

// Response is the outcome of a user operation. Expected rejections come
// back here with Success false; only storage failures are returned as errors.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func ok(message string) Response {
	return Response{Success: true, Message: message}
}

func fail(message string) Response {
	return Response{Success: false, Message: message}
}

type CreateUserDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type EditUserDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type UserResponse struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	IsVerified bool   `json:"is_verified"`
}

type UsersResponse struct {
	Users []UserResponse `json:"users"`
}

func ToResponses(users []*User) UsersResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, u.ToResponse())
	}
	return UsersResponse{Users: out}
}
