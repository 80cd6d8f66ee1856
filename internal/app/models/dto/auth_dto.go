package dto

// SignupRequest is the body of POST /signup.
type SignupRequest struct {
	Fullname    string  `json:"fullname"`
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	Username    string  `json:"username"`
	Role        string  `json:"role"`
	Department  string  `json:"department"`
	KTUID       *string `json:"ktu_id"`
	PassoutYear *int    `json:"passout_year"`
	Phone       string  `json:"phone"`
}

// SigninRequest is the body of POST /signin.
type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned after a successful signup or signin.
type AuthResponse struct {
	Message     string `json:"message,omitempty"`
	AccessToken string `json:"access_token"`
	ProfileImg  string `json:"profile_img"`
	Username    string `json:"username"`
	Fullname    string `json:"fullname"`
	Role        string `json:"role"`
}

// ChangePasswordRequest is the body of POST /change-password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}
