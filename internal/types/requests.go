package types

// RegisterRequest creates an identity and its initial profile
type RegisterRequest struct {
	Name        string  `json:"name" binding:"required"`
	Email       string  `json:"email" binding:"required"`
	Password    string  `json:"password" binding:"required"`
	Age         *int    `json:"age,omitempty"`
	Height      *string `json:"height,omitempty"`
	Weight      *string `json:"weight,omitempty"`
	HealthGoals *string `json:"health_goals,omitempty"`
}

// LoginRequest exchanges credentials for a session token
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries a freshly issued session token
type AuthResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

// ForgotPasswordRequest asks for a password reset email
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

// ResetPasswordRequest sets a new password with a reset token
type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// MessageResponse is a plain acknowledgement
type MessageResponse struct {
	Message string `json:"message"`
}
