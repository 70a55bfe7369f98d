package user

// TokenResponse carries a freshly issued token pair
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// UserResponseFromEntity converts a user row to its API shape
func UserResponseFromEntity(u *User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username}
}
