package dto

import "github.com/Angel-Eco/CuidadoPRO/internal/entity"

type LoginRequest struct {
	Username string `json:"username" binding:"required,max=50"`
	Password string `json:"password" binding:"required,max=72"`
}

type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        *entity.User `json:"user"`
}

type VerifyResponse struct {
	Valid bool         `json:"valid"`
	User  *entity.User `json:"user"`
}
