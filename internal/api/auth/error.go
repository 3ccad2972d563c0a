package auth

import (
	"FallWatch/pkg/response"
	"net/http"
)

var (
	ErrEmailAlreadyExists = response.NewError(http.StatusConflict, "Email already registered")
	ErrInvalidCredentials = response.NewError(http.StatusUnauthorized, "Invalid credentials")
	ErrUserNotFound       = response.NewError(http.StatusNotFound, "User not found")
)
