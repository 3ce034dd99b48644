package utils

// Application constants
const (
	// Application name
	AppName = "ZuriCart"

	// Default port
	DefaultPort = "8080"

	// Minimum password length
	MinPasswordLength = 8
)

// Error messages
const (
	ErrInvalidCredentials = "Invalid email or password"
	ErrUserBlocked        = "Your account has been blocked"
)
