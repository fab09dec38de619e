package server

import "github.com/raysh454/ethicheck/internal/logging"

type Config struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string

	// AllowedOrigins limits CORS and websocket origins. Empty allows any.
	AllowedOrigins []string

	// Token, when set, is required as a bearer token on /api/v1/assess.
	Token string

	Logger logging.Logger
}
