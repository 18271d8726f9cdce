package server

// Config holds server configuration
type Config struct {
	Port      string
	OpenAIKey string
	JWTSecret string // Secret key for JWT authentication
	DataDir   string // Directory holding the sqlite database
}
