package domain

// Config is the runtime configuration handed to services and handlers.
type Config struct {
	FQDN      string `yaml:"fqdn"`
	Version   string `yaml:"version"`
	JWTSecret string `yaml:"jwtSecret"`
}
