package server

import "time"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// BodyLimitMB caps request bodies; large listings are posted in one request.
	BodyLimitMB int `mapstructure:"body_limit_mb" default:"64"`
	// ReadTimeoutSeconds bounds reading a request. Zero means no limit.
	ReadTimeoutSeconds int `mapstructure:"read_timeout_seconds" default:"60"`
}

// Address returns the listen address.
func (c Config) Address() string {
	return ":" + c.Port
}

// BodyLimit returns BodyLimitMB in bytes, falling back to 4 MB.
func (c Config) BodyLimit() int {
	if c.BodyLimitMB <= 0 {
		return 4 * 1024 * 1024
	}
	return c.BodyLimitMB * 1024 * 1024
}

// ReadTimeout returns ReadTimeoutSeconds as a duration.
func (c Config) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}
