package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains the connection settings shared by both database
// roles plus the per-role credentials. The administrative role owns the
// schema and runs migrations; the API role is the restricted role request
// handlers use, so that row-level security and grants bound what a request
// can ever touch.
//
// No validate tags here: completeness of a role's credential bundle is
// checked by dbaccess at first acquire, not at config load (see package doc).
type DatabaseConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Name string `mapstructure:"name"`

	AdminUser     string `mapstructure:"admin_user"`
	AdminPassword string `mapstructure:"admin_password"`

	APIUser     string `mapstructure:"api_user"`
	APIPassword string `mapstructure:"api_password"`
}

// AuthConfig contains authentication settings: the identity provider
// domain used for the userinfo profile endpoint and the parameters for
// verifying bearer tokens.
type AuthConfig struct {
	// ProviderDomain is the identity provider host, e.g. "example.auth0.com".
	// The profile endpoint is derived from it as https://{domain}/userinfo.
	ProviderDomain string `mapstructure:"provider_domain" validate:"required,hostname"`

	// JWTSecret is the HMAC key for the bearer-token verifier.
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`

	// Audience and Issuer are enforced on verified tokens when non-empty.
	Audience string `mapstructure:"audience"`
	Issuer   string `mapstructure:"issuer"`
}

// RedisConfig contains the settings for the Redis client used by the
// background heartbeat. All fields must be set before a client is built;
// platform/redis validates them.
type RedisConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	DB   int    `mapstructure:"db"`
}
