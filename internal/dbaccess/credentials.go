package dbaccess

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/duvethq/duvet-api/internal/config"
)

// Role identifies which database role a pool or session belongs to.
type Role string

// The two database roles. They map to distinct Postgres roles with
// distinct privileges and are pooled separately.
const (
	RoleAdmin Role = "admin"
	RoleAPI   Role = "api"
)

// Credentials is the connection bundle for one database role. Every
// field must be non-empty before a connection is attempted.
type Credentials struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

// CredentialsFromConfig extracts the credentials bundle for the given
// role from the database configuration.
func CredentialsFromConfig(cfg config.DatabaseConfig, role Role) (Credentials, error) {
	creds := Credentials{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Database: cfg.Name,
	}
	switch role {
	case RoleAdmin:
		creds.User = cfg.AdminUser
		creds.Password = cfg.AdminPassword
	case RoleAPI:
		creds.User = cfg.APIUser
		creds.Password = cfg.APIPassword
	default:
		return Credentials{}, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	return creds, nil
}

// Validate checks that the bundle is complete. An incomplete bundle is a
// configuration error, reported with the names of the missing fields.
func (c Credentials) Validate() error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"host", c.Host},
		{"port", c.Port},
		{"database", c.Database},
		{"user", c.User},
		{"password", c.Password},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}

// ConnString renders the bundle as a postgres:// URI. User and password
// are URL-escaped so credentials containing reserved characters survive.
func (c Credentials) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.Database,
	)
}
