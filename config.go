package guardkit

import (
	"github.com/kelseyhightower/envconfig"
)

// Config holds the behavioral toggles for a Service. It is passed explicitly
// at construction so different Service instances (and tests) can run with
// different settings; GuardKit never reads ambient global state.
type Config struct {
	// DefaultGuard is used when an operation is called with an empty guard
	// name and the principal does not declare one.
	DefaultGuard string `envconfig:"DEFAULT_GUARD" default:"web"`

	// Teams enables multi-tenant scoping. When true, roles and role
	// assignments carry a team id taken from the request context, and scoped
	// lookups match records whose team id is NULL or equals the current
	// team id.
	Teams bool `envconfig:"TEAMS" default:"false"`

	// TeamsColumn is the tenant discriminator column on the roles and
	// principal_roles tables. Only consulted when Teams is true.
	TeamsColumn string `envconfig:"TEAMS_COLUMN" default:"team_id"`

	// Wildcards switches permission resolution from discrete record
	// membership to pattern matching over granted permission names.
	Wildcards bool `envconfig:"WILDCARDS" default:"false"`
}

// ConfigFromEnv loads a Config from GUARDKIT_-prefixed environment
// variables (GUARDKIT_DEFAULT_GUARD, GUARDKIT_TEAMS, ...).
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("guardkit", &cfg); err != nil {
		return Config{}, NewError(ErrInvalidArgument, err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for structural problems.
func (c Config) Validate() error {
	if c.DefaultGuard == "" {
		return NewError(ErrInvalidArgument, "default guard cannot be empty")
	}
	if c.Teams && !isValidColumnName(c.TeamsColumn) {
		return NewError(ErrInvalidArgument, "teams column must be a plain identifier")
	}
	return nil
}

// teamsColumn returns the tenant discriminator column, defaulting when the
// zero-value Config is used directly.
func (c Config) teamsColumn() string {
	if c.TeamsColumn == "" {
		return "team_id"
	}
	return c.TeamsColumn
}

// defaultGuard returns the configured default guard name.
func (c Config) defaultGuard() string {
	if c.DefaultGuard == "" {
		return "web"
	}
	return c.DefaultGuard
}

// isValidColumnName allows only identifiers that are safe to interpolate
// into SQL fragments.
func isValidColumnName(name string) bool {
	if name == "" {
		return false
	}
	for i, c := range name {
		switch {
		case c >= 'a' && c <= 'z':
		case c == '_':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
