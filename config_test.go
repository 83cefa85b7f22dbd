package guardkit

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConfigFromEnv tests loading from GUARDKIT_-prefixed variables
func TestConfigFromEnv(t *testing.T) {
	t.Setenv("GUARDKIT_DEFAULT_GUARD", "api")
	t.Setenv("GUARDKIT_TEAMS", "true")
	t.Setenv("GUARDKIT_TEAMS_COLUMN", "tenant_id")
	t.Setenv("GUARDKIT_WILDCARDS", "true")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "api", cfg.DefaultGuard)
	assert.True(t, cfg.Teams)
	assert.Equal(t, "tenant_id", cfg.TeamsColumn)
	assert.True(t, cfg.Wildcards)
}

// TestConfigFromEnvDefaults tests the defaults with a clean environment
func TestConfigFromEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"GUARDKIT_DEFAULT_GUARD",
		"GUARDKIT_TEAMS",
		"GUARDKIT_TEAMS_COLUMN",
		"GUARDKIT_WILDCARDS",
	} {
		t.Setenv(key, "") // register restore, then clear
		os.Unsetenv(key)
	}

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "web", cfg.DefaultGuard)
	assert.False(t, cfg.Teams)
	assert.Equal(t, "team_id", cfg.TeamsColumn)
	assert.False(t, cfg.Wildcards)
}

// TestConfigValidate tests the structural checks
func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{DefaultGuard: "web"}.Validate())
	assert.NoError(t, Config{DefaultGuard: "web", Teams: true, TeamsColumn: "team_id"}.Validate())

	err := Config{}.Validate()
	assert.True(t, IsInvalidArgument(err))

	err = Config{DefaultGuard: "web", Teams: true, TeamsColumn: "team id; DROP TABLE roles"}.Validate()
	assert.True(t, IsInvalidArgument(err))
}

// TestConfigZeroValueDefaults tests that a zero Config still behaves
func TestConfigZeroValueDefaults(t *testing.T) {
	var cfg Config
	assert.Equal(t, "web", cfg.defaultGuard())
	assert.Equal(t, "team_id", cfg.teamsColumn())
}

// TestIsValidColumnName tests the identifier whitelist
func TestIsValidColumnName(t *testing.T) {
	assert.True(t, isValidColumnName("team_id"))
	assert.True(t, isValidColumnName("tenant2"))
	assert.False(t, isValidColumnName(""))
	assert.False(t, isValidColumnName("2teams"))
	assert.False(t, isValidColumnName("Team_ID"))
	assert.False(t, isValidColumnName("team-id"))
	assert.False(t, isValidColumnName("team id"))
}
