package guardkit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestAuditFilterDefaults tests the default pagination
func TestAuditFilterDefaults(t *testing.T) {
	f := NewAuditFilter()
	assert.Equal(t, 100, f.Limit)
	assert.Equal(t, 0, f.Offset)
}

// TestAuditFilterBuilders tests the fluent builder chain
func TestAuditFilterBuilders(t *testing.T) {
	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	until := since.Add(24 * time.Hour)

	f := NewAuditFilter().
		WithActor("admin-7").
		WithAction(AuditActionAssigned).
		WithEntity(AuditEntityRole).
		WithEntityID("r1").
		WithName("editor").
		WithGuard("web").
		WithTeam("team-1").
		WithPrincipal(NewPrincipalRef("user", "42")).
		WithTimeRange(since, until).
		WithPagination(25, 50)

	assert.Equal(t, "admin-7", f.ActorID)
	assert.Equal(t, string(AuditActionAssigned), f.Action)
	assert.Equal(t, string(AuditEntityRole), f.EntityType)
	assert.Equal(t, "r1", f.EntityID)
	assert.Equal(t, "editor", f.Name)
	assert.Equal(t, "web", f.GuardName)
	assert.Equal(t, "team-1", f.TeamID)
	assert.Equal(t, NewPrincipalRef("user", "42"), f.Principal)
	assert.Equal(t, since, f.Since)
	assert.Equal(t, until, f.Until)
	assert.Equal(t, 25, f.Limit)
	assert.Equal(t, 50, f.Offset)
}

// TestAuditFilterValueSemantics tests that builders do not mutate the base
func TestAuditFilterValueSemantics(t *testing.T) {
	base := NewAuditFilter()
	derived := base.WithActor("admin-7").WithLimit(5)

	assert.Equal(t, "", base.ActorID)
	assert.Equal(t, 100, base.Limit)
	assert.Equal(t, "admin-7", derived.ActorID)
	assert.Equal(t, 5, derived.Limit)
}
