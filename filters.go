package guardkit

import "time"

// AuditFilter provides options for filtering audit log queries.
type AuditFilter struct {
	// Filter by actor who performed the mutation
	ActorID string

	// Filter by action kind ("created", "deleted", "assigned", ...)
	Action string

	// Filter by entity kind ("role", "permission")
	EntityType string

	// Filter by entity id
	EntityID string

	// Filter by record name
	Name string

	// Filter by guard
	GuardName string

	// Filter by team
	TeamID string

	// Filter by principal touched by an edge mutation
	Principal PrincipalRef

	// Filter by time range
	Since time.Time
	Until time.Time

	// Pagination
	Limit  int
	Offset int
}

// NewAuditFilter creates a new AuditFilter with default values.
func NewAuditFilter() AuditFilter {
	return AuditFilter{
		Limit: 100,
	}
}

// WithActor sets the actor id filter.
func (f AuditFilter) WithActor(actorID string) AuditFilter {
	f.ActorID = actorID
	return f
}

// WithAction sets the action filter.
func (f AuditFilter) WithAction(action AuditAction) AuditFilter {
	f.Action = string(action)
	return f
}

// WithEntity sets the entity kind filter.
func (f AuditFilter) WithEntity(entity AuditEntity) AuditFilter {
	f.EntityType = string(entity)
	return f
}

// WithEntityID sets the entity id filter.
func (f AuditFilter) WithEntityID(id string) AuditFilter {
	f.EntityID = id
	return f
}

// WithName sets the record name filter.
func (f AuditFilter) WithName(name string) AuditFilter {
	f.Name = name
	return f
}

// WithGuard sets the guard filter.
func (f AuditFilter) WithGuard(guard string) AuditFilter {
	f.GuardName = guard
	return f
}

// WithTeam sets the team filter.
func (f AuditFilter) WithTeam(teamID string) AuditFilter {
	f.TeamID = teamID
	return f
}

// WithPrincipal sets the principal filter for edge mutations.
func (f AuditFilter) WithPrincipal(ref PrincipalRef) AuditFilter {
	f.Principal = ref
	return f
}

// WithTimeRange sets the time range filter.
func (f AuditFilter) WithTimeRange(since, until time.Time) AuditFilter {
	f.Since = since
	f.Until = until
	return f
}

// WithSince sets the start time filter.
func (f AuditFilter) WithSince(since time.Time) AuditFilter {
	f.Since = since
	return f
}

// WithUntil sets the end time filter.
func (f AuditFilter) WithUntil(until time.Time) AuditFilter {
	f.Until = until
	return f
}

// WithLimit sets the limit for results.
func (f AuditFilter) WithLimit(limit int) AuditFilter {
	f.Limit = limit
	return f
}

// WithOffset sets the offset for pagination.
func (f AuditFilter) WithOffset(offset int) AuditFilter {
	f.Offset = offset
	return f
}

// WithPagination sets both limit and offset.
func (f AuditFilter) WithPagination(limit, offset int) AuditFilter {
	f.Limit = limit
	f.Offset = offset
	return f
}
