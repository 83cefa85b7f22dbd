package guardkit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// AUDIT LOG
// ============================================================================

// AuditAction is the kind of mutation recorded in the audit log.
type AuditAction string

const (
	AuditActionCreated  AuditAction = "created"
	AuditActionRenamed  AuditAction = "renamed"
	AuditActionDeleted  AuditAction = "deleted"
	AuditActionAttached AuditAction = "attached" // permission → role
	AuditActionDetached AuditAction = "detached"
	AuditActionAssigned AuditAction = "assigned" // role → principal
	AuditActionRevoked  AuditAction = "revoked"
)

// AuditEntity is the kind of record a mutation touched.
type AuditEntity string

const (
	AuditEntityRole       AuditEntity = "role"
	AuditEntityPermission AuditEntity = "permission"
)

// AuditLog records every mutation of the role/permission graph for
// compliance and debugging. Writes are best-effort: an audit failure never
// fails the mutation it describes.
type AuditLog struct {
	bun.BaseModel `bun:"table:authz_audit_log,alias:al"`

	ID        string    `bun:"id,pk,type:uuid"`
	Timestamp time.Time `bun:"timestamp,notnull,default:current_timestamp"`

	// Who performed the mutation (from context, may be empty).
	ActorID string `bun:"actor_id"`

	// What happened to which record.
	Action     string  `bun:"action,notnull"`
	EntityType string  `bun:"entity_type,notnull"`
	EntityID   string  `bun:"entity_id"`
	Name       string  `bun:"name"`
	GuardName  string  `bun:"guard_name"`
	TeamID     *string `bun:"team_id"`

	// Edge target, when the mutation was an attach/assign style operation.
	PermissionName string `bun:"permission_name"`
	PrincipalType  string `bun:"principal_type"`
	PrincipalID    string `bun:"principal_id"`

	// Request metadata for forensics.
	IPAddress string `bun:"ip_address"`
	UserAgent string `bun:"user_agent"`
	RequestID string `bun:"request_id"`
}

// auditEntity records an identity mutation (create/rename/delete).
func (s *Service) auditEntity(ctx context.Context, action AuditAction, entity AuditEntity, id, name, guard string, teamID *string) {
	ac := GetAuditContext(ctx)
	s.writeAudit(ctx, &AuditLog{
		ID:         uuid.NewString(),
		Timestamp:  time.Now(),
		ActorID:    ac.ActorID,
		Action:     string(action),
		EntityType: string(entity),
		EntityID:   id,
		Name:       name,
		GuardName:  guard,
		TeamID:     teamID,
		IPAddress:  ac.IPAddress,
		UserAgent:  ac.UserAgent,
		RequestID:  ac.RequestID,
	})
}

// auditEdge records a graph mutation (attach/detach/assign/revoke).
func (s *Service) auditEdge(ctx context.Context, action AuditAction, role *Role, permissionName string, ref PrincipalRef) {
	ac := GetAuditContext(ctx)
	s.writeAudit(ctx, &AuditLog{
		ID:             uuid.NewString(),
		Timestamp:      time.Now(),
		ActorID:        ac.ActorID,
		Action:         string(action),
		EntityType:     string(AuditEntityRole),
		EntityID:       role.ID,
		Name:           role.Name,
		GuardName:      role.GuardName,
		TeamID:         role.TeamID,
		PermissionName: permissionName,
		PrincipalType:  ref.Type,
		PrincipalID:    ref.ID,
		IPAddress:      ac.IPAddress,
		UserAgent:      ac.UserAgent,
		RequestID:      ac.RequestID,
	})
}

func (s *Service) writeAudit(ctx context.Context, entry *AuditLog) {
	_, err := s.db.NewInsert().Model(entry).Exec(ctx)
	if err = dbkit.WithErr1(err, "WriteAudit").Err(); err != nil {
		s.logger.Error("audit write failed", "action", entry.Action, "error", err)
	}
}

// GetAuditLog retrieves audit log entries with optional filters, newest
// first.
func (s *Service) GetAuditLog(ctx context.Context, filter AuditFilter) ([]AuditLog, error) {
	var logs []AuditLog
	q := s.db.NewSelect().Model(&logs)
	if filter.ActorID != "" {
		q = q.Where("actor_id = ?", filter.ActorID)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if filter.EntityType != "" {
		q = q.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != "" {
		q = q.Where("entity_id = ?", filter.EntityID)
	}
	if filter.Name != "" {
		q = q.Where("name = ?", filter.Name)
	}
	if filter.GuardName != "" {
		q = q.Where("guard_name = ?", filter.GuardName)
	}
	if filter.TeamID != "" {
		q = q.Where("team_id = ?", filter.TeamID)
	}
	if !filter.Principal.IsZero() {
		q = q.Where("principal_type = ?", filter.Principal.Type).
			Where("principal_id = ?", filter.Principal.ID)
	}
	if !filter.Since.IsZero() {
		q = q.Where("timestamp >= ?", filter.Since)
	}
	if !filter.Until.IsZero() {
		q = q.Where("timestamp <= ?", filter.Until)
	}

	limit := filter.Limit
	if limit == 0 {
		limit = 100 // Default limit
	}
	q = q.Limit(limit)

	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	q = q.Order("timestamp DESC")
	if err := dbkit.WithErr1(q.Scan(ctx), "GetAuditLog").Err(); err != nil {
		return nil, err
	}

	return logs, nil
}
