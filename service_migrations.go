package guardkit

import (
	"github.com/fernandezvara/dbkit"
)

// MigrationService provides migration management as an extension to
// Service.
type MigrationService struct {
	*Service
}

// NewMigrationService creates a new migration service extension.
func NewMigrationService(service *Service) *MigrationService {
	return &MigrationService{Service: service}
}

// Migrations returns all database migrations required for GuardKit.
// Use dbkit.Migrate(ctx, service.Migrations()) to run migrations.
//
// The unique indexes are load-bearing: they arbitrate concurrent creation
// races for (name, guard, team) identity and keep the assignment graphs
// free of duplicate edges. COALESCE folds NULL team ids into the index so
// two global roles of the same name cannot coexist.
func (s *Service) Migrations() []dbkit.Migration {
	return []dbkit.Migration{
		{
			ID:          "guardkit-001",
			Description: "Create roles table",
			SQL: `
                CREATE TABLE IF NOT EXISTS roles (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    name TEXT NOT NULL,
                    guard_name TEXT NOT NULL,
                    team_id TEXT,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                );
                CREATE UNIQUE INDEX IF NOT EXISTS roles_name_guard_team_uq
                    ON roles (name, guard_name, COALESCE(team_id, ''))`,
		},
		{
			ID:          "guardkit-002",
			Description: "Create permissions table",
			SQL: `
                CREATE TABLE IF NOT EXISTS permissions (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    name TEXT NOT NULL,
                    guard_name TEXT NOT NULL,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                );
                CREATE UNIQUE INDEX IF NOT EXISTS permissions_name_guard_uq
                    ON permissions (name, guard_name)`,
		},
		{
			ID:          "guardkit-003",
			Description: "Create role_has_permissions table",
			SQL: `
                CREATE TABLE IF NOT EXISTS role_has_permissions (
                    role_id UUID NOT NULL,
                    permission_id UUID NOT NULL,
                    PRIMARY KEY (role_id, permission_id)
                )`,
		},
		{
			ID:          "guardkit-004",
			Description: "Create principal_roles table",
			SQL: `
                CREATE TABLE IF NOT EXISTS principal_roles (
                    principal_type TEXT NOT NULL,
                    principal_id TEXT NOT NULL,
                    role_id UUID NOT NULL,
                    team_id TEXT,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                );
                CREATE UNIQUE INDEX IF NOT EXISTS principal_roles_uq
                    ON principal_roles (principal_type, principal_id, role_id, COALESCE(team_id, ''));
                CREATE INDEX IF NOT EXISTS principal_roles_principal_idx
                    ON principal_roles (principal_type, principal_id)`,
		},
		{
			ID:          "guardkit-005",
			Description: "Create authz_audit_log table",
			SQL: `
                CREATE TABLE IF NOT EXISTS authz_audit_log (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    timestamp TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    actor_id TEXT,
                    action TEXT NOT NULL,
                    entity_type TEXT NOT NULL,
                    entity_id TEXT,
                    name TEXT,
                    guard_name TEXT,
                    team_id TEXT,
                    permission_name TEXT,
                    principal_type TEXT,
                    principal_id TEXT,
                    ip_address TEXT,
                    user_agent TEXT,
                    request_id TEXT
                );
                CREATE INDEX IF NOT EXISTS authz_audit_log_timestamp_idx
                    ON authz_audit_log (timestamp)`,
		},
	}
}
