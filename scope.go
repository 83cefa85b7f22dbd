package guardkit

import (
	"context"

	"github.com/uptrace/bun"
)

// teamScope builds the tenant predicates for scoped lookups and the team
// default for creation. It is stateless: the current team id always comes
// from the caller's context, never from the resolver itself, so concurrent
// requests for different tenants cannot bleed into each other.
type teamScope struct {
	cfg Config
}

func newTeamScope(cfg Config) teamScope {
	return teamScope{cfg: cfg}
}

// enabled reports whether multi-tenancy is on.
func (ts teamScope) enabled() bool {
	return ts.cfg.Teams
}

// currentTeam returns the team id for this request, or nil when teams are
// disabled or no team is set.
func (ts teamScope) currentTeam(ctx context.Context) *string {
	if !ts.cfg.Teams {
		return nil
	}
	if tid := TeamIDFromContext(ctx); tid != "" {
		return &tid
	}
	return nil
}

// defaultTeam picks the team id stamped on a new record: an explicit team
// wins, otherwise the context team when teams are enabled.
func (ts teamScope) defaultTeam(ctx context.Context, explicit *string) *string {
	if explicit != nil {
		if *explicit == "" {
			return nil // explicit request for a global record
		}
		return explicit
	}
	return ts.currentTeam(ctx)
}

// apply adds the NULL-or-match tenant predicate to a select over a table
// with the given alias. Global records (NULL team id) are visible under
// every team context; with no current team only global records match.
func (ts teamScope) apply(ctx context.Context, q *bun.SelectQuery, alias string) *bun.SelectQuery {
	if !ts.cfg.Teams {
		return q
	}
	col := bun.Safe(alias + "." + ts.cfg.teamsColumn())
	if tid := ts.currentTeam(ctx); tid != nil {
		return q.Where("(? IS NULL OR ? = ?)", col, col, *tid)
	}
	return q.Where("? IS NULL", col)
}
