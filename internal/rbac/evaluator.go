package rbac

import (
	"context"
	"log/slog"
	"time"

	"github.com/praxis-hq/praxis/internal/cache"
)

// RoleReader resolves a subject's current role assignment.
type RoleReader interface {
	FindAssignment(ctx context.Context, email string) (Role, bool, error)
}

// Evaluator answers identity-scoped permission checks, memoizing decisions
// so repeated checks do not hit the role store. Decisions are cached per
// (subject, permission) and never cross identities.
type Evaluator struct {
	store     RoleReader
	decisions *cache.Cache[bool]
	ttl       time.Duration
	logger    *slog.Logger
}

// NewEvaluator constructs an Evaluator. A non-positive ttl uses the cache
// default.
func NewEvaluator(store RoleReader, decisions *cache.Cache[bool], ttl time.Duration, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{store: store, decisions: decisions, ttl: ttl, logger: logger}
}

func decisionKey(subject string, perm Permission) string {
	return subject + "|" + string(perm)
}

// RoleFor resolves the subject's current role. A subject with no assignment
// evaluates as RoleNone; store failures also resolve to RoleNone so checks
// fail closed.
func (e *Evaluator) RoleFor(ctx context.Context, subject string) Role {
	role, err := e.resolveRole(ctx, subject)
	if err != nil {
		e.logger.Error("rbac resolve role", slog.String("subject", subject), slog.Any("error", err))
		return RoleNone
	}
	return role
}

func (e *Evaluator) resolveRole(ctx context.Context, subject string) (Role, error) {
	if subject == "" {
		return RoleNone, nil
	}
	role, ok, err := e.store.FindAssignment(ctx, subject)
	if err != nil {
		return RoleNone, err
	}
	if !ok {
		return RoleNone, nil
	}
	return role, nil
}

// Allowed reports whether subject holds perm, consulting the decision cache
// first. An unresolvable subject is role-less and every check returns
// false. A store failure denies without caching the denial.
func (e *Evaluator) Allowed(ctx context.Context, subject string, perm Permission) bool {
	if subject == "" {
		return false
	}
	if e.decisions == nil {
		return HasPermission(e.RoleFor(ctx, subject), perm)
	}
	allowed, err := e.decisions.GetOrSet(ctx, decisionKey(subject, perm), e.ttl, func(ctx context.Context) (bool, error) {
		role, err := e.resolveRole(ctx, subject)
		if err != nil {
			return false, err
		}
		return HasPermission(role, perm), nil
	})
	if err != nil {
		e.logger.Error("rbac permission check", slog.String("subject", subject), slog.Any("error", err))
		return false
	}
	return allowed
}

// AllowedAny reports whether subject holds at least one of perms. An empty
// list is false.
func (e *Evaluator) AllowedAny(ctx context.Context, subject string, perms ...Permission) bool {
	for _, p := range perms {
		if e.Allowed(ctx, subject, p) {
			return true
		}
	}
	return false
}

// AllowedAll reports whether subject holds every element of perms. An empty
// list is vacuously true.
func (e *Evaluator) AllowedAll(ctx context.Context, subject string, perms ...Permission) bool {
	for _, p := range perms {
		if !e.Allowed(ctx, subject, p) {
			return false
		}
	}
	return true
}

// Invalidate drops every cached decision for subject. Role administration
// calls this after any role change so stale grants cannot outlive the
// assignment that produced them.
func (e *Evaluator) Invalidate(subject string) int {
	if e.decisions == nil || subject == "" {
		return 0
	}
	return e.decisions.DeletePrefix(subject + "|")
}
