package rbac

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/praxis-hq/praxis/internal/audit"
	"github.com/praxis-hq/praxis/internal/shared"
)

// ErrInvalidRole indicates an assignment target outside the closed role set.
var ErrInvalidRole = errors.New("rbac: invalid role")

// RoleStore persists role assignments.
type RoleStore interface {
	RoleReader
	UpsertAssignment(ctx context.Context, email string, role Role) error
	ClearAssignment(ctx context.Context, email string) error
	ListAssignments(ctx context.Context) ([]Assignment, error)
}

// Service administers role assignments. Every mutation is gated on the
// actor's own permissions, invalidates the subject's cached decisions, and
// is audited whether it succeeds or not.
type Service struct {
	store     RoleStore
	evaluator *Evaluator
	audit     *audit.Logger
	logger    *slog.Logger
}

// NewService constructs a Service.
func NewService(store RoleStore, evaluator *Evaluator, auditLogger *audit.Logger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, evaluator: evaluator, audit: auditLogger, logger: logger}
}

// AssignRole replaces subject's current role with role. The actor must hold
// user:assign_roles, resolved against the actor's own assignment. A store
// failure leaves role state and cache untouched.
func (s *Service) AssignRole(ctx context.Context, actor shared.Identity, subject string, role Role) error {
	subject = normalizeEmail(subject)
	entry := audit.Entry{
		Actor:     actor.Email,
		ActorRole: string(s.evaluator.RoleFor(ctx, actor.Email)),
		Action:    audit.ActionRoleAssign,
		Resource:  auditResource(subject),
		Metadata:  map[string]any{"role": string(role)},
	}

	if err := s.authorize(ctx, actor, entry); err != nil {
		return err
	}
	if !ValidRole(role) {
		err := fmt.Errorf("%w: %q", ErrInvalidRole, role)
		s.audit.LogFailure(ctx, entry, err.Error())
		return err
	}
	if err := s.store.UpsertAssignment(ctx, subject, role); err != nil {
		s.audit.LogFailure(ctx, entry, err.Error())
		return fmt.Errorf("rbac: assign role: %w", err)
	}
	s.evaluator.Invalidate(subject)
	s.audit.LogSuccess(ctx, entry)
	return nil
}

// RemoveRole transitions subject to the no-role state. It shares the
// user:assign_roles gate with AssignRole: role management is a single
// capability.
func (s *Service) RemoveRole(ctx context.Context, actor shared.Identity, subject string) error {
	subject = normalizeEmail(subject)
	entry := audit.Entry{
		Actor:     actor.Email,
		ActorRole: string(s.evaluator.RoleFor(ctx, actor.Email)),
		Action:    audit.ActionRoleRemove,
		Resource:  auditResource(subject),
	}

	if err := s.authorize(ctx, actor, entry); err != nil {
		return err
	}
	if err := s.store.ClearAssignment(ctx, subject); err != nil {
		s.audit.LogFailure(ctx, entry, err.Error())
		return fmt.Errorf("rbac: remove role: %w", err)
	}
	s.evaluator.Invalidate(subject)
	s.audit.LogSuccess(ctx, entry)
	return nil
}

// ListAssignments returns every active assignment ordered by subject. The
// actor needs user:view.
func (s *Service) ListAssignments(ctx context.Context, actor shared.Identity) ([]Assignment, error) {
	if actor.Email == "" {
		return nil, shared.ErrUnauthenticated
	}
	entry := audit.Entry{
		Actor:     actor.Email,
		ActorRole: string(s.evaluator.RoleFor(ctx, actor.Email)),
		Action:    audit.ActionRoleList,
	}
	if !s.evaluator.Allowed(ctx, actor.Email, PermUserView) {
		err := s.deniedError(entry.ActorRole)
		s.audit.LogFailure(ctx, entry, err.Error())
		return nil, err
	}
	assignments, err := s.store.ListAssignments(ctx)
	if err != nil {
		s.audit.LogFailure(ctx, entry, err.Error())
		return nil, fmt.Errorf("rbac: list assignments: %w", err)
	}
	s.audit.LogSuccess(ctx, entry)
	return assignments, nil
}

// authorize enforces the shared role-management gate. Unauthenticated
// actors produce no audit entry; the logger has no identity to attribute.
func (s *Service) authorize(ctx context.Context, actor shared.Identity, entry audit.Entry) error {
	if actor.Email == "" {
		return shared.ErrUnauthenticated
	}
	if !s.evaluator.Allowed(ctx, actor.Email, PermUserAssignRoles) {
		err := s.deniedError(entry.ActorRole)
		s.audit.LogFailure(ctx, entry, err.Error())
		return err
	}
	return nil
}

func (s *Service) deniedError(actorRole string) error {
	if actorRole == "" {
		actorRole = "none"
	}
	return fmt.Errorf("%w: current role %s", shared.ErrPermissionDenied, actorRole)
}

func auditResource(subject string) audit.Resource {
	return audit.Resource{Type: "user", ID: subject}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
