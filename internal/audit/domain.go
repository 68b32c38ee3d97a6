// Package audit records every security-relevant action attempt into an
// append-only trail, independent of whether the action itself succeeded.
package audit

import "time"

// Action identifies a guarded operation. The taxonomy is closed; handlers
// never invent action strings at runtime.
type Action string

const (
	ActionRoleAssign     Action = "role.assign"
	ActionRoleRemove     Action = "role.remove"
	ActionRoleList       Action = "role.list"
	ActionLogin          Action = "auth.login"
	ActionLogout         Action = "auth.logout"
	ActionDocumentUpload Action = "document.upload"
	ActionDocumentView   Action = "document.view"
	ActionReportExport   Action = "report.export"
)

// Outcome distinguishes completed actions from failed or denied ones.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Severity classifies an entry for triage.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Resource names the target of an action. All fields are optional.
type Resource struct {
	Type string `json:"type,omitempty"`
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// Entry is one immutable audit record. ID makes delivery idempotent: the
// store ignores a second append with the same ID.
type Entry struct {
	ID        string         `json:"id"`
	At        time.Time      `json:"at"`
	Actor     string         `json:"actor"`
	ActorRole string         `json:"actor_role,omitempty"`
	Action    Action         `json:"action"`
	Outcome   Outcome        `json:"outcome"`
	Reason    string         `json:"reason,omitempty"`
	Severity  Severity       `json:"severity"`
	Resource  Resource       `json:"resource,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}
