package audit

import (
	"time"

	"mintgate/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance.
	// These require tamper-proof storage and long retention.
	// Examples: issuance, redemption, blacklist changes, seizures.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring.
	// Examples: rejected transfers, role changes, authority transfers.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for operational visibility.
	// These can be sampled or aggregated with shorter retention.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	// Asset is the instrument the event concerns.
	Asset domain.AssetID
	// Actor is the verified identity that performed the action.
	Actor domain.Identity
	// Subject identifies what was acted on: an identity, an account, a role set.
	Subject string
	Action  string
	// Decision records accept/reject for gate-style events.
	Decision string
	Reason   string
	// Amount is set for value-moving events (issue, redeem, seize).
	Amount uint64
	// RequestID is the correlation id from the HTTP request context.
	RequestID string
}

// AuditEvent names every action this control plane records.
type AuditEvent string

const (
	// Instrument events
	EventInstrumentInitialized AuditEvent = "instrument_initialized"
	EventInstrumentPaused      AuditEvent = "instrument_paused"
	EventInstrumentUnpaused    AuditEvent = "instrument_unpaused"
	EventRolesUpdated          AuditEvent = "roles_updated"
	EventAuthorityTransferred  AuditEvent = "authority_transferred"
	EventAccountFrozen         AuditEvent = "account_frozen"
	EventAccountThawed         AuditEvent = "account_thawed"
	EventTokensSeized          AuditEvent = "tokens_seized"

	// Issuance events
	EventMinterGranted      AuditEvent = "minter_granted"
	EventMinterQuotaUpdated AuditEvent = "minter_quota_updated"
	EventMinterRevoked      AuditEvent = "minter_revoked"
	EventTokensIssued       AuditEvent = "tokens_issued"
	EventTokensRedeemed     AuditEvent = "tokens_redeemed"

	// Compliance-list events
	EventBlacklistAdded   AuditEvent = "blacklist_added"
	EventBlacklistRemoved AuditEvent = "blacklist_removed"

	// Transfer-validation events
	EventTransferRejected AuditEvent = "transfer_rejected"

	// Hook admin events
	EventHookInitialized      AuditEvent = "hook_initialized"
	EventHookPaused           AuditEvent = "hook_paused"
	EventHookUnpaused         AuditEvent = "hook_unpaused"
	EventHookAuthorityUpdated AuditEvent = "hook_authority_updated"
)

// eventCategories maps each audit event to its category.
// Compliance: legal/regulatory significance, long retention required.
// Security: security monitoring, SIEM integration, alerting.
// Operations: operational visibility, can be sampled.
var eventCategories = map[AuditEvent]EventCategory{
	EventInstrumentInitialized: CategoryCompliance,
	EventTokensIssued:          CategoryCompliance,
	EventTokensRedeemed:        CategoryCompliance,
	EventTokensSeized:          CategoryCompliance,
	EventBlacklistAdded:        CategoryCompliance,
	EventBlacklistRemoved:      CategoryCompliance,
	EventMinterGranted:         CategoryCompliance,
	EventMinterQuotaUpdated:    CategoryCompliance,
	EventMinterRevoked:         CategoryCompliance,

	EventRolesUpdated:         CategorySecurity,
	EventAuthorityTransferred: CategorySecurity,
	EventAccountFrozen:        CategorySecurity,
	EventAccountThawed:        CategorySecurity,
	EventTransferRejected:     CategorySecurity,
	EventHookAuthorityUpdated: CategorySecurity,

	EventInstrumentPaused:   CategoryOperations,
	EventInstrumentUnpaused: CategoryOperations,
	EventHookInitialized:    CategoryOperations,
	EventHookPaused:         CategoryOperations,
	EventHookUnpaused:       CategoryOperations,
}

// Category returns the routing category for the event, defaulting to
// operations for unknown actions.
func (e AuditEvent) Category() EventCategory {
	if c, ok := eventCategories[e]; ok {
		return c
	}
	return CategoryOperations
}

// String returns the event name.
func (e AuditEvent) String() string {
	return string(e)
}
