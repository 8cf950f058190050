package audit

import (
	"time"
)

// EventCategory classifies audit events by their primary purpose so sinks
// can route and retain them differently.
type EventCategory string

const (
	// CategoryFinancial covers money movement: settlements, price changes
	// and the KYC checks that gate payouts.
	CategoryFinancial EventCategory = "financial"

	// CategoryAccess covers staff accounts, permission grants and customer
	// account status.
	CategoryAccess EventCategory = "access"

	// CategoryModeration covers product review decisions.
	CategoryModeration EventCategory = "moderation"
)

// SubjectType names the kind of entity an event is about.
type SubjectType string

const (
	SubjectProduct  SubjectType = "product"
	SubjectPayment  SubjectType = "payment"
	SubjectStaff    SubjectType = "staff"
	SubjectCustomer SubjectType = "customer"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category    EventCategory `json:"category"`
	Timestamp   time.Time     `json:"timestamp"`
	SubjectType SubjectType   `json:"subject_type"`
	SubjectID   string        `json:"subject_id"`
	Action      string        `json:"action"`
	Reason      string        `json:"reason,omitempty"`
	Detail      string        `json:"detail,omitempty"`
	RequestID   string        `json:"request_id,omitempty"`
	// ActorName is the admin display name that triggered the action; empty
	// for transitions driven by timers such as settlement completion.
	ActorName string `json:"actor_name,omitempty"`
}

type AuditEvent string

const (
	// Product moderation
	EventProductApproved AuditEvent = "product_approved"
	EventProductRejected AuditEvent = "product_rejected"
	EventProductReopened AuditEvent = "product_reopened"
	EventProductDeleted  AuditEvent = "product_deleted"

	// Negotiation
	EventNegotiationProposed AuditEvent = "negotiation_proposed"

	// Settlement
	EventPaymentProcessing   AuditEvent = "payment_processing"
	EventPaymentCompleted    AuditEvent = "payment_completed"
	EventPaymentFailed       AuditEvent = "payment_failed"
	EventVerificationUpdated AuditEvent = "verification_updated"

	// Staff
	EventStaffCreated        AuditEvent = "staff_created"
	EventStaffUpdated        AuditEvent = "staff_updated"
	EventStaffActivated      AuditEvent = "staff_activated"
	EventStaffDeactivated    AuditEvent = "staff_deactivated"
	EventStaffRemoved        AuditEvent = "staff_removed"
	EventPermissionsReplaced AuditEvent = "permissions_replaced"

	// Customers
	EventCustomerActivated   AuditEvent = "customer_activated"
	EventCustomerSuspended   AuditEvent = "customer_suspended"
	EventCustomerBanned      AuditEvent = "customer_banned"
	EventKYCDocumentVerified AuditEvent = "kyc_document_verified"
	EventKYCDocumentRejected AuditEvent = "kyc_document_rejected"
	EventCustomerRiskChanged AuditEvent = "customer_risk_changed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventProductApproved: CategoryModeration,
	EventProductRejected: CategoryModeration,
	EventProductReopened: CategoryModeration,
	EventProductDeleted:  CategoryModeration,

	EventNegotiationProposed: CategoryFinancial,
	EventPaymentProcessing:   CategoryFinancial,
	EventPaymentCompleted:    CategoryFinancial,
	EventPaymentFailed:       CategoryFinancial,
	EventVerificationUpdated: CategoryFinancial,

	EventStaffCreated:        CategoryAccess,
	EventStaffUpdated:        CategoryAccess,
	EventStaffActivated:      CategoryAccess,
	EventStaffDeactivated:    CategoryAccess,
	EventStaffRemoved:        CategoryAccess,
	EventPermissionsReplaced: CategoryAccess,

	EventCustomerActivated:   CategoryAccess,
	EventCustomerSuspended:   CategoryAccess,
	EventCustomerBanned:      CategoryAccess,
	EventKYCDocumentVerified: CategoryFinancial,
	EventKYCDocumentRejected: CategoryFinancial,
	EventCustomerRiskChanged: CategoryFinancial,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryModeration.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryModeration
}

// New builds an Event for action with its category filled in.
func New(action AuditEvent, subjectType SubjectType, subjectID string) Event {
	return Event{
		Category:    action.Category(),
		SubjectType: subjectType,
		SubjectID:   subjectID,
		Action:      string(action),
	}
}
