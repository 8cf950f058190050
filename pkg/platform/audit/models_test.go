package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategory(t *testing.T) {
	tests := []struct {
		event AuditEvent
		want  EventCategory
	}{
		{EventProductRejected, CategoryModeration},
		{EventNegotiationProposed, CategoryFinancial},
		{EventVerificationUpdated, CategoryFinancial},
		{EventPermissionsReplaced, CategoryAccess},
		{EventCustomerBanned, CategoryAccess},
		{EventKYCDocumentRejected, CategoryFinancial},
		{AuditEvent("bulk_status_applied"), CategoryModeration},
	}
	for _, tt := range tests {
		t.Run(string(tt.event), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.Category())
		})
	}
}

func TestNew(t *testing.T) {
	e := New(EventCustomerSuspended, SubjectCustomer, "c-1")

	assert.Equal(t, CategoryAccess, e.Category)
	assert.Equal(t, SubjectCustomer, e.SubjectType)
	assert.Equal(t, "c-1", e.SubjectID)
	assert.Equal(t, string(EventCustomerSuspended), e.Action)
}
