package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"crmcore/internal/domain"
)

// Audit actions are persisted in document_audit_log.action and read by API clients.
func TestAuditActionValues(t *testing.T) {
	tests := []struct {
		action domain.AuditAction
		want   string
	}{
		{domain.AuditDocumentCreated, "created"},
		{domain.AuditItemsReplaced, "items_replaced"},
		{domain.AuditDocumentConverted, "converted"},
		{domain.AuditPaymentRecorded, "payment_recorded"},
		{domain.AuditTransactionCorrected, "transaction_corrected"},
		{domain.AuditDocumentDelivered, "delivered"},
		{domain.AuditDeliveryFailed, "delivery_failed"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, string(tt.action))
		})
	}
}
