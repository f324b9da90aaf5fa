package domain

// UserRole defines the role hierarchy of CRM users.
type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleEmployee UserRole = "employee"
)

// ValidUserRoles is the set of assignable roles.
var ValidUserRoles = map[UserRole]bool{
	RoleAdmin:    true,
	RoleEmployee: true,
}

// DocumentType distinguishes the two variants of a financial document.
type DocumentType string

const (
	DocumentTypeInvoice   DocumentType = "invoice"
	DocumentTypeQuotation DocumentType = "quotation"
)

// ValidDocumentTypes is the set of known document types.
var ValidDocumentTypes = map[DocumentType]bool{
	DocumentTypeInvoice:   true,
	DocumentTypeQuotation: true,
}

// PaymentMethod is how a payment against an invoice was made.
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "Cash"
	PaymentMethodCard         PaymentMethod = "Card"
	PaymentMethodUPI          PaymentMethod = "UPI"
	PaymentMethodBankTransfer PaymentMethod = "Bank Transfer"
	PaymentMethodCheque       PaymentMethod = "Cheque"
	PaymentMethodOther        PaymentMethod = "Other"
)

// ValidPaymentMethods is the set of accepted payment methods.
var ValidPaymentMethods = map[PaymentMethod]bool{
	PaymentMethodCash:         true,
	PaymentMethodCard:         true,
	PaymentMethodUPI:          true,
	PaymentMethodBankTransfer: true,
	PaymentMethodCheque:       true,
	PaymentMethodOther:        true,
}

// AuditAction names a recorded document mutation.
type AuditAction string

const (
	AuditDocumentCreated      AuditAction = "created"
	AuditItemsReplaced        AuditAction = "items_replaced"
	AuditDocumentConverted    AuditAction = "converted"
	AuditPaymentRecorded      AuditAction = "payment_recorded"
	AuditTransactionCorrected AuditAction = "transaction_corrected"
	AuditDocumentDelivered    AuditAction = "delivered"
	AuditDeliveryFailed       AuditAction = "delivery_failed"
)
