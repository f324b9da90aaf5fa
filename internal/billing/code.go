package billing

import (
	"fmt"

	"crmcore/internal/domain"
)

// CodeFormat maps document types to their human-readable code prefixes.
type CodeFormat struct {
	InvoicePrefix   string
	QuotationPrefix string
	Width           int
}

// DefaultCodeFormat produces IN001 / QT001 style codes.
var DefaultCodeFormat = CodeFormat{InvoicePrefix: "IN", QuotationPrefix: "QT", Width: 3}

// Format renders a sequence number as a document code, e.g. IN007.
func (f CodeFormat) Format(docType domain.DocumentType, seq int64) string {
	prefix := f.InvoicePrefix
	if docType == domain.DocumentTypeQuotation {
		prefix = f.QuotationPrefix
	}
	width := f.Width
	if width <= 0 {
		width = 1
	}
	return fmt.Sprintf("%s%0*d", prefix, width, seq)
}
