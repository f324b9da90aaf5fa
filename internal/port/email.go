package port

import "context"

// DocumentEmail is a rendered document ready for delivery.
type DocumentEmail struct {
	ToEmail      string
	ToName       string
	DocumentType string
	DocumentCode string
	DownloadURL  string
}

// EmailSender defines the contract for delivering documents by email.
type EmailSender interface {
	SendDocumentEmail(ctx context.Context, msg DocumentEmail) error
}
