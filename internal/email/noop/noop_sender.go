package noop

import (
	"context"

	"github.com/rs/zerolog/log"

	"crmcore/internal/port"
)

type noopSender struct{}

// NewNoopSender creates an EmailSender that only logs the download link.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendDocumentEmail(_ context.Context, msg port.DocumentEmail) error {
	log.Info().
		Str("to", msg.ToEmail).
		Str("code", msg.DocumentCode).
		Str("url", msg.DownloadURL).
		Msg("noop email: document delivery")
	return nil
}
