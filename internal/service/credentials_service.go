package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/aula-admin-api/internal/models"
	"github.com/noah-isme/aula-admin-api/internal/repository"
	appErrors "github.com/noah-isme/aula-admin-api/pkg/errors"
	"github.com/noah-isme/aula-admin-api/pkg/export"
)

// CredentialsService is the pending-credentials desk: the admin view
// over accounts that still carry a system-generated password.
type CredentialsService struct {
	uow    repository.UnitOfWork
	pdf    *export.CredentialsPDF
	logger *zap.Logger
}

// NewCredentialsService constructs a CredentialsService.
func NewCredentialsService(uow repository.UnitOfWork, logger *zap.Logger) *CredentialsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CredentialsService{uow: uow, pdf: export.NewCredentialsPDF(), logger: logger}
}

// ListPending returns every account awaiting its first login.
func (s *CredentialsService) ListPending(ctx context.Context) ([]models.TemporaryCredential, error) {
	pending, err := s.uow.View().Identities().ListTemporaryCredentials(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending credentials")
	}
	return pending, nil
}

// ExportPDF renders the pending credentials as a printable hand-out
// sheet.
func (s *CredentialsService) ExportPDF(ctx context.Context) ([]byte, error) {
	pending, err := s.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no pending credentials to export")
	}
	entries := make([]export.CredentialEntry, 0, len(pending))
	for _, credential := range pending {
		entries = append(entries, export.CredentialEntry{
			FullName:          credential.FullName,
			Kind:              credential.Kind,
			Username:          credential.Username,
			TemporaryPassword: credential.TemporaryPassword,
		})
	}
	raw, err := s.pdf.Render("Credenciales temporales", entries)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render credentials sheet")
	}
	s.logger.Info("credentials sheet exported", zap.Int("entries", len(entries)))
	return raw, nil
}
