package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"datadog_lighthouse/internal/apperrors"
	"datadog_lighthouse/internal/logger"
	"datadog_lighthouse/internal/models"
	"datadog_lighthouse/internal/repository"
)

var (
	// ErrNotProvisioning is returned when credentials are submitted outside provisioning mode.
	ErrNotProvisioning = errors.New("device is not in provisioning mode")

	errEmptyNetworkID   = errors.New("network_id is required")
	errNetworkIDTooLong = fmt.Errorf("network_id exceeds %d bytes", models.MaxNetworkIDBytes)
	errSecretTooLong    = fmt.Errorf("secret exceeds %d bytes", models.MaxSecretBytes)
)

type ProvisioningService struct {
	creds     repository.CredentialStore
	eventRepo repository.EventRepo
	conn      Connectivity
	log       *logger.Logger
	now       func() time.Time
}

func NewProvisioningService(creds repository.CredentialStore, eventRepo repository.EventRepo, conn Connectivity, log *logger.Logger) *ProvisioningService {
	return &ProvisioningService{
		creds:     creds,
		eventRepo: eventRepo,
		conn:      conn,
		log:       log.Component("provisioning"),
		now:       time.Now,
	}
}

// ValidateCredentials rejects a record the device could never use.
// An empty secret is valid (open network).
func ValidateCredentials(c models.Credentials) error {
	switch {
	case c.NetworkID == "":
		return apperrors.Config("validate credentials", errEmptyNetworkID)
	case len(c.NetworkID) > models.MaxNetworkIDBytes:
		return apperrors.Config("validate credentials", errNetworkIDTooLong)
	case len(c.Secret) > models.MaxSecretBytes:
		return apperrors.Config("validate credentials", errSecretTooLong)
	}
	return nil
}

// Submit validates and stores c, then wakes the state machine.
// Invalid input never touches the store.
func (s *ProvisioningService) Submit(ctx context.Context, c models.Credentials) error {
	if err := ValidateCredentials(c); err != nil {
		s.log.Infow("provisioning_rejected", "error", err)
		return err
	}
	if s.conn != nil && s.conn.Snapshot().Phase != models.PhaseProvisioning {
		return ErrNotProvisioning
	}
	if err := s.creds.Save(ctx, c); err != nil {
		s.log.Errorw("credentials_save_failed", "error", err)
		return apperrors.Store("save credentials", err)
	}

	s.log.Infow("provisioned", "network_id", c.NetworkID, "open_network", c.Secret == "")
	appendEvent(ctx, s.eventRepo, s.log, s.now(), models.EventProvisioned,
		fmt.Sprintf("Credentials for %q saved", c.NetworkID),
		map[string]any{"network_id": c.NetworkID, "open_network": c.Secret == ""})

	if s.conn != nil {
		s.conn.NotifyCredentials()
	}
	return nil
}
