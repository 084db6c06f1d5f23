package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/AnshRaj112/therapeutes-vaud/internal/models"
	"github.com/AnshRaj112/therapeutes-vaud/internal/repository"
)

// VerificationService applies admin decisions on therapist registrations.
type VerificationService struct {
	store    *repository.Store
	sessions *SessionStore
	cache    *Cache
}

func NewVerificationService(store *repository.Store, sessions *SessionStore, cache *Cache) *VerificationService {
	return &VerificationService{store: store, sessions: sessions, cache: cache}
}

func (s *VerificationService) Approve(ctx context.Context, id uuid.UUID) (models.VerificationStatus, error) {
	return s.Apply(ctx, id, models.ActionApprove)
}

// Reject unpublishes the account and ends all of its sessions.
func (s *VerificationService) Reject(ctx context.Context, id uuid.UUID) (models.VerificationStatus, error) {
	return s.Apply(ctx, id, models.ActionReject)
}

// Apply runs one state machine step and returns the new status.
func (s *VerificationService) Apply(ctx context.Context, id uuid.UUID, action models.Action) (models.VerificationStatus, error) {
	status, err := s.store.ApplyVerification(ctx, id, action)
	if err != nil {
		return "", err
	}

	if status == models.StatusRejected {
		if err := s.sessions.InvalidateAccount(ctx, id); err != nil {
			return "", fmt.Errorf("invalidate sessions: %w", err)
		}
	}
	invalidateDirectory(ctx, s.cache)

	log.WithFields(log.Fields{
		"account": id,
		"action":  action,
		"status":  status,
	}).Info("verification applied")
	return status, nil
}
