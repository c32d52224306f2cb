package service

import (
	"context"
	"log"
	"time"

	"focusai-rest-api/internal/model"
	"focusai-rest-api/internal/repository"
)

// PremiumService answers whether a user currently holds paid entitlement.
// Entitlement is a soft optimization gate: any failure to resolve it
// downgrades the caller to the free tier instead of failing the request.
type PremiumService struct {
	repo repository.PremiumRepository
	now  func() time.Time
}

// NewPremiumService creates a premium service. repo may be nil when the
// entitlement database is unavailable at boot; everyone is then free tier.
func NewPremiumService(repo repository.PremiumRepository) *PremiumService {
	return &PremiumService{repo: repo, now: time.Now}
}

// IsPremium reports whether the user holds an unexpired entitlement.
func (s *PremiumService) IsPremium(ctx context.Context, userID string) bool {
	if s == nil || s.repo == nil || userID == "" || userID == "anonymous" {
		return false
	}

	expiry, err := s.repo.GetPremiumExpiry(ctx, userID)
	if err != nil {
		log.Printf("[PremiumService] Warning: entitlement lookup failed for %s, assuming free tier: %v", userID, err)
		return false
	}
	return expiry != nil && expiry.After(s.now())
}

// Status returns the full entitlement view for the profile endpoint.
func (s *PremiumService) Status(ctx context.Context, userID string) model.PremiumStatus {
	status := model.PremiumStatus{UserID: userID}
	if s == nil || s.repo == nil || userID == "" {
		return status
	}

	expiry, err := s.repo.GetPremiumExpiry(ctx, userID)
	if err != nil {
		log.Printf("[PremiumService] Warning: entitlement lookup failed for %s: %v", userID, err)
		return status
	}
	status.ExpiresAt = expiry
	return status
}
