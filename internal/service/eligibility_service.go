package service

import (
	"strings"
	"time"

	"github.com/dropforge/internal/constants"
	"github.com/dropforge/internal/models"
	"github.com/dropforge/internal/repository"
)

// Identity is who is claiming: email for light flows, wallet address for
// regular flows, device id as the last resort.
type Identity struct {
	Email         string `json:"email"`
	WalletAddress string `json:"wallet_address"`
	DeviceID      string `json:"device_id"`
}

// ClaimKey normalizes the identity into the single column the anti-double-
// claim unique index is built on. Empty means no usable identity.
func (i Identity) ClaimKey() string {
	if email := strings.ToLower(strings.TrimSpace(i.Email)); email != "" {
		return "email:" + email
	}
	if wallet := strings.ToLower(strings.TrimSpace(i.WalletAddress)); wallet != "" {
		return "wallet:" + wallet
	}
	if device := strings.TrimSpace(i.DeviceID); device != "" {
		return "device:" + device
	}
	return ""
}

// Eligibility reasons, reused verbatim as the outward-facing strings.
const (
	ReasonNotFound       = "not found"
	ReasonNotOpenYet     = "not open yet"
	ReasonEnded          = "ended"
	ReasonAlreadyClaimed = "already claimed"
	ReasonSoldOut        = "sold out"
)

// EligibilityResult is the outcome of the rule chain.
type EligibilityResult struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
}

// EligibilityService runs the ordered claim rules.
type EligibilityService struct {
	collectionRepo  repository.CollectionRepository
	collectibleRepo repository.CollectibleRepository
	orderRepo       repository.OrderRepository
}

// NewEligibilityService creates the eligibility service.
func NewEligibilityService(collectionRepo repository.CollectionRepository, collectibleRepo repository.CollectibleRepository, orderRepo repository.OrderRepository) *EligibilityService {
	return &EligibilityService{
		collectionRepo:  collectionRepo,
		collectibleRepo: collectibleRepo,
		orderRepo:       orderRepo,
	}
}

// CheckEligibility evaluates the four rules in order; the first failure wins.
// The returned collectible is non-nil whenever rule 1 passed, so callers can
// reuse the fetch.
func (s *EligibilityService) CheckEligibility(identity Identity, collectibleID uint) (*EligibilityResult, *models.Collectible, error) {
	claimKey := identity.ClaimKey()
	if claimKey == "" || collectibleID == 0 {
		return nil, nil, ErrInvalidInput
	}

	// rule 1: the collectible exists inside a resolvable collection
	collectible, err := s.collectibleRepo.GetByID(collectibleID)
	if err != nil {
		return nil, nil, err
	}
	if collectible == nil || !collectible.IsActive {
		return &EligibilityResult{Eligible: false, Reason: ReasonNotFound}, nil, nil
	}
	collection, err := s.collectionRepo.GetByID(collectible.CollectionID)
	if err != nil {
		return nil, nil, err
	}
	if collection == nil || !collection.IsActive {
		return &EligibilityResult{Eligible: false, Reason: ReasonNotFound}, nil, nil
	}

	// rule 2: now is inside the mint window
	now := time.Now().UTC()
	if collectible.MintStartDate != nil && now.Before(collectible.MintStartDate.UTC()) {
		return &EligibilityResult{Eligible: false, Reason: ReasonNotOpenYet}, collectible, nil
	}
	if collectible.MintEndDate != nil && now.After(collectible.MintEndDate.UTC()) {
		return &EligibilityResult{Eligible: false, Reason: ReasonEnded}, collectible, nil
	}

	// rule 3: no live order for this (identity, collectible) pair
	existing, err := s.orderRepo.FindActiveClaim(collectibleID, claimKey)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return &EligibilityResult{Eligible: false, Reason: ReasonAlreadyClaimed}, collectible, nil
	}

	// rule 4: limited supply not exhausted
	if exhausted(collectible) {
		return &EligibilityResult{Eligible: false, Reason: ReasonSoldOut}, collectible, nil
	}

	return &EligibilityResult{Eligible: true}, collectible, nil
}

// exhausted checks the reservation counter against the supply cap. Failed
// orders release their reservation, so the counter tracks live claims.
func exhausted(collectible *models.Collectible) bool {
	switch collectible.QuantityType {
	case constants.QuantityTypeSingle:
		return collectible.ReservedCount >= 1
	case constants.QuantityTypeLimited:
		return collectible.ReservedCount >= collectible.Quantity
	default:
		return false
	}
}

// eligibilityError maps a failed result onto the matching sentinel.
func eligibilityError(result *EligibilityResult) error {
	switch result.Reason {
	case ReasonNotFound:
		return ErrCollectibleNotFound
	case ReasonNotOpenYet:
		return ErrWindowNotOpen
	case ReasonEnded:
		return ErrWindowEnded
	case ReasonAlreadyClaimed:
		return ErrAlreadyClaimed
	case ReasonSoldOut:
		return ErrSoldOut
	default:
		return ErrInvalidInput
	}
}
