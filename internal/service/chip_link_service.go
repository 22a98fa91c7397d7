package service

import (
	"strings"

	"github.com/dropforge/internal/models"
	"github.com/dropforge/internal/repository"
)

// ChipLinkService manages NFC tag bindings. The scheduler repoints active
// links each occurrence; this service covers the admin side.
type ChipLinkService struct {
	chipRepo        repository.ChipLinkRepository
	collectionRepo  repository.CollectionRepository
	collectibleRepo repository.CollectibleRepository
	batchRepo       repository.BatchListingRepository
}

// NewChipLinkService creates the chip link service.
func NewChipLinkService(
	chipRepo repository.ChipLinkRepository,
	collectionRepo repository.CollectionRepository,
	collectibleRepo repository.CollectibleRepository,
	batchRepo repository.BatchListingRepository,
) *ChipLinkService {
	return &ChipLinkService{
		chipRepo:        chipRepo,
		collectionRepo:  collectionRepo,
		collectibleRepo: collectibleRepo,
		batchRepo:       batchRepo,
	}
}

// ChipLinkCreateInput is the create payload. A link follows either a batch
// listing (repointed every occurrence) or one fixed collectible.
type ChipLinkCreateInput struct {
	TagUID         string `json:"tag_uid" binding:"required"`
	CollectionID   uint   `json:"collection_id" binding:"required"`
	BatchListingID *uint  `json:"batch_listing_id"`
	CollectibleID  *uint  `json:"collectible_id"`
	IsActive       *bool  `json:"is_active"`
}

// Create binds a tag.
func (s *ChipLinkService) Create(input ChipLinkCreateInput) (*models.ChipLink, error) {
	tagUID := strings.TrimSpace(input.TagUID)
	if tagUID == "" || input.CollectionID == 0 {
		return nil, ErrInvalidInput
	}
	existing, err := s.chipRepo.GetByTagUID(tagUID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrChipTagExists
	}
	collection, err := s.collectionRepo.GetByID(input.CollectionID)
	if err != nil {
		return nil, err
	}
	if collection == nil {
		return nil, ErrCollectionNotFound
	}
	if input.BatchListingID != nil {
		listing, err := s.batchRepo.GetByID(*input.BatchListingID)
		if err != nil {
			return nil, err
		}
		if listing == nil {
			return nil, ErrBatchListingNotFound
		}
	}
	if input.CollectibleID != nil {
		collectible, err := s.collectibleRepo.GetByID(*input.CollectibleID)
		if err != nil {
			return nil, err
		}
		if collectible == nil {
			return nil, ErrCollectibleNotFound
		}
	}

	link := &models.ChipLink{
		TagUID:         tagUID,
		CollectionID:   input.CollectionID,
		BatchListingID: input.BatchListingID,
		CollectibleID:  input.CollectibleID,
		IsActive:       true,
	}
	if input.IsActive != nil {
		link.IsActive = *input.IsActive
	}
	if err := s.chipRepo.Create(link); err != nil {
		return nil, err
	}
	return link, nil
}

// Get fetches one link.
func (s *ChipLinkService) Get(id uint) (*models.ChipLink, error) {
	link, err := s.chipRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, ErrChipLinkNotFound
	}
	return link, nil
}

// List returns links matching the filter.
func (s *ChipLinkService) List(filter repository.ChipLinkListFilter) ([]models.ChipLink, int64, error) {
	return s.chipRepo.List(filter)
}

// ResolveTag maps a scanned tag to its current collectible. A disconnected or
// inactive tag still resolves to its collection.
func (s *ChipLinkService) ResolveTag(tagUID string) (*models.ChipLink, error) {
	link, err := s.chipRepo.GetByTagUID(strings.TrimSpace(tagUID))
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, ErrChipLinkNotFound
	}
	return link, nil
}

// Disconnect detaches a link from its collectible and batch listing. The
// collection binding stays so the tag keeps landing somewhere.
func (s *ChipLinkService) Disconnect(id uint) (*models.ChipLink, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}
	if err := s.chipRepo.Disconnect(id); err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Delete soft-deletes a link.
func (s *ChipLinkService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.chipRepo.Delete(id)
}
