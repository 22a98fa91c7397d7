package service

import (
	"strings"

	"github.com/dropforge/internal/models"
	"github.com/dropforge/internal/repository"
)

// CollectionService manages artist collections.
type CollectionService struct {
	collectionRepo repository.CollectionRepository
}

// NewCollectionService creates the collection service.
func NewCollectionService(collectionRepo repository.CollectionRepository) *CollectionService {
	return &CollectionService{collectionRepo: collectionRepo}
}

// CollectionCreateInput is the create payload.
type CollectionCreateInput struct {
	Slug        string `json:"slug" binding:"required"`
	ArtistName  string `json:"artist_name" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	SortOrder   int    `json:"sort_order"`
	IsActive    *bool  `json:"is_active"`
}

// CollectionUpdateInput is the partial update payload.
type CollectionUpdateInput struct {
	ArtistName  *string `json:"artist_name"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	SortOrder   *int    `json:"sort_order"`
	IsActive    *bool   `json:"is_active"`
}

// Create inserts a collection. Slugs are unique.
func (s *CollectionService) Create(input CollectionCreateInput) (*models.Collection, error) {
	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	if slug == "" || strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.ArtistName) == "" {
		return nil, ErrInvalidInput
	}
	existing, err := s.collectionRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrCollectionSlugExists
	}

	collection := &models.Collection{
		Slug:        slug,
		ArtistName:  strings.TrimSpace(input.ArtistName),
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		ImageURL:    strings.TrimSpace(input.ImageURL),
		SortOrder:   input.SortOrder,
		IsActive:    true,
	}
	if input.IsActive != nil {
		collection.IsActive = *input.IsActive
	}
	if err := s.collectionRepo.Create(collection); err != nil {
		return nil, err
	}
	return collection, nil
}

// Get fetches one collection.
func (s *CollectionService) Get(id uint) (*models.Collection, error) {
	collection, err := s.collectionRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if collection == nil {
		return nil, ErrCollectionNotFound
	}
	return collection, nil
}

// GetBySlug fetches one collection by its handle.
func (s *CollectionService) GetBySlug(slug string) (*models.Collection, error) {
	collection, err := s.collectionRepo.GetBySlug(strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return nil, err
	}
	if collection == nil {
		return nil, ErrCollectionNotFound
	}
	return collection, nil
}

// List returns collections matching the filter.
func (s *CollectionService) List(filter repository.CollectionListFilter) ([]models.Collection, int64, error) {
	return s.collectionRepo.List(filter)
}

// Update applies a partial update.
func (s *CollectionService) Update(id uint, input CollectionUpdateInput) (*models.Collection, error) {
	collection, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if input.ArtistName != nil {
		collection.ArtistName = strings.TrimSpace(*input.ArtistName)
	}
	if input.Title != nil {
		collection.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		collection.Description = *input.Description
	}
	if input.ImageURL != nil {
		collection.ImageURL = strings.TrimSpace(*input.ImageURL)
	}
	if input.SortOrder != nil {
		collection.SortOrder = *input.SortOrder
	}
	if input.IsActive != nil {
		collection.IsActive = *input.IsActive
	}
	if collection.ArtistName == "" || collection.Title == "" {
		return nil, ErrInvalidInput
	}
	if err := s.collectionRepo.Update(collection); err != nil {
		return nil, err
	}
	return collection, nil
}

// Delete soft-deletes a collection.
func (s *CollectionService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.collectionRepo.Delete(id)
}
