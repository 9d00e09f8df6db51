package service

import (
	"github.com/marmgroup/atlas-best-practices/internal/models"
	"github.com/marmgroup/atlas-best-practices/internal/repository"
)

// FixService handles business logic for telemetry fixes.
type FixService struct {
	repo *repository.FixRepository
}

// NewFixService creates a new fix service.
func NewFixService(repo *repository.FixRepository) *FixService {
	return &FixService{repo: repo}
}

// GetFixes retrieves fixes with filtering and pagination.
func (s *FixService) GetFixes(filter models.FixFilter) ([]models.Fix, int64, error) {
	return s.repo.GetFixes(filter)
}

// GetTags retrieves the distinct tags present in the fixes table.
func (s *FixService) GetTags() ([]string, error) {
	return s.repo.GetTags()
}

// GetTrack retrieves the complete track for one tag in time order.
func (s *FixService) GetTrack(tag string) ([]models.Fix, error) {
	return s.repo.GetTrack(tag)
}

// ImportFixes inserts a batch of fixes and returns how many were stored.
func (s *FixService) ImportFixes(fixes []models.Fix) (int, error) {
	return s.repo.InsertFixes(fixes)
}
