package service

import (
	"github.com/marmgroup/atlas-best-practices/internal/models"
	"github.com/marmgroup/atlas-best-practices/internal/repository"
)

// PatchService handles business logic for residence patches.
type PatchService struct {
	repo *repository.PatchRepository
}

// NewPatchService creates a new patch service.
func NewPatchService(repo *repository.PatchRepository) *PatchService {
	return &PatchService{repo: repo}
}

// GetPatches retrieves residence patches with filtering and pagination.
func (s *PatchService) GetPatches(filter models.PatchFilter) ([]models.ResidencePatch, int64, error) {
	return s.repo.GetPatches(filter)
}

// GetPatchByID retrieves a single residence patch by ID.
func (s *PatchService) GetPatchByID(id int64) (*models.ResidencePatch, error) {
	return s.repo.GetPatchByID(id)
}
