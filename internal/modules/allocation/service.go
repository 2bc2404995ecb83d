package allocation

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Service manages the active target allocation
type Service struct {
	loader *Loader
	repo   *Repository
	log    zerolog.Logger
}

// NewService creates a new allocation service
func NewService(loader *Loader, repo *Repository, log zerolog.Logger) *Service {
	return &Service{
		loader: loader,
		repo:   repo,
		log:    log.With().Str("service", "allocation").Logger(),
	}
}

// Sync loads the allocation file and stores it as the active target
// set. Called at startup so the repository always reflects the file.
func (s *Service) Sync(path string) (TargetSet, error) {
	targets, err := s.loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load allocation: %w", err)
	}

	if err := s.repo.ReplaceAll(targets); err != nil {
		return nil, fmt.Errorf("failed to store allocation: %w", err)
	}

	return targets, nil
}

// Active returns the stored target allocation
func (s *Service) Active() (TargetSet, error) {
	return s.repo.GetAll()
}

// Targets returns the stored targets with metadata for the API
func (s *Service) Targets() ([]Target, error) {
	return s.repo.List()
}
