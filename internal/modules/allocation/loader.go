package allocation

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/avasilakis/autoinvest/internal/domain"
)

// Loader reads target allocations from YAML files
type Loader struct {
	log zerolog.Logger
}

// NewLoader creates a new allocation loader
func NewLoader(log zerolog.Logger) *Loader {
	return &Loader{
		log: log.With().Str("component", "allocation_loader").Logger(),
	}
}

// LoadFromFile loads a target allocation from a YAML file.
// Symbols are normalized and weights validated: a negative weight is a
// configuration error and fails the load.
func (l *Loader) LoadFromFile(path string) (TargetSet, error) {
	l.log.Info().Str("path", path).Msg("Loading target allocation")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read allocation file: %w", err)
	}

	return l.LoadFromBytes(data)
}

// LoadFromBytes parses a target allocation from YAML content
func (l *Loader) LoadFromBytes(data []byte) (TargetSet, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse allocation YAML: %w", err)
	}

	if len(file.Targets) == 0 {
		return nil, fmt.Errorf("allocation file defines no targets")
	}

	targets := make(TargetSet, len(file.Targets))
	for symbol, weight := range file.Targets {
		if weight < 0 {
			return nil, fmt.Errorf("negative weight for %s: %v", symbol, weight)
		}
		targets[domain.NormalizeSymbol(symbol)] = weight
	}

	l.log.Info().
		Int("symbols", len(targets)).
		Msg("Target allocation loaded")

	return targets, nil
}
