package artifact

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mrz1836/qaforge/internal/domain"
)

// EncodeJSON renders v as indented JSON with a trailing newline.
func EncodeJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// WriteMetrics atomically writes a scenario's metrics record.
func WriteMetrics(path string, m *domain.ScenarioMetrics) error {
	data, err := EncodeJSON(m)
	if err != nil {
		return fmt.Errorf("encode metrics: %w", err)
	}
	return WriteFileAtomic(path, data)
}

// ReadMetrics loads a scenario's metrics record.
func ReadMetrics(path string) (*domain.ScenarioMetrics, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path is constructed internally
	if err != nil {
		return nil, err
	}
	var m domain.ScenarioMetrics
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &m, nil
}
