package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"usercontext/internal/domain"
)

// YAMLCodec handles YAML import/export.
//
// The domain types only carry json tags, so documents pass through a generic
// tree built from their JSON form. Keys stay snake_case and scopes keep their
// encoded string form.
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// Parse reads a snapshot from YAML
func (c *YAMLCodec) Parse(r io.Reader) (*domain.ContextSnapshot, error) {
	var tree any
	if err := yaml.NewDecoder(r).Decode(&tree); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	data, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	var snapshot domain.ContextSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &snapshot, nil
}

// Export writes the snapshot as YAML
func (c *YAMLCodec) Export(snapshot *domain.ContextSnapshot, w io.Writer) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(tree); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}
