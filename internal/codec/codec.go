package codec

import (
	"fmt"
	"io"
	"strings"

	"usercontext/internal/domain"
)

// Importer interface for reading a context snapshot back from a format
type Importer interface {
	Parse(r io.Reader) (*domain.ContextSnapshot, error)
	Format() string
}

// Exporter interface for writing a context snapshot to a format
type Exporter interface {
	Export(snapshot *domain.ContextSnapshot, w io.Writer) error
	Format() string
}

// Formats lists the export formats in the order they are documented
func Formats() []string {
	return []string{"json", "yaml", "csv", "markdown"}
}

// ForFormat returns the exporter registered under name
func ForFormat(name string) (Exporter, error) {
	switch strings.ToLower(name) {
	case "", "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	case "csv":
		return NewCSVCodec(), nil
	case "markdown", "md":
		return NewMarkdownCodec(), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", name)
	}
}

// ImporterFor returns the importer for name. Only the lossless formats can
// be imported.
func ImporterFor(name string) (Importer, error) {
	switch strings.ToLower(name) {
	case "", "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("unsupported import format %q", name)
	}
}
