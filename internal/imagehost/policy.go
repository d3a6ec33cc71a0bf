package imagehost

import (
	_ "embed"
	"fmt"
	"path"
	"slices"
	"strings"

	"bucketlist/internal/domain"
	svc "bucketlist/internal/domain/services/bucketlist"

	"gopkg.in/yaml.v3"
)

//go:embed policy.yaml
var defaultPolicy []byte

// Policy limits what may be uploaded
type Policy struct {
	MaxBytes int64 `yaml:"max_bytes"`
	// ContentTypes are accepted MIME prefixes, e.g. "image/"
	ContentTypes []string `yaml:"content_types"`
	// Extensions are accepted lower-case file extensions without the dot
	Extensions []string `yaml:"extensions"`
}

// DefaultPolicy returns the embedded upload policy
func DefaultPolicy() (*Policy, error) {
	return ParsePolicy(defaultPolicy)
}

// ParsePolicy decodes a YAML policy
func ParsePolicy(data []byte) (*Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal upload policy: %w", err)
	}
	if p.MaxBytes <= 0 {
		return nil, fmt.Errorf("upload policy: max_bytes must be positive")
	}
	if len(p.ContentTypes) == 0 || len(p.Extensions) == 0 {
		return nil, fmt.Errorf("upload policy: content_types and extensions are required")
	}
	for i, ext := range p.Extensions {
		p.Extensions[i] = strings.ToLower(strings.TrimPrefix(ext, "."))
	}
	return &p, nil
}

// Extension returns the normalized extension of filename
func Extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
}

// Check validates the declared metadata of an upload
func (p *Policy) Check(req *svc.UploadRequest) error {
	if req == nil || req.Body == nil {
		return &domain.UploadError{Message: "no file provided"}
	}
	if req.Size > p.MaxBytes {
		return &domain.UploadError{Message: fmt.Sprintf("file is larger than %d MB", p.MaxBytes>>20)}
	}
	if !slices.Contains(p.Extensions, Extension(req.Filename)) {
		return &domain.UploadError{Message: fmt.Sprintf("file type not allowed; use %s", strings.Join(p.Extensions, ", "))}
	}
	if req.ContentType != "" && !p.allowsContentType(req.ContentType) {
		return &domain.UploadError{Message: fmt.Sprintf("content type %q is not an image", req.ContentType)}
	}
	return nil
}

func (p *Policy) allowsContentType(contentType string) bool {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	for _, prefix := range p.ContentTypes {
		if strings.HasPrefix(contentType, prefix) {
			return true
		}
	}
	return false
}
