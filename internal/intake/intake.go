package intake

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/zombor/receipt-uploader/internal/receipt"
)

// Source records how the user handed the file over
type Source string

const (
	SourceBrowse Source = "browse"
	SourceDrop   Source = "drop"
	SourcePaste  Source = "paste"
)

// ParseSource maps a form value to a Source, defaulting to browse
func ParseSource(s string) Source {
	switch Source(strings.ToLower(strings.TrimSpace(s))) {
	case SourceDrop:
		return SourceDrop
	case SourcePaste:
		return SourcePaste
	}
	return SourceBrowse
}

// Default intake limits
const (
	DefaultMaxFileSize = 5 << 20 // 5MB
)

// DefaultAllowedExtensions are accepted when no allow-list is configured
var DefaultAllowedExtensions = []string{".jpg", ".jpeg", ".png"}

// PendingFile is a validated file waiting to be uploaded
type PendingFile struct {
	Name        string
	ContentType string
	Size        int64
	Source      Source
	Data        []byte
}

// NewPendingFile builds a PendingFile, filling in a name and content type when
// the source did not provide them (clipboard pastes usually have neither)
func NewPendingFile(source Source, name, contentType string, data []byte) PendingFile {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	name = strings.TrimSpace(name)
	if name == "" {
		name = "pasted-image" + extensionFor(contentType)
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = ContentTypeFor(name)
	}
	return PendingFile{
		Name:        filepath.Base(name),
		ContentType: contentType,
		Size:        int64(len(data)),
		Source:      source,
		Data:        data,
	}
}

// Ext returns the lower-cased extension of the file name
func (f PendingFile) Ext() string {
	return strings.ToLower(filepath.Ext(f.Name))
}

// ContentTypeFor guesses the content type of a file from its extension
func ContentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	}
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png", "":
		return ".png"
	case "image/heic":
		return ".heic"
	case "image/heif":
		return ".heif"
	case "application/pdf":
		return ".pdf"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}

// Validator checks files against the configured allow-list and size limit
type Validator struct {
	allowed []string
	maxSize int64
}

// NewValidator creates a Validator. Extensions are matched case-insensitively;
// a leading dot is optional. Zero or negative maxSize uses DefaultMaxFileSize.
func NewValidator(allowed []string, maxSize int64) *Validator {
	if len(allowed) == 0 {
		allowed = DefaultAllowedExtensions
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	exts := make([]string, 0, len(allowed))
	for _, ext := range allowed {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	return &Validator{allowed: exts, maxSize: maxSize}
}

// AllowedExtensions returns the normalized allow-list
func (v *Validator) AllowedExtensions() []string {
	return append([]string(nil), v.allowed...)
}

// MaxSize returns the size limit in bytes
func (v *Validator) MaxSize() int64 {
	return v.maxSize
}

// Validate checks the extension first, then the size
func (v *Validator) Validate(f PendingFile) error {
	if !v.allowedExt(f.Ext()) {
		return &receipt.ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("Invalid file format. Please upload one of: %s.", strings.Join(v.allowed, ", ")),
		}
	}
	return v.checkSize(f)
}

// checkSize rejects files over the limit, then empty files
func (v *Validator) checkSize(f PendingFile) error {
	if f.Size > v.maxSize {
		return &receipt.ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("File size exceeds %s limit.", FormatSize(v.maxSize)),
		}
	}
	if f.Size == 0 {
		return &receipt.ValidationError{Field: "file", Message: "File is empty."}
	}
	return nil
}

func (v *Validator) allowedExt(ext string) bool {
	if ext == "" {
		return false
	}
	for _, a := range v.allowed {
		if a == ext {
			return true
		}
	}
	return false
}

// FormatSize renders a byte count the way limits are shown to users
func FormatSize(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%dMB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%dKB", n>>10)
	}
	return fmt.Sprintf("%d bytes", n)
}
