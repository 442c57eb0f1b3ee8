// Package validation checks user-supplied input paths and content before a
// document is built from them, guarding against path tricks and resource
// exhaustion.
package validation

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
)

// Security limits to prevent DoS attacks (CWE-400).
const (
	// MaxFileSize is the maximum allowed input size (256 MB), measured after
	// decompression.
	MaxFileSize = 256 << 20
	// MaxPathLength is the maximum allowed path length.
	MaxPathLength = 4096
	// HeaderSize is how many leading bytes DetectFileType inspects.
	HeaderSize = 512
)

// Common validation errors.
var (
	ErrEmptyPath        = errors.New("path cannot be empty")
	ErrPathTooLong      = errors.New("path too long")
	ErrInvalidCharacter = errors.New("invalid character in path")
	ErrFileTooLarge     = errors.New("input exceeds maximum size")
	ErrBinaryContent    = errors.New("input is not text")
)

// ValidatePath checks a path for length limits and invalid characters.
// The special path "-" (stdin) is accepted.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}

	if len(path) > MaxPathLength {
		return ErrPathTooLong
	}

	// Check for null bytes
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: null byte not allowed", ErrInvalidCharacter)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidCharacter)
		}
	}

	return nil
}

// ValidateSize rejects inputs larger than limit. A limit of zero or less
// means MaxFileSize.
func ValidateSize(size, limit int64) error {
	if limit <= 0 {
		limit = MaxFileSize
	}
	if size > limit {
		return fmt.Errorf("%w: %s (limit %s)", ErrFileTooLarge,
			humanize.IBytes(uint64(size)), humanize.IBytes(uint64(limit)))
	}
	return nil
}

// FileType represents a detected input type.
type FileType string

const (
	FileTypeXZ   FileType = "xz"
	FileTypeXML  FileType = "xml"
	FileTypeText FileType = "text"

	FileTypeUnknown FileType = "unknown"
)

// magicBytes defines magic byte signatures for compressed inputs.
var magicBytes = []struct {
	fileType FileType
	magic    []byte
}{
	{FileTypeXZ, []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}},
}

// DetectFileType classifies an input from its leading bytes, falling back to
// the filename extension. Compression is detected by magic bytes only.
func DetectFileType(header []byte, filename string) FileType {
	for _, sig := range magicBytes {
		if bytes.HasPrefix(header, sig.magic) {
			return sig.fileType
		}
	}

	switch filepath.Ext(strings.TrimSuffix(strings.ToLower(filename), ".xz")) {
	case ".xml", ".osis", ".usx", ".zefania", ".tei":
		return FileTypeXML
	}

	trimmed := bytes.TrimLeft(bytes.TrimPrefix(header, []byte("\xef\xbb\xbf")), " \t\r\n")
	if bytes.HasPrefix(trimmed, []byte("<?xml")) {
		return FileTypeXML
	}
	if isLikelyText(header) {
		return FileTypeText
	}
	return FileTypeUnknown
}

// ValidateText checks that decoded input is UTF-8 text.
func ValidateText(data []byte) error {
	if bytes.IndexByte(data, 0) != -1 {
		return fmt.Errorf("%w: null byte", ErrBinaryContent)
	}
	if !utf8.Valid(data) {
		return fmt.Errorf("%w: invalid UTF-8", ErrBinaryContent)
	}
	return nil
}

// isLikelyText checks if the buffer contains likely text content.
func isLikelyText(buf []byte) bool {
	if len(buf) == 0 {
		return true
	}

	// Check for null bytes (strong indicator of binary content)
	if bytes.IndexByte(buf, 0) != -1 {
		return false
	}

	// A header may end mid-rune; only the complete prefix must be valid.
	if end := lastRuneBoundary(buf); !utf8.Valid(buf[:end]) {
		return false
	}

	control := 0
	for _, b := range buf {
		if b < 0x20 && b != '\t' && b != '\n' && b != '\r' {
			control++
		}
	}

	// If more than 95% is free of control characters, consider it text
	return float64(control)/float64(len(buf)) < 0.05
}

// lastRuneBoundary returns the length of the longest prefix of buf that does
// not end inside a truncated multi-byte sequence.
func lastRuneBoundary(buf []byte) int {
	for i := len(buf) - 1; i >= 0 && i >= len(buf)-utf8.UTFMax; i-- {
		if utf8.RuneStart(buf[i]) {
			if utf8.FullRune(buf[i:]) {
				return len(buf)
			}
			return i
		}
	}
	return len(buf)
}
