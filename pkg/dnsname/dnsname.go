// Package dnsname validates fully qualified domain names and derives the
// registrable apex used to locate their DNS zone.
package dnsname

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Length limits per RFC 1123.
const (
	// MaxNameLength is the maximum length of a full domain name (253 chars).
	MaxNameLength = 253

	// MaxLabelLength is the maximum length of a single label (63 chars).
	MaxLabelLength = 63
)

// Common validation errors.
var (
	// ErrEmptyName indicates an empty domain name.
	ErrEmptyName = errors.New("domain name is empty")

	// ErrNameTooLong indicates the name exceeds 253 characters.
	ErrNameTooLong = errors.New("domain name exceeds 253 characters")

	// ErrLabelTooLong indicates a single label exceeds 63 characters.
	ErrLabelTooLong = errors.New("domain label exceeds 63 characters")

	// ErrEmptyLabel indicates an empty label (e.g. "home..example.com").
	ErrEmptyLabel = errors.New("domain contains empty label")

	// ErrBadCharacter indicates a label with characters outside [a-z0-9-],
	// or a hyphen at a label boundary.
	ErrBadCharacter = errors.New("domain contains invalid characters")
)

// labelPattern matches a normalized (lowercased) RFC 1123 label: starts and
// ends alphanumeric, hyphens allowed in the middle.
var labelPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// ValidationError reports which name, and which label within it, failed
// validation.
type ValidationError struct {
	Name  string
	Label string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("invalid domain %q: label %q: %v", e.Name, e.Label, e.Err)
	}
	return fmt.Sprintf("invalid domain %q: %v", e.Name, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Normalize lowercases a domain name and strips surrounding whitespace and a
// single trailing dot (the DNS root). DNS names compare case-insensitively,
// so all internal comparisons run on normalized names.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSuffix(strings.TrimSpace(name), "."))
}

// Validate checks a domain name against RFC 1123:
//
//   - total length <= 253 characters after normalization
//   - each dot-separated label is 1-63 characters
//   - labels start and end alphanumeric, hyphens only in the middle
//   - a leading "*" label is accepted (wildcard record names)
//
// Returns nil for a valid name, or a *ValidationError naming the offending
// label.
func Validate(name string) error {
	normalized := Normalize(name)

	if normalized == "" {
		return &ValidationError{Name: name, Err: ErrEmptyName}
	}
	if len(normalized) > MaxNameLength {
		return &ValidationError{Name: name, Err: ErrNameTooLong}
	}

	for i, label := range strings.Split(normalized, ".") {
		if label == "" {
			return &ValidationError{Name: name, Label: label, Err: ErrEmptyLabel}
		}
		if len(label) > MaxLabelLength {
			return &ValidationError{Name: name, Label: label, Err: ErrLabelTooLong}
		}
		if i == 0 && label == "*" {
			continue
		}
		if !labelPattern.MatchString(label) {
			return &ValidationError{Name: name, Label: label, Err: ErrBadCharacter}
		}
	}

	return nil
}

// Apex returns the registrable apex domain for a fully qualified name: the
// name itself when it has two or fewer labels, otherwise its last two labels.
//
// The derivation does not consult a public-suffix list, so names under
// multi-label suffixes come out wrong ("home.example.co.uk" yields "co.uk").
// Zone lookup for such domains fails with a not-found error rather than
// touching the wrong zone.
func Apex(fqdn string) string {
	normalized := Normalize(fqdn)

	labels := strings.Split(normalized, ".")
	if len(labels) <= 2 {
		return normalized
	}
	return strings.Join(labels[len(labels)-2:], ".")
}
