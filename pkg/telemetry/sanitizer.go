package telemetry

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// PIILevel controls how much personal data survives in stored prompts.
type PIILevel string

const (
	// PIILevelNone drops prompt text entirely.
	PIILevelNone PIILevel = "none"
	// PIILevelHashed replaces detected personal data with salted hashes.
	PIILevelHashed PIILevel = "hashed"
	// PIILevelFull stores prompts verbatim.
	PIILevelFull PIILevel = "full"
)

// ParsePIILevel maps a config value to a level, defaulting to hashed.
func ParsePIILevel(raw string) PIILevel {
	switch PIILevel(strings.ToLower(strings.TrimSpace(raw))) {
	case PIILevelNone:
		return PIILevelNone
	case PIILevelFull:
		return PIILevelFull
	default:
		return PIILevelHashed
	}
}

type piiPattern struct {
	label  string
	re     *regexp.Regexp
	redact bool
}

// Sanitizer scrubs personal data from prompts before they are archived.
type Sanitizer struct {
	level    PIILevel
	salt     string
	patterns []piiPattern
}

// NewSanitizer creates a sanitizer whose hashes are salted per deployment.
func NewSanitizer(level PIILevel, salt string) *Sanitizer {
	return &Sanitizer{
		level: level,
		salt:  salt,
		patterns: []piiPattern{
			{label: "EMAIL", re: regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)},
			{label: "CARD", re: regexp.MustCompile(`\b\d{4}[- ]?\d{4}[- ]?\d{4}[- ]?\d{4}\b`), redact: true},
			{label: "PHONE", re: regexp.MustCompile(`\+\d{1,3}[\s-]?\d{6,10}\b|\b[67]\d{7}\b`)},
			{label: "DOC", re: regexp.MustCompile(`\b(?:ci|nit|dni)[\s:#]*\d{6,12}\b`)},
			{label: "IP", re: regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)},
		},
	}
}

// Level returns the configured level.
func (s *Sanitizer) Level() PIILevel {
	return s.level
}

// SanitizePrompt applies the configured level to a prompt.
func (s *Sanitizer) SanitizePrompt(input string) string {
	switch s.level {
	case PIILevelNone:
		return "[REDACTED]"
	case PIILevelFull:
		return input
	default:
		return s.hashPII(input)
	}
}

func (s *Sanitizer) hashPII(input string) string {
	result := input
	for _, p := range s.patterns {
		label, redact := p.label, p.redact
		result = p.re.ReplaceAllStringFunc(result, func(match string) string {
			if redact {
				return "[" + label + ":REDACTED]"
			}
			return "[" + label + ":" + s.hash(match) + "]"
		})
	}
	return result
}

// hash returns the first 8 hex chars of a salted SHA-256.
func (s *Sanitizer) hash(data string) string {
	sum := sha256.Sum256([]byte(data + s.salt))
	return hex.EncodeToString(sum[:])[:8]
}

// SanitizeUserID applies the configured level to a caller id.
func (s *Sanitizer) SanitizeUserID(userID string) string {
	if userID == "" {
		return ""
	}
	switch s.level {
	case PIILevelNone:
		return ""
	case PIILevelFull:
		return userID
	default:
		return "user:" + s.hash(userID)
	}
}
