package middleware

import (
	"fmt"
	"net"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Input sanitization helpers
func SanitizeString(input string) string {
	// Remove null bytes and control characters except newlines and tabs
	input = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`).ReplaceAllString(input, "")
	return strings.TrimSpace(input)
}

// ValidateStruct runs validator tags on an already-bound request body.
func ValidateStruct(v interface{}) error {
	return validate.Struct(v)
}

var hostnamePattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9\-\.]{0,253}[a-zA-Z0-9])?$`)

// ValidateTarget accepts a hostname or IP address destined for a shell-out
// diagnostic (ping, traceroute). Anything that isn't a plain host is
// rejected before it gets near a command line.
func ValidateTarget(raw string) (string, error) {
	target := SanitizeString(raw)
	if target == "" {
		return "", fmt.Errorf("target required")
	}
	if ip := net.ParseIP(target); ip != nil {
		return target, nil
	}
	if !hostnamePattern.MatchString(target) {
		return "", fmt.Errorf("invalid target %q", raw)
	}
	return target, nil
}
