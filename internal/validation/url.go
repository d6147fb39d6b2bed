package validation

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// APIURLValidator checks base URLs for the provider API and the local
// dashboard server before any request is made against them.
type APIURLValidator struct {
	// AllowLocalhost permits loopback hosts such as the dashboard server.
	AllowLocalhost bool
	// AllowPrivateIPs permits RFC 1918 and link-local addresses.
	AllowPrivateIPs bool
	// RequireHTTPS rejects plain http URLs.
	RequireHTTPS bool
	MaxLength    int
}

// NewAPIURLValidator is used for the upstream provider: public hosts over HTTPS only.
func NewAPIURLValidator() *APIURLValidator {
	return &APIURLValidator{
		RequireHTTPS: true,
		MaxLength:    2048,
	}
}

// NewPermissiveAPIURLValidator is used for the dashboard server URL, which
// normally points at 127.0.0.1.
func NewPermissiveAPIURLValidator() *APIURLValidator {
	return &APIURLValidator{
		AllowLocalhost:  true,
		AllowPrivateIPs: true,
		MaxLength:       2048,
	}
}

// ValidateAndNormalize returns the cleaned URL without a trailing slash.
// A missing scheme defaults to https.
func (v *APIURLValidator) ValidateAndNormalize(input string) (string, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return "", fmt.Errorf("URL cannot be empty")
	}
	if len(input) > v.MaxLength {
		return "", fmt.Errorf("URL too long (max %d characters)", v.MaxLength)
	}
	if strings.ContainsAny(input, "<>\"'` ") {
		return "", fmt.Errorf("URL contains invalid characters")
	}

	if !strings.Contains(input, "://") {
		input = "https://" + input
	}

	parsed, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}

	switch parsed.Scheme {
	case "https":
	case "http":
		if v.RequireHTTPS {
			return "", fmt.Errorf("URL must use https")
		}
	default:
		return "", fmt.Errorf("URL must use http or https protocol")
	}

	if parsed.Host == "" {
		return "", fmt.Errorf("URL must have a valid hostname")
	}
	if parsed.User != nil {
		return "", fmt.Errorf("URL must not embed credentials")
	}
	if parsed.RawQuery != "" || parsed.Fragment != "" {
		return "", fmt.Errorf("base URL must not carry a query or fragment")
	}
	if strings.Contains(parsed.Path, "..") {
		return "", fmt.Errorf("directory traversal patterns not allowed in URL path")
	}

	if err := v.validateHost(parsed.Hostname()); err != nil {
		return "", err
	}

	parsed.Path = strings.TrimRight(parsed.Path, "/")
	return parsed.String(), nil
}

func (v *APIURLValidator) validateHost(hostname string) error {
	if hostname == "" {
		return fmt.Errorf("URL must have a valid hostname")
	}

	if !v.AllowLocalhost && isLocalhost(hostname) {
		return fmt.Errorf("localhost URLs are not permitted")
	}

	if ip := net.ParseIP(hostname); ip != nil {
		if ip.IsUnspecified() {
			return fmt.Errorf("unspecified address %s is not a valid target", hostname)
		}
		if !v.AllowLocalhost && ip.IsLoopback() {
			return fmt.Errorf("localhost URLs are not permitted")
		}
		if !v.AllowPrivateIPs && isPrivateIP(ip) {
			return fmt.Errorf("private IP addresses are not permitted")
		}
	}

	return nil
}

func isLocalhost(hostname string) bool {
	hostname = strings.ToLower(hostname)
	return hostname == "localhost" || strings.HasSuffix(hostname, ".localhost")
}

func isPrivateIP(ip net.IP) bool {
	return ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast()
}
