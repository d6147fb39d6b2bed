package conferencing

import (
	"strings"
	"unicode"

	"github.com/pders01/mailcal/internal/provider"
)

type GoogleMeet struct{}

func (GoogleMeet) Name() string  { return "google-meet" }
func (GoogleMeet) Priority() int { return 50 }

func (GoogleMeet) CanHandle(c *provider.Conferencing) bool {
	return providerIs(c, "google meet", "googlemeet") || urlHas(c, "meet.google.com")
}

// Resolve falls back to building the URL from the meeting code.
func (GoogleMeet) Resolve(c *provider.Conferencing) *Link {
	link := &Link{Label: "Google Meet", URL: c.Details.URL, MeetingCode: c.Details.MeetingCode}
	if link.URL == "" && link.MeetingCode != "" {
		link.URL = "https://meet.google.com/" + strings.ToLower(link.MeetingCode)
	}
	if link.URL == "" {
		return nil
	}
	return link
}

type Zoom struct{}

func (Zoom) Name() string  { return "zoom" }
func (Zoom) Priority() int { return 50 }

func (Zoom) CanHandle(c *provider.Conferencing) bool {
	return providerIs(c, "zoom meeting", "zoom") || urlHas(c, "zoom.us")
}

func (Zoom) Resolve(c *provider.Conferencing) *Link {
	link := &Link{Label: "Zoom", URL: c.Details.URL, MeetingCode: c.Details.MeetingCode}
	if link.URL == "" {
		if id := digits(link.MeetingCode); id != "" {
			link.URL = "https://zoom.us/j/" + id
		}
	}
	if link.URL == "" {
		return nil
	}
	return link
}

type Teams struct{}

func (Teams) Name() string  { return "teams" }
func (Teams) Priority() int { return 50 }

func (Teams) CanHandle(c *provider.Conferencing) bool {
	return providerIs(c, "microsoft teams", "teams") || urlHas(c, "teams.microsoft.com")
}

// Teams links cannot be rebuilt from a code.
func (Teams) Resolve(c *provider.Conferencing) *Link {
	if c.Details.URL == "" {
		return nil
	}
	return &Link{Label: "Teams", URL: c.Details.URL, MeetingCode: c.Details.MeetingCode}
}

// Generic accepts any block that carries a URL.
type Generic struct{}

func (Generic) Name() string  { return "generic" }
func (Generic) Priority() int { return 0 }

func (Generic) CanHandle(c *provider.Conferencing) bool {
	return c.Details.URL != ""
}

func (Generic) Resolve(c *provider.Conferencing) *Link {
	label := strings.TrimSpace(c.Provider)
	if label == "" {
		label = "Meeting"
	}
	return &Link{Label: label, URL: c.Details.URL, MeetingCode: c.Details.MeetingCode}
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
