package format

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FolderLabel turns a provider folder id into a badge label:
// "CATEGORY_PROMOTIONS" becomes "Promotions".
func FolderLabel(folder string) string {
	label := strings.TrimPrefix(folder, "CATEGORY_")
	label = strings.ReplaceAll(label, "_", " ")
	return cases.Title(language.English).String(strings.ToLower(label))
}

var folderColors = map[string]string{
	"INBOX":               "blue",
	"UNREAD":              "red",
	"SPAM":                "yellow",
	"IMPORTANT":           "green",
	"CATEGORY_PROMOTIONS": "purple",
	"CATEGORY_UPDATES":    "indigo",
}

// FolderColor names the badge color for a folder; unknown folders are gray.
func FolderColor(folder string) string {
	if c, ok := folderColors[folder]; ok {
		return c
	}
	return "gray"
}

var eventPalette = []string{"blue", "green", "purple", "red", "yellow", "indigo", "pink", "teal"}

// EventColor cycles through the event palette by list position.
func EventColor(i int) string {
	n := len(eventPalette)
	return eventPalette[((i%n)+n)%n]
}

// Hex maps a palette name to a terminal color.
func Hex(name string) string {
	switch name {
	case "blue":
		return "#3B82F6"
	case "green":
		return "#22C55E"
	case "purple":
		return "#A855F7"
	case "red":
		return "#EF4444"
	case "yellow":
		return "#EAB308"
	case "indigo":
		return "#6366F1"
	case "pink":
		return "#EC4899"
	case "teal":
		return "#14B8A6"
	default:
		return "#9CA3AF"
	}
}
