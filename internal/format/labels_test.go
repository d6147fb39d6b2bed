package format

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFolderLabel(t *testing.T) {
	assert.Equal(t, "Promotions", FolderLabel("CATEGORY_PROMOTIONS"))
	assert.Equal(t, "Inbox", FolderLabel("INBOX"))
	assert.Equal(t, "Some Folder", FolderLabel("SOME_FOLDER"))
	assert.Equal(t, "", FolderLabel(""))
}

func TestFolderColor(t *testing.T) {
	assert.Equal(t, "blue", FolderColor("INBOX"))
	assert.Equal(t, "purple", FolderColor("CATEGORY_PROMOTIONS"))
	assert.Equal(t, "gray", FolderColor("Label_42"))
}

func TestEventColorCycles(t *testing.T) {
	assert.Equal(t, "blue", EventColor(0))
	assert.Equal(t, "teal", EventColor(7))
	assert.Equal(t, "blue", EventColor(8))
	assert.Equal(t, "green", EventColor(9))
	assert.NotEmpty(t, Hex(EventColor(3)))
}

func TestEventColorNegative(t *testing.T) {
	assert.Equal(t, "teal", EventColor(-1))
	assert.Equal(t, "blue", EventColor(-8))
	assert.NotPanics(t, func() { EventColor(math.MinInt) })
	assert.Equal(t, "blue", EventColor(math.MinInt))
}
