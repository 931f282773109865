package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewDocumentID(t *testing.T) {
	now := time.Now()
	id := NewDocumentID("s1", "manual.txt", now)

	assert.True(t, strings.HasPrefix(id, "s1_"))
	assert.True(t, strings.HasSuffix(id, "_manual.txt"))
}

func TestNewDocumentID_SameInstantNoCollision(t *testing.T) {
	now := time.Now()
	a := NewDocumentID("s1", "manual.txt", now)
	b := NewDocumentID("s1", "manual.txt", now)

	assert.NotEqual(t, a, b, "same-instant uploads must not collide")
}

func TestNewDocumentID_SanitizesFilename(t *testing.T) {
	id := NewDocumentID("s1", "my report (final)!.pdf", time.Now())

	assert.NotContains(t, id, " ")
	assert.NotContains(t, id, "(")
	assert.True(t, strings.HasSuffix(id, "my-report--final--.pdf"))
}
