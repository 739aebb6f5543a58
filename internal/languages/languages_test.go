package languages

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{name: "language directory", path: "sources/en/novelfull.star", expected: "en"},
		{name: "nested language directory", path: "/home/u/.data/sources/zh/site.star", expected: "zh"},
		{name: "innermost wins", path: "sources/en/ru/site.star", expected: "ru"},
		{name: "no language component", path: "sources/multi/site.star", expected: ""},
		{name: "empty path", path: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, FromPath(tt.path))
		})
	}
}

func TestIsCode(t *testing.T) {
	t.Parallel()

	assert.True(t, IsCode("en"))
	assert.True(t, IsCode("ja"))
	assert.False(t, IsCode("english"))
	assert.False(t, IsCode(""))
	assert.Equal(t, "English", Name("en"))
	assert.Empty(t, Name("xx"))
}
