package site

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLandingContent(t *testing.T) {
	c := Landing()
	require.Len(t, c.NavLinks, 5)
	assert.Equal(t, "#how-it-works", c.NavLinks[1].Href)

	require.Len(t, c.Plans, 3)
	assert.Equal(t, "₹0", c.Plans[0].Price)
	assert.Equal(t, "14-day trial", c.Plans[0].Period)
	assert.True(t, c.Plans[1].Popular)
	assert.Equal(t, "₹2,499", c.Plans[2].Price)

	assert.Len(t, c.FAQs, 6)
}

func TestActiveSection(t *testing.T) {
	sections := []Section{
		{ID: "features", Top: 600, Height: 800},
		{ID: "pricing", Top: 1400, Height: 700},
		{ID: "faq", Top: 2000, Height: 500},
	}
	tests := []struct {
		scrollY int
		want    string
	}{
		{0, "#"},
		{479, "#"},
		{480, "#features"},
		{1279, "#features"},
		{1280, "#pricing"},
		{1880, "#faq"},
		{1979, "#faq"},
		{2380, "#"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ActiveSection(sections, tt.scrollY), "scrollY=%d", tt.scrollY)
	}
	assert.Equal(t, NoSection, ActiveSection(nil, 100))
}
