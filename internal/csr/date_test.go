package csr

import (
	"testing"
	"time"

	"github.com/kishorebabuysk/VF-Backend/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDay(t *testing.T) {
	want := time.Date(2025, time.March, 7, 0, 0, 0, 0, time.UTC)

	for _, raw := range []string{"07-03-2025", "07/03/2025", " 07-03-2025 "} {
		start, end, err := ParseDay(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, start)
		assert.Equal(t, want.AddDate(0, 0, 1), end)
	}

	for _, raw := range []string{"2025-03-07", "32-01-2025", "", "07.03.2025"} {
		_, _, err := ParseDay(raw)
		assert.ErrorIs(t, err, validation.ErrInvalidInput, raw)
	}
}

func TestUpdateRequest_Apply(t *testing.T) {
	title := "  Tree planting "
	inactive := false
	section := &Section{Title: "old", Image1: "a", IsActive: true}

	cols := UpdateRequest{Title: &title, IsActive: &inactive}.Apply(section)

	assert.Equal(t, []string{"title", "is_active"}, cols)
	assert.Equal(t, "Tree planting", section.Title)
	assert.False(t, section.IsActive)
	assert.Equal(t, "a", section.Image1)

	assert.Empty(t, UpdateRequest{}.Apply(section))
}
