//go:build !integration

package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"

	"github.com/pickleballplayers/court-harvester/internal/harvest"
	"github.com/pickleballplayers/court-harvester/internal/model"
	"github.com/pickleballplayers/court-harvester/internal/store"
)

func TestFormatCourtsList(t *testing.T) {
	created := time.Date(2026, 5, 2, 9, 15, 0, 0, time.UTC)
	courts := []model.Court{
		{
			ID: "abc12345-6789-0000-0000-000000000000", Name: "Alpha Courts", City: "Testville",
			Latitude: 40.05, Longitude: -75.05, IndoorOutdoor: model.Outdoor, ConfidenceScore: 90,
			CreatedAt: created,
		},
		{
			ID: "def12345-6789-0000-0000-000000000000", Name: strings.Repeat("Very Long Court Name ", 3),
			IndoorOutdoor: model.Indoor, ConfidenceScore: 60, CreatedAt: created,
		},
	}

	var buf bytes.Buffer
	formatCourtsList(&buf, courts)

	output := buf.String()
	assert.Contains(t, output, "NAME")
	assert.Contains(t, output, "CITY")
	assert.Contains(t, output, "abc12345")
	assert.NotContains(t, output, "abc12345-6789")
	assert.Contains(t, output, "Alpha Courts")
	assert.Contains(t, output, "40.05000")
	assert.Contains(t, output, "-75.05000")
	assert.Contains(t, output, "indoor")
	assert.Contains(t, output, "2026-05-02 09:15")
	assert.Contains(t, output, "...")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc12345", truncateID("abc12345-6789"))
	assert.Equal(t, "short", truncateID("short"))
}

func TestCourtsFilter(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().Bool("generic", false, "")
	cmd.Flags().Bool("active", false, "")
	cmd.Flags().Int("limit", 50, "")

	f := courtsFilter(cmd)
	assert.Empty(t, f.NamePatterns)
	assert.False(t, f.ActiveOnly)
	assert.Equal(t, 50, f.Limit)
	assert.Equal(t, store.OrderByName, f.OrderBy)

	_ = cmd.Flags().Set("generic", "true")
	_ = cmd.Flags().Set("active", "true")
	_ = cmd.Flags().Set("limit", "7")
	f = courtsFilter(cmd)
	assert.Equal(t, harvest.GenericNamePatterns, f.NamePatterns)
	assert.True(t, f.ActiveOnly)
	assert.Equal(t, 7, f.Limit)
}
