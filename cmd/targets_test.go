//go:build !integration

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTargets(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cities.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadTargets(t *testing.T) {
	path := writeTargets(t, `
cities:
  - Austin, TX
  - "  Boise, ID "
  - ""
  - austin, tx
  - Naples, FL
`)

	got, err := loadTargets(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Austin, TX", "Boise, ID", "Naples, FL"}, got.Cities)
}

func TestLoadTargets_Errors(t *testing.T) {
	_, err := loadTargets(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "targets: read")

	_, err = loadTargets(writeTargets(t, "cities: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "targets: parse")

	_, err = loadTargets(writeTargets(t, "cities: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lists no cities")
}

func TestHarvestCities(t *testing.T) {
	got, err := harvestCities([]string{"Austin, TX"}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Austin, TX"}, got)

	path := writeTargets(t, "cities:\n  - Boise, ID\n  - Naples, FL\n")
	got, err = harvestCities(nil, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Boise, ID", "Naples, FL"}, got)

	_, err = harvestCities([]string{"Austin, TX"}, path)
	assert.Error(t, err)

	_, err = harvestCities(nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")
}
