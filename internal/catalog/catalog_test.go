package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/atinylittleshell/clinicdesk/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	assert.NotEmpty(t, c.Practitioners)
	assert.NotEmpty(t, c.Diagnoses)
	assert.NotEmpty(t, c.Medications)
	assert.Contains(t, c.Diagnoses, "Asthma")
}

func TestParseDropsBlankEntries(t *testing.T) {
	c, err := Parse([]byte("diagnoses:\n  - Asthma\n  - ''\n  - '  '\n  - Migraine\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Asthma", "Migraine"}, c.Diagnoses)
	assert.Nil(t, c.Medications)
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("diagnoses: [unterminated"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, c Catalog)
	}{
		{
			name:    "user list replaces built-in list",
			content: "medications:\n  - Dipyrone 1 g\n",
			check: func(t *testing.T, c Catalog) {
				assert.Equal(t, []string{"Dipyrone 1 g"}, c.Medications)
				assert.Equal(t, Default().Diagnoses, c.Diagnoses)
			},
		},
		{
			name:    "empty list clears built-in list",
			content: "practitioners: []\n",
			check: func(t *testing.T, c Catalog) {
				assert.Empty(t, c.Practitioners)
				assert.Equal(t, Default().Medications, c.Medications)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "catalog.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			c, err := Load(path)
			require.NoError(t, err)
			tt.check(t, c)
		})
	}
}

func TestLoadWithoutPath(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFor(t *testing.T) {
	c := Catalog{
		Practitioners: []string{"Dr. A"},
		Diagnoses:     []string{"Asthma"},
		Medications:   []string{"Ibuprofen"},
	}
	assert.Equal(t, []string{"Dr. A"}, c.For(registry.FieldPractitioner))
	assert.Equal(t, []string{"Asthma"}, c.For(registry.FieldDiagnosis))
	assert.Equal(t, []string{"Ibuprofen"}, c.For(registry.FieldMedication))
	assert.Nil(t, c.For(registry.FieldFullName))
}

func TestMerge(t *testing.T) {
	recent := []string{"Asthma"}
	merged := Merge(recent, []string{"Migraine", "asthma"})
	assert.Equal(t, []string{"Asthma", "Migraine", "asthma"}, merged)
	assert.Equal(t, []string{"Asthma"}, recent)
}
