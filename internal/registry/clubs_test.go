package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRegistry(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clubs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	clubs := Defaults()
	require.Len(t, clubs, 13)

	for _, c := range clubs {
		assert.NotEmpty(t, c.Name)
		assert.Contains(t, c.URL, "samsclub.com/club/")
		assert.NotEmpty(t, c.KnownAddress, c.Name)
	}
}

func TestDefaults_FreshCopy(t *testing.T) {
	a := Defaults()
	a[0].Name = "mutated"
	assert.NotEqual(t, "mutated", Defaults()[0].Name)
}

func TestLoad_EmptyPath(t *testing.T) {
	clubs, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), clubs)
}

func TestLoad_MissingFile(t *testing.T) {
	clubs, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), clubs)
}

func TestLoad_MergeOverDefaults(t *testing.T) {
	path := writeRegistry(t, `
clubs:
  - name: Tempe
    url: https://www.samsclub.com/club/9999-tempe-az
    known_address: 1234 E Broadway Rd, Tempe, AZ 85282
  - name: Las Vegas
    url: https://www.samsclub.com/club/6257-las-vegas-nv
`)

	clubs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, clubs, 14, "one override, one addition")

	var tempe, vegas bool
	for _, c := range clubs {
		switch c.Name {
		case "Tempe":
			tempe = true
			assert.Equal(t, "https://www.samsclub.com/club/9999-tempe-az", c.URL)
		case "Las Vegas":
			vegas = true
		}
	}
	assert.True(t, tempe)
	assert.True(t, vegas)
}

func TestLoad_Replace(t *testing.T) {
	path := writeRegistry(t, `
replace: true
clubs:
  - name: Only Club
    url: https://www.samsclub.com/club/1-only
`)

	clubs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, clubs, 1)
	assert.Equal(t, "Only Club", clubs[0].Name)
}

func TestLoad_RejectsIncompleteEntry(t *testing.T) {
	path := writeRegistry(t, `
clubs:
  - name: Nameless URL
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing name or url")
}

func TestLoad_RejectsMalformedYAML(t *testing.T) {
	path := writeRegistry(t, "clubs: [whoops")

	_, err := Load(path)
	require.Error(t, err)
}
