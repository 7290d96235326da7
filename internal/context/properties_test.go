package context

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadProperties(t *testing.T) {
	dir := t.TempDir()
	content := `# written by conftest.py
Browser=chromium
Base.URL = https://staging.example.com
Python.Version: 3.12
Login.Page=${Base.URL}/login
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, PropertiesFile), []byte(content), 0o644))

	props, err := ReadProperties(dir)
	require.NoError(t, err)
	assert.Equal(t, "chromium", props["Browser"])
	assert.Equal(t, "https://staging.example.com", props["Base.URL"])
	assert.Equal(t, "3.12", props["Python.Version"])
	assert.Equal(t, "${Base.URL}/login", props["Login.Page"])
	assert.Len(t, props, 4)
}

func TestReadProperties_Missing(t *testing.T) {
	var logged bytes.Buffer
	log.SetOutput(&logged)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	for _, dir := range []string{t.TempDir(), filepath.Join(t.TempDir(), "nope")} {
		props, err := ReadProperties(dir)
		require.NoError(t, err)
		assert.Empty(t, props)
	}
	assert.Empty(t, logged.String(), "a missing file must not be reported outside the logger")
}

func TestReadProperties_Unreadable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, PropertiesFile), 0o755))

	_, err := ReadProperties(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), PropertiesFile)
}
