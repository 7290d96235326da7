package context

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/magiconair/properties"
)

// PropertiesFile is the file Allure reads suite environment details from.
const PropertiesFile = "environment.properties"

// ReadProperties loads environment.properties from the results directory.
// A missing file yields an empty map. ${...} references are kept verbatim.
func ReadProperties(dir string) (map[string]string, error) {
	path := filepath.Join(dir, PropertiesFile)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	loader := &properties.Loader{
		Encoding:         properties.UTF8,
		DisableExpansion: true,
	}
	p, err := loader.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return p.Map(), nil
}
