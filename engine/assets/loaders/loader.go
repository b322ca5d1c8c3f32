package loaders

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/passgraph/engine/renderer/metadata"
)

/** @brief Reads a pass library file. All registered loaders use this. */
type Loader interface {
	Load(path string) (*metadata.PassLibrary, error)
}

var loadersByExtension = map[string]Loader{
	".toml": &TOMLLoader{},
	".yaml": &YAMLLoader{},
	".yml":  &YAMLLoader{},
	".hcl":  &HCLLoader{},
}

// ForPath picks the loader matching the file extension.
func ForPath(path string) (Loader, error) {
	loader, ok := loadersByExtension[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("no pass library loader for '%s'", path)
	}
	return loader, nil
}

func IsLibraryFile(path string) bool {
	_, ok := loadersByExtension[strings.ToLower(filepath.Ext(path))]
	return ok
}

// LoadLibrary reads and validates a pass library file.
func LoadLibrary(path string) (*metadata.PassLibrary, error) {
	loader, err := ForPath(path)
	if err != nil {
		return nil, err
	}
	library, err := loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load pass library %s: %w", path, err)
	}
	if err := library.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pass library %s: %w", path, err)
	}
	return library, nil
}
