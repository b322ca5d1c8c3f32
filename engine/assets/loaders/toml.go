package loaders

import (
	"bytes"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/passgraph/engine/renderer/metadata"
)

type TOMLLoader struct{}

func (l *TOMLLoader) Load(path string) (*metadata.PassLibrary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	library := &metadata.PassLibrary{}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(library); err != nil {
		return nil, err
	}
	return library, nil
}
