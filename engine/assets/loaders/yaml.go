package loaders

import (
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/spaghettifunk/passgraph/engine/renderer/metadata"
)

type YAMLLoader struct{}

func (l *YAMLLoader) Load(path string) (*metadata.PassLibrary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	library := &metadata.PassLibrary{}
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(library); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return library, nil
}
