package params

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Parse reads a YAML patch. Categories and fields the document leaves out
// keep their default values.
func Parse(data []byte) (State, error) {
	s := Defaults()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("parse patch: %w", err)
	}
	if err := s.Validate(); err != nil {
		return State{}, err
	}
	return s, nil
}

func Load(path string) (State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return State{}, fmt.Errorf("read patch: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return State{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func Marshal(s State) ([]byte, error) {
	return yaml.Marshal(s)
}
