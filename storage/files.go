package storage

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ReadSnapshot reads a document snapshot from a yaml or json file
func ReadSnapshot(path string) (DocumentDTO, error) {
	var result DocumentDTO
	err := readYamlFile(path, &result)
	return result, err
}

// ReadRequest reads a query and its mutation from a yaml or json file
func ReadRequest(path string) (RequestDTO, error) {
	var result RequestDTO
	err := readYamlFile(path, &result)
	return result, err
}

// WriteSnapshot writes a document snapshot as yaml
func WriteSnapshot(path string, snapshot DocumentDTO) error {
	if content, err := yaml.Marshal(snapshot); err != nil {
		return err
	} else {
		return os.WriteFile(path, content, 0o644)
	}
}

// readYamlFile decodes a file. Json is valid yaml
func readYamlFile(path string, target any) error {
	if len(path) == 0 {
		return errors.New("no file to read")
	}

	content, errRead := os.ReadFile(path)
	if errRead != nil {
		return errRead
	} else if err := yaml.Unmarshal(content, target); err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}

	return nil
}
