// Package configutil reads layered json5 configuration. A config file
// <name>.<ext> may sit next to a <name>.local.<ext> overlay; the local
// file is meant for per-machine values and wins field by field.
package configutil

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

func localName(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + ".local" + ext
}

// readLayer parses one file into T. A missing or empty file is not an
// error, it just reports found=false.
func readLayer[T any](path string) (out T, found bool, err error) {
	buf, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return out, false, nil
	}
	if err != nil {
		return out, false, err
	}
	if len(buf) == 0 {
		return out, false, nil
	}
	if err := json5.Unmarshal(buf, &out); err != nil {
		return out, false, fmt.Errorf("parsing %s: %w", path, err)
	}
	return out, true, nil
}

// ReadConfig reads name and merges its .local overlay on top. When
// neither file exists it returns os.ErrNotExist so callers can fall
// back to defaults.
func ReadConfig[T any](name string) (T, error) {
	merged, found, err := readLayer[T](name)
	if err != nil {
		return merged, err
	}

	overlayPath := localName(name)
	overlay, overlayFound, err := readLayer[T](overlayPath)
	if err != nil {
		return merged, err
	}
	if overlayFound {
		if err := mergo.Merge(&merged, overlay, mergo.WithOverride); err != nil {
			return merged, err
		}
		slog.Info("applying local config overrides", "path", overlayPath)
	}

	if !found && !overlayFound {
		return merged, os.ErrNotExist
	}
	return merged, nil
}

// ReadRecursively walks from the working directory up toward the
// filesystem root and returns the first config matching name.
func ReadRecursively[T any](name string) (T, error) {
	var zero T

	dir, err := os.Getwd()
	if err != nil {
		return zero, err
	}
	for {
		config, err := ReadConfig[T](filepath.Join(dir, name))
		if !errors.Is(err, os.ErrNotExist) {
			return config, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return zero, os.ErrNotExist
		}
		dir = parent
	}
}
