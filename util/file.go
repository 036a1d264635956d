package util

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// WriteJson writes JSON config object to a file creating parent directories if required
// The output JSON is pretty-formatted
func WriteJson(ctx context.Context, file string, obj interface{}) error {
	configDir, configFileName, err := prepareConfigFileDir(file)
	if err != nil {
		return fmt.Errorf("prepare config file dir: %w", err)
	}

	if ctx.Err() != nil {
		return fmt.Errorf("write json start: %w", ctx.Err())
	}

	bs, err := json.MarshalIndent(obj, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	return writeBytes(ctx, file, configDir, configFileName, bs)
}

// writeBytes replaces file atomically through a temporary file in the same
// directory, so readers never observe a partially written config
func writeBytes(ctx context.Context, file string, configDir string, configFileName string, bs []byte) error {
	tempFile, err := os.CreateTemp(configDir, ".*"+configFileName)
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tempFileName := tempFile.Name()

	defer func() {
		if _, err := os.Stat(tempFileName); err == nil {
			if err := os.Remove(tempFileName); err != nil {
				log.Warnf("failed to remove temp file %s: %v", tempFileName, err)
			}
		}
	}()

	if err := os.Chmod(tempFileName, 0600); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("set temp file permissions: %w", err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		if err := tempFile.SetDeadline(deadline); err != nil && !errors.Is(err, os.ErrNoDeadline) {
			log.Warnf("failed to set deadline: %v", err)
		}
	}

	if _, err = tempFile.Write(bs); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write: %w", err)
	}

	if err = tempFile.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tempFileName, err)
	}

	if ctx.Err() != nil {
		return fmt.Errorf("after temp file: %w", ctx.Err())
	}

	if err = os.Rename(tempFileName, file); err != nil {
		return fmt.Errorf("move %s to %s: %w", tempFileName, file, err)
	}

	return nil
}

// ReadJson reads JSON config file and maps to a provided interface
func ReadJson(file string, res interface{}) (interface{}, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bs, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	if err = json.Unmarshal(bs, &res); err != nil {
		return nil, err
	}

	return res, nil
}

// RemoveJson removes the specified JSON file if it exists
func RemoveJson(file string) error {
	if _, err := os.Stat(file); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err := os.Remove(file); err != nil {
		return fmt.Errorf("failed to remove JSON file %s: %w", file, err)
	}

	return nil
}

// prepareConfigFileDir creates the parent directory of a config file with
// owner and group access only
func prepareConfigFileDir(file string) (string, string, error) {
	configDir, configFileName := filepath.Split(file)
	if configDir == "" {
		return filepath.Dir(file), configFileName, nil
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "", "", err
	}

	return configDir, configFileName, nil
}
