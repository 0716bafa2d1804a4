// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/wdfconv/pkg/types"
)

// WriteReport writes r as YAML to path, creating parent directories.
func WriteReport(path string, r types.BatchReport) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
	}

	data, err := yaml.Marshal(&r)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}

// ReadReport loads a report written by WriteReport.
func ReadReport(path string) (types.BatchReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.BatchReport{}, fmt.Errorf("reading report %s: %w", path, err)
	}
	var r types.BatchReport
	if err := yaml.Unmarshal(data, &r); err != nil {
		return types.BatchReport{}, fmt.Errorf("parsing report %s: %w", path, err)
	}
	return r, nil
}
