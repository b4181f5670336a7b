package worker

import (
	"encoding/json"
	"fieldfuze-dispatch/models"
	"fmt"
	"os"
	"path/filepath"
)

// StatusManager persists the last provisioning result so a restarted
// process can report it before its first run.
type StatusManager struct {
	StatusFilePath string
}

// NewStatusManager creates a new status manager
func NewStatusManager(statusPath string) *StatusManager {
	return &StatusManager{StatusFilePath: statusPath}
}

func (sm *StatusManager) SaveStatus(result *models.ExecutionResult) error {
	if err := os.MkdirAll(filepath.Dir(sm.StatusFilePath), 0755); err != nil {
		return fmt.Errorf("failed to create status directory: %w", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	// Write atomically
	tempFile := sm.StatusFilePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp status file: %w", err)
	}
	if err := os.Rename(tempFile, sm.StatusFilePath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename status file: %w", err)
	}
	return nil
}

func (sm *StatusManager) LoadStatus() (*models.ExecutionResult, error) {
	data, err := os.ReadFile(sm.StatusFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read status file: %w", err)
	}

	var result models.ExecutionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status: %w", err)
	}
	return &result, nil
}
