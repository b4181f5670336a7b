package worker

import (
	"encoding/json"
	"errors"
	"fieldfuze-dispatch/models"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ErrLockHeld is returned when another owner holds an unexpired lock.
var ErrLockHeld = errors.New("provisioning lock held by another owner")

// LockManager serializes provisioning runs of processes sharing a host
// through a lock file.
type LockManager struct {
	LockFilePath string
	LockTimeout  time.Duration
	Environment  string

	now func() time.Time
}

// NewLockManager creates a new lock manager
func NewLockManager(lockPath string, timeout time.Duration, env string) *LockManager {
	return &LockManager{
		LockFilePath: lockPath,
		LockTimeout:  timeout,
		Environment:  env,
		now:          time.Now,
	}
}

// AcquireLock takes the lock for ownerID. A lock already held by the same
// owner is extended; an expired lock of any owner is replaced.
func (lm *LockManager) AcquireLock(ownerID string) (*models.LockInfo, error) {
	if err := os.MkdirAll(filepath.Dir(lm.LockFilePath), 0755); err != nil {
		return nil, err
	}

	now := lm.now()
	if existing, err := lm.readLockFile(); err == nil && now.Before(existing.ExpiresAt) {
		if existing.Owner != ownerID || existing.Environment != lm.Environment {
			return nil, fmt.Errorf("%w: %s until %s", ErrLockHeld, existing.Owner, existing.ExpiresAt.Format(time.RFC3339))
		}
		existing.ExpiresAt = now.Add(lm.LockTimeout)
		if err := lm.writeLockFile(existing); err != nil {
			return nil, fmt.Errorf("failed to extend lock: %w", err)
		}
		return existing, nil
	}

	lockInfo := &models.LockInfo{
		ID:          "infra-lock-" + uuid.NewString(),
		Owner:       ownerID,
		AcquiredAt:  now,
		ExpiresAt:   now.Add(lm.LockTimeout),
		Environment: lm.Environment,
	}
	if err := lm.writeLockFile(lockInfo); err != nil {
		return nil, fmt.Errorf("failed to create lock file: %w", err)
	}
	return lockInfo, nil
}

// ReleaseLock removes the lock if lockInfo's owner still holds it.
func (lm *LockManager) ReleaseLock(lockInfo *models.LockInfo) error {
	current, err := lm.readLockFile()
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read lock file: %w", err)
	}

	if current.Owner != lockInfo.Owner {
		return fmt.Errorf("cannot release lock owned by %s", current.Owner)
	}
	if err := os.Remove(lm.LockFilePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return nil
}

func (lm *LockManager) readLockFile() (*models.LockInfo, error) {
	data, err := os.ReadFile(lm.LockFilePath)
	if err != nil {
		return nil, err
	}

	var lockInfo models.LockInfo
	if err := json.Unmarshal(data, &lockInfo); err != nil {
		return nil, fmt.Errorf("failed to parse lock file: %w", err)
	}
	return &lockInfo, nil
}

func (lm *LockManager) writeLockFile(lockInfo *models.LockInfo) error {
	data, err := json.MarshalIndent(lockInfo, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize lock info: %w", err)
	}

	tempFile := lm.LockFilePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp lock file: %w", err)
	}
	if err := os.Rename(tempFile, lm.LockFilePath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temp lock file: %w", err)
	}
	return nil
}
