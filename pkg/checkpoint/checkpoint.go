package checkpoint

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"fbsweep/pkg/logger"
	"fbsweep/pkg/models"
)

// Checkpoint represents the persisted state of a sweep run
type Checkpoint struct {
	Username     string          `json:"username"`
	Period       models.Period   `json:"period"`
	PageToken    string          `json:"page_token"`
	ProcessedIDs map[string]bool `json:"processed_ids"`
	ErroredIDs   map[string]bool `json:"errored_ids"`
	DeletedCount int             `json:"deleted_count"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Version      int             `json:"version"`
}

// IsProcessed reports whether an item has already been handled
func (c *Checkpoint) IsProcessed(itemID string) bool {
	return c.ProcessedIDs[itemID]
}

// MarkProcessed records an item as handled so it is never retried
func (c *Checkpoint) MarkProcessed(itemID string) {
	c.ProcessedIDs[itemID] = true
}

// MarkErrored records an item that exhausted its retries. Errored items
// are also marked processed so the run does not revisit them.
func (c *Checkpoint) MarkErrored(itemID string) {
	c.ErroredIDs[itemID] = true
	c.ProcessedIDs[itemID] = true
}

// SetPosition records the traversal position
func (c *Checkpoint) SetPosition(period models.Period, pageToken string) {
	c.Period = period
	c.PageToken = pageToken
}

// Manager handles checkpoint persistence
type Manager struct {
	checkpointPath string
	logger         logger.Logger
}

// NewManager creates a new checkpoint manager
func NewManager(username string) (*Manager, error) {
	dataDir, err := getDataDirectory()
	if err != nil {
		return nil, fmt.Errorf("failed to get data directory: %w", err)
	}

	checkpointsDir := filepath.Join(dataDir, "checkpoints")
	if err := os.MkdirAll(checkpointsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoints directory: %w", err)
	}

	checkpointPath := filepath.Join(checkpointsDir, fmt.Sprintf("%s.checkpoint.json", username))

	return &Manager{
		checkpointPath: checkpointPath,
		logger:         logger.GetLogger(),
	}, nil
}

// Create creates a new checkpoint positioned at the given period
func (m *Manager) Create(username string, period models.Period) (*Checkpoint, error) {
	checkpoint := &Checkpoint{
		Username:     username,
		Period:       period,
		PageToken:    "",
		ProcessedIDs: make(map[string]bool),
		ErroredIDs:   make(map[string]bool),
		DeletedCount: 0,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
		Version:      1,
	}

	if err := m.Save(checkpoint); err != nil {
		return nil, fmt.Errorf("failed to save initial checkpoint: %w", err)
	}

	m.logger.InfoWithFields("Checkpoint created", map[string]interface{}{
		"username": username,
		"period":   period.String(),
		"path":     m.checkpointPath,
	})

	return checkpoint, nil
}

// Load loads an existing checkpoint. A missing file returns (nil, nil).
// A corrupt file is treated as missing: the run restarts from scratch
// rather than aborting.
func (m *Manager) Load() (*Checkpoint, error) {
	file, err := os.Open(m.checkpointPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // No checkpoint exists
		}
		return nil, fmt.Errorf("failed to open checkpoint file: %w", err)
	}
	defer file.Close()

	var checkpoint Checkpoint
	if err := json.NewDecoder(file).Decode(&checkpoint); err != nil {
		m.logger.WithError(err).Warn("Checkpoint file is corrupt, starting fresh")
		return nil, nil
	}

	if checkpoint.ProcessedIDs == nil {
		checkpoint.ProcessedIDs = make(map[string]bool)
	}
	if checkpoint.ErroredIDs == nil {
		checkpoint.ErroredIDs = make(map[string]bool)
	}

	m.logger.InfoWithFields("Checkpoint loaded", map[string]interface{}{
		"username":   checkpoint.Username,
		"period":     checkpoint.Period.String(),
		"deleted":    checkpoint.DeletedCount,
		"updated_at": checkpoint.UpdatedAt,
	})

	return &checkpoint, nil
}

// Save saves the checkpoint to disk atomically. The previous file, if
// any, is preserved as a .bak sibling first.
func (m *Manager) Save(checkpoint *Checkpoint) error {
	checkpoint.UpdatedAt = time.Now()

	if err := m.backup(); err != nil {
		m.logger.WithError(err).Warn("Failed to back up checkpoint")
	}

	// Create temporary file
	tempPath := m.checkpointPath + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary checkpoint file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(checkpoint); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	// Ensure data is written to disk
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync checkpoint file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close checkpoint file: %w", err)
	}

	// Atomically replace the old checkpoint file
	if err := os.Rename(tempPath, m.checkpointPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace checkpoint file: %w", err)
	}

	m.logger.DebugWithFields("Checkpoint saved", map[string]interface{}{
		"username": checkpoint.Username,
		"period":   checkpoint.Period.String(),
		"deleted":  checkpoint.DeletedCount,
	})

	return nil
}

// Delete removes the checkpoint file and its backup
func (m *Manager) Delete() error {
	if err := os.Remove(m.checkpointPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	if err := os.Remove(m.checkpointPath + ".bak"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete checkpoint backup: %w", err)
	}

	m.logger.Info("Checkpoint deleted")
	return nil
}

// Exists checks if a checkpoint file exists
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.checkpointPath)
	return err == nil
}

// RecordDeleted records a confirmed deletion
func (m *Manager) RecordDeleted(checkpoint *Checkpoint, itemID string) error {
	checkpoint.MarkProcessed(itemID)
	checkpoint.DeletedCount++
	return m.Save(checkpoint)
}

// GetCheckpointInfo returns a summary of the checkpoint
func (m *Manager) GetCheckpointInfo() (map[string]interface{}, error) {
	checkpoint, err := m.Load()
	if err != nil {
		return nil, err
	}
	if checkpoint == nil {
		return nil, nil
	}

	return map[string]interface{}{
		"username":   checkpoint.Username,
		"period":     checkpoint.Period.String(),
		"deleted":    checkpoint.DeletedCount,
		"errored":    len(checkpoint.ErroredIDs),
		"created_at": checkpoint.CreatedAt,
		"updated_at": checkpoint.UpdatedAt,
		"age":        time.Since(checkpoint.UpdatedAt),
	}, nil
}

// backup copies the current checkpoint file to a .bak sibling
func (m *Manager) backup() error {
	if !m.Exists() {
		return nil // Nothing to back up
	}

	src, err := os.Open(m.checkpointPath)
	if err != nil {
		return fmt.Errorf("failed to open checkpoint for backup: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(m.checkpointPath + ".bak")
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to copy checkpoint to backup: %w", err)
	}

	return nil
}

// getDataDirectory returns the appropriate data directory for the current OS
func getDataDirectory() (string, error) {
	var dataDir string

	switch runtime.GOOS {
	case "linux":
		// Use XDG_DATA_HOME if set, otherwise ~/.local/share
		if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
			dataDir = filepath.Join(xdgDataHome, "fbsweep")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			dataDir = filepath.Join(home, ".local", "share", "fbsweep")
		}
	case "darwin":
		// macOS: ~/Library/Application Support
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, "Library", "Application Support", "fbsweep")
	case "windows":
		// Windows: %APPDATA%
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		dataDir = filepath.Join(appData, "fbsweep")
	default:
		return "", fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	return dataDir, nil
}
