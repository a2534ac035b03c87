package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/piwi3910/cratepanel/internal/gcode"
	"github.com/piwi3910/cratepanel/internal/model"
)

const (
	backupApp     = "cratepanel"
	backupVersion = "1.0.0"
)

// ErrNotABackup is returned when a file parses as JSON but was not written
// by ExportAllData.
var ErrNotABackup = errors.New("not a cratepanel backup")

// BackupData bundles the app config and custom G-code profiles so a shop
// setup can be moved to another machine.
type BackupData struct {
	App       string          `json:"app"`
	Version   string          `json:"version"`
	CreatedAt string          `json:"created_at"`
	Config    model.AppConfig `json:"config"`
	Profiles  []gcode.Profile `json:"profiles"`
}

// ExportAllData writes cfg and the custom profiles to one JSON file.
func ExportAllData(path string, cfg model.AppConfig, profiles []gcode.Profile) error {
	if profiles == nil {
		profiles = []gcode.Profile{}
	}
	data, err := json.MarshalIndent(BackupData{
		App:       backupApp,
		Version:   backupVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Config:    cfg,
		Profiles:  profiles,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	return nil
}

// ImportAllData reads a backup written by ExportAllData. Nothing is saved;
// the caller decides where the config and profiles go.
func ImportAllData(path string) (BackupData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return BackupData{}, fmt.Errorf("read backup: %w", err)
	}
	var backup BackupData
	if err := json.Unmarshal(data, &backup); err != nil {
		return BackupData{}, fmt.Errorf("parse backup %s: %w", path, err)
	}
	if backup.App != backupApp || backup.Version == "" {
		return BackupData{}, fmt.Errorf("%s: %w", path, ErrNotABackup)
	}
	if backup.Config.RecentJobs == nil {
		backup.Config.RecentJobs = []string{}
	}
	if backup.Profiles == nil {
		backup.Profiles = []gcode.Profile{}
	}
	return backup, nil
}
