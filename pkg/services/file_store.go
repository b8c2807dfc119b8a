package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var (
	ErrNoData      = errors.New("no data found")
	ErrInvalidData = errors.New("project data is not a JSON array")
	ErrNoExport    = errors.New("export not found")
)

// FileStore serves what the scraper leaves on disk: the merged project list
// and the spreadsheet export.
type FileStore struct {
	dataPath   string
	exportPath string
}

func NewFileStore(dataPath, exportPath string) *FileStore {
	return &FileStore{dataPath: dataPath, exportPath: exportPath}
}

// Projects returns the merged project list exactly as the scraper wrote it.
func (s *FileStore) Projects() (json.RawMessage, error) {
	data, err := os.ReadFile(s.dataPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoData
		}
		return nil, fmt.Errorf("failed to read project data: %w", err)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return json.RawMessage(data), nil
}

// ExportPath returns the export file path if the file exists.
func (s *FileStore) ExportPath() (string, error) {
	info, err := os.Stat(s.exportPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoExport
		}
		return "", fmt.Errorf("failed to stat export: %w", err)
	}
	if info.IsDir() {
		return "", ErrNoExport
	}
	return s.exportPath, nil
}
