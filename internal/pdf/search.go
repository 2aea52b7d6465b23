package pdf

import (
	"fmt"
	"os"
	"path/filepath"
)

// ListPDFs returns the PDF files directly inside directory, sorted by name.
// Subdirectories are not descended into. Entries whose metadata cannot be
// read are skipped.
func ListPDFs(directory string) ([]FileInfo, error) {
	files, _, err := ScanPDFs(directory)
	return files, err
}

// ScanPDFs is ListPDFs that also reports how many entries the directory
// held in total, PDF or not.
func ScanPDFs(directory string) ([]FileInfo, int, error) {
	if directory == "" {
		return nil, 0, fmt.Errorf("directory cannot be empty")
	}

	entries, err := os.ReadDir(directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, fmt.Errorf("directory does not exist: %s", directory)
		}
		return nil, 0, fmt.Errorf("failed to read directory: %w", err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !IsPDFName(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, FileInfo{
			Path:         filepath.Join(directory, entry.Name()),
			Name:         entry.Name(),
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
		})
	}

	return files, len(entries), nil
}
