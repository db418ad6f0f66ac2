package db

import (
	"fmt"
	"os"
	"path/filepath"
)

// findRootDir walks up from the working directory to the module root so
// the migration path resolves the same way from cmd/ and from tests.
func findRootDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		if dir == filepath.Dir(dir) {
			break
		}
		dir = filepath.Dir(dir)
	}
	return "", fmt.Errorf("go.mod not found")
}
