package utils

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// LoadConfig loads the .env file from the given path, if present.
// Missing .env is not an error; the process then relies on real env vars.
func LoadConfig(path string) {
	envPath := filepath.Join(path, ".env")
	if _, err := os.Stat(envPath); err != nil {
		return
	}
	if err := godotenv.Load(envPath); err != nil {
		logrus.Warnf("[CONFIG] failed to load %s: %v", envPath, err)
	}
}

// CreateFolder creates every directory in the list, including parents.
func CreateFolder(folders ...string) error {
	for _, folder := range folders {
		if err := os.MkdirAll(folder, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// NewLeadID returns a short random lead identifier (12 hex chars).
func NewLeadID() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return hex.EncodeToString(buf)
}

// RemoveFile deletes files, ignoring those that are already gone.
func RemoveFile(paths ...string) error {
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
