package utils

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
)

const serverIDFile = ".server_id"

// GetPersistentServerID returns a stable per-instance ID used to tag
// cross-instance websocket broadcasts so a process can skip its own
// messages. Resolution order: explicit override, the id file under
// storagePath, a sanitized hostname, a generated id persisted for next
// boot.
func GetPersistentServerID(override, storagePath string) string {
	if override != "" {
		return override
	}

	idFile := filepath.Join(storagePath, serverIDFile)
	if data, err := os.ReadFile(idFile); err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id
		}
	}

	if hostname, err := os.Hostname(); err == nil && hostname != "" && hostname != "localhost" {
		if clean := sanitizeKeyPart(hostname); clean != "" {
			return "leadgate-" + clean
		}
	}

	randomPart := make([]byte, 4)
	rand.Read(randomPart)
	newID := "leadgate-" + hex.EncodeToString(randomPart)

	_ = os.MkdirAll(storagePath, 0755)
	_ = os.WriteFile(idFile, []byte(newID), 0644)
	return newID
}

// sanitizeKeyPart keeps only characters safe inside valkey channel names
// and pub/sub sender tags.
func sanitizeKeyPart(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return -1
	}, s)
}
