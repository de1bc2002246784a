package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// Ключи кеша
func CacheKeyAPIKey(key string) string { return "apikey:" + sha256hex(key) }
func CacheKeyUploadLock(version VersionID, filename string) string {
	return "upload:" + version.String() + ":" + sha256hex(filename)
}

func sha256hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
