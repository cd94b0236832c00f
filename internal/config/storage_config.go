package config

import (
	"os"
	"path/filepath"
)

type StorageBackend string

const (
	StorageFile   StorageBackend = "file"
	StorageRedis  StorageBackend = "redis"
	StorageMemory StorageBackend = "memory"
	StorageSQLite StorageBackend = "sqlite"
)

type StorageConfig interface {
	GetStorageBackend() StorageBackend
	GetSessionDir() string
	GetSQLitePath() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetSessionPassphrase() string
}

type Storage struct{}

var _ StorageConfig = Storage{}

func (Storage) GetStorageBackend() StorageBackend {
	return StorageBackend(GetEnv("SESSION_STORE", string(StorageFile)))
}

// GetSessionDir defaults to <user config dir>/book-inventory.
func (Storage) GetSessionDir() string {
	if dir := os.Getenv("SESSION_DIR"); dir != "" {
		return dir
	}
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "book-inventory")
}

// GetSQLitePath defaults to sessions.db inside the session directory.
func (s Storage) GetSQLitePath() string {
	return GetEnv("SESSION_DB", filepath.Join(s.GetSessionDir(), "sessions.db"))
}

func (Storage) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Storage) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Storage) GetRedisDB() int {
	return GetEnvInt("REDIS_DB", 0)
}

// GetSessionPassphrase enables at-rest encryption of the session slot when set.
func (Storage) GetSessionPassphrase() string {
	return GetEnv("SESSION_PASSPHRASE", "")
}
