//go:build cgo

package storage

// Драйвер "sqlite3" доступен только при CGO_ENABLED=1.
import _ "github.com/mattn/go-sqlite3"
