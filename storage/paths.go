package storage

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// defaultDirName is the directory holding store files when no environment
// override is set, resolved relative to the working directory.
const defaultDirName = "cache"

// ResolvePath returns the store path from the named environment variable,
// falling back to cache/<filename> under the working directory.
func ResolvePath(envVar, filename string) string {
	if v := strings.TrimSpace(os.Getenv(envVar)); v != "" {
		return v
	}
	return filepath.Join(defaultDirName, filename)
}

// EnvInt reads an integer environment variable, returning def when unset or
// unparseable.
func EnvInt(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// EnvFloat reads a float environment variable, returning def when unset or
// unparseable.
func EnvFloat(name string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
