package service

import (
	"context"
	"errors"
	"io"
	"os"
)

// Names of the built-in checks.
const (
	CheckServer     = "server"
	CheckFilesystem = "filesystem"
)

// ServerCheck always passes: if the handler is running, so is the server.
func ServerCheck() CheckFunc {
	return func(context.Context) bool { return true }
}

// FilesystemCheck passes when at least one of dirs exists, is a directory
// and can be listed. The probe is read-only.
func FilesystemCheck(dirs ...string) CheckFunc {
	return func(context.Context) bool {
		for _, dir := range dirs {
			if readableDir(dir) {
				return true
			}
		}
		return false
	}
}

func readableDir(dir string) bool {
	f, err := os.Open(dir)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || !info.IsDir() {
		return false
	}
	// An empty directory is still readable.
	if _, err := f.Readdirnames(1); err != nil && !errors.Is(err, io.EOF) {
		return false
	}
	return true
}
