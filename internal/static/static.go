// Package static embeds the bundled assets (starter gong sounds and the
// notification icon) and copies them to the data directory on first run.
package static

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/ayoisaiah/sati/internal/config"
)

const filesDir = "files"

//go:embed files/*
var embeddedFiles embed.FS

// Init copies the embedded files into the data directory. Files the user
// already has are never overwritten. It must be called after
// config.InitializePaths.
func Init() error {
	return fs.WalkDir(
		embeddedFiles,
		filesDir,
		func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				return nil
			}

			b, err := embeddedFiles.ReadFile(path)
			if err != nil {
				return err
			}

			stripped := strings.TrimPrefix(path, filesDir+"/")

			relPath := filepath.Join(
				config.Dir(),
				filepath.FromSlash(stripped),
			)

			destPath, err := xdg.DataFile(relPath)
			if err != nil {
				return err
			}

			// Only write if file does not already exist
			if _, err := os.Stat(destPath); os.IsNotExist(err) {
				if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
					return err
				}

				if err := os.WriteFile(destPath, b, 0o644); err != nil {
					return err
				}
			}

			return nil
		},
	)
}

// NotificationIconPath returns the on-disk path of the notification icon,
// or "" when it has not been copied out yet.
func NotificationIconPath() string {
	path, err := xdg.SearchDataFile(filepath.Join(config.Dir(), "icon.png"))
	if err != nil {
		return ""
	}

	return path
}
