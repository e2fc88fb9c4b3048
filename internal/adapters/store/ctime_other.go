//go:build !linux && !darwin && !freebsd && !netbsd

package store

import (
	"io/fs"
	"time"
)

// No portable ctime here; the modification time is the closest substitute
func changeTime(info fs.FileInfo) time.Time {
	return info.ModTime()
}
