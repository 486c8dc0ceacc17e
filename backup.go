package tangle

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

// BackupManager guards a target's existing output file against accidental
// clobbering: before the first write to a path in a run, it copies whatever
// is already there aside with a timestamp suffix. This is not part of the
// tangle algorithm itself — it's a safety net around the filesystem-write
// step that §7 already treats as abortable per target.
type BackupManager struct{}

func NewBackupManager() *BackupManager {
	return &BackupManager{}
}

// CreateBackupOf creates a backup of path if it already exists.
//
// Returns the path to the backup file, or an empty string if no backup was created.
func (bm *BackupManager) CreateBackupOf(path string) (backupPath string, err error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("checking file existence: %w", err)
	}

	backupPath = fmt.Sprintf("%s.%s.bak", path, time.Now().Format("20060102_150405"))

	if err := bm.copyFile(path, backupPath); err != nil {
		return "", fmt.Errorf("creating backup: %w", err)
	}

	slog.Info("output file already existed, created a backup", "backup", backupPath, "output", path)
	return backupPath, nil
}

func (bm *BackupManager) copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating destination file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copying file: %w", err)
	}

	return nil
}
