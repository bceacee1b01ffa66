package datastore

import (
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

// BackupTarget is where the most recent feature document is saved between process runs.
type BackupTarget interface {
	// Write replaces the saved document. It must never leave a partially written document behind.
	Write(data []byte) error
	// Read returns the saved document, or found=false if there is none.
	Read() (data []byte, found bool, err error)
	// Location describes the target, for logging.
	Location() string
}

// FileBackup is a BackupTarget that stores the document in a single file.
type FileBackup struct {
	fs   afero.Fs
	path string
}

// NewFileBackup creates a file backup on the operating system's filesystem.
func NewFileBackup(path string) *FileBackup {
	return NewFileBackupOnFs(afero.NewOsFs(), path)
}

// NewFileBackupOnFs creates a file backup on the given filesystem.
func NewFileBackupOnFs(fs afero.Fs, path string) *FileBackup {
	return &FileBackup{fs: fs, path: path}
}

// Write saves data to a temporary file next to the backup file and renames it into place.
func (b *FileBackup) Write(data []byte) error {
	dir := filepath.Dir(b.path)
	if err := b.fs.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := afero.TempFile(b.fs, dir, filepath.Base(b.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if err = errors.Join(writeErr, closeErr); err != nil {
		_ = b.fs.Remove(tmpName)
		return err
	}
	if err = b.fs.Rename(tmpName, b.path); err != nil {
		_ = b.fs.Remove(tmpName)
		return err
	}
	return nil
}

// Read returns the contents of the backup file. A missing file is not an error.
func (b *FileBackup) Read() ([]byte, bool, error) {
	data, err := afero.ReadFile(b.fs, b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Location returns the file path.
func (b *FileBackup) Location() string { return b.path }
