package archive

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// TarGzCreator produces gzip-compressed tar archives. Writes go to a
// temporary file next to the destination which is renamed into place
// only after a successful flush, so a failed or cancelled creation
// leaves nothing at the destination path.
type TarGzCreator struct{}

func NewTarGzCreator() *TarGzCreator {
	return &TarGzCreator{}
}

// Create archives sourceDir into destinationPath and returns the
// archive size in bytes.
func (c *TarGzCreator) Create(ctx context.Context, sourceDir string, destinationPath string) (int64, error) {
	tmpPath := destinationPath + ".tmp"

	tmpFile, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("creating temp archive: %w", err)
	}

	if err := writeTarGz(ctx, tmpFile, sourceDir); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return 0, err
	}

	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return 0, fmt.Errorf("syncing archive: %w", err)
	}

	stat, err := tmpFile.Stat()
	if err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return 0, fmt.Errorf("stating archive: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("closing archive: %w", err)
	}

	if err := os.Rename(tmpPath, destinationPath); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("finalizing archive: %w", err)
	}

	return stat.Size(), nil
}

func writeTarGz(ctx context.Context, w io.Writer, sourceDir string) error {
	gzWriter := gzip.NewWriter(w)
	tarWriter := tar.NewWriter(gzWriter)

	base := filepath.Base(sourceDir)

	err := filepath.Walk(sourceDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		relPath, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}

		var link string
		if info.Mode()&os.ModeSymlink != 0 {
			if link, err = os.Readlink(path); err != nil {
				return err
			}
		}

		header, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(filepath.Join(base, relPath))

		if err := tarWriter.WriteHeader(header); err != nil {
			return err
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		_, err = io.Copy(tarWriter, file)
		file.Close()
		return err
	})
	if err != nil {
		return fmt.Errorf("archiving %s: %w", sourceDir, err)
	}

	if err := tarWriter.Close(); err != nil {
		return fmt.Errorf("closing tar stream: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("closing gzip stream: %w", err)
	}
	return nil
}
