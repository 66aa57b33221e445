package dataset

import (
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4"
)

// unpackArchive replaces a .zip, .gz or .lz4 file with its content and returns
// the new path. Other files are returned unchanged.
func unpackArchive(filePath string) (string, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".zip":
		return unpackZipArchive(filePath)
	case ".gz":
		return unpackGzipArchive(filePath)
	case ".lz4":
		return unpackLZ4Archive(filePath)
	}
	return filePath, nil
}

// unpackZipArchive extracts the largest file of the archive next to it.
func unpackZipArchive(filePath string) (string, error) {
	r, err := zip.OpenReader(filePath)
	if err != nil {
		return "", err
	}
	defer r.Close()

	var largestFile *zip.File
	var largestSize uint64
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if largestFile == nil || f.UncompressedSize64 > largestSize {
			largestFile = f
			largestSize = f.UncompressedSize64
		}
	}
	if largestFile == nil {
		return "", fmt.Errorf("archive %s is empty", filepath.Base(filePath))
	}

	destPath := filepath.Join(filepath.Dir(filePath), sanitizeName(filepath.Base(largestFile.Name)))
	rc, err := largestFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	if err := writeFile(destPath, rc); err != nil {
		return "", err
	}
	r.Close()

	if err := os.Remove(filePath); err != nil {
		return "", err
	}
	return destPath, nil
}

func unpackGzipArchive(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()
	gr, err := gzip.NewReader(file)
	if err != nil {
		return "", err
	}
	defer gr.Close()

	destPath := filePath[:len(filePath)-len(filepath.Ext(filePath))]
	if err := writeFile(destPath, gr); err != nil {
		return "", err
	}
	file.Close()

	if err := os.Remove(filePath); err != nil {
		return "", err
	}
	return destPath, nil
}

func unpackLZ4Archive(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	destPath := filePath[:len(filePath)-len(filepath.Ext(filePath))]
	if err := writeFile(destPath, lz4.NewReader(file)); err != nil {
		return "", err
	}
	file.Close()

	if err := os.Remove(filePath); err != nil {
		return "", err
	}
	return destPath, nil
}

func writeFile(destPath string, src io.Reader) error {
	out, err := os.Create(destPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(destPath)
		return err
	}
	return out.Close()
}
