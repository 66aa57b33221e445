package dataset

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/pivolan/data_visualizer/domain/models"
	"github.com/pivolan/data_visualizer/logging"
	"github.com/pivolan/go_utils"
)

var (
	ErrFileNotFound   = errors.New("file not found")
	ErrBadFileName    = errors.New("bad file name")
	specialSymbols    = regexp.MustCompile("[^a-zA-Z0-9_-]+")
	datasetExtensions = []string{".csv", ".xlsx", ".xlsm"}
	archiveExtensions = []string{".zip", ".gz", ".lz4"}
)

// Store keeps uploaded datasets in a single data folder.
type Store struct {
	dir string
}

type StoredFile struct {
	Name     string
	Path     string
	Checksum string
	Size     int64
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data folder %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Save writes the upload into the data folder, unpacking archives, and
// returns the stored dataset file.
func (s *Store) Save(name string, r io.Reader) (*StoredFile, error) {
	clean := sanitizeName(name)
	if clean == "" {
		return nil, fmt.Errorf("%w: %q", ErrBadFileName, name)
	}
	ext := strings.ToLower(filepath.Ext(clean))
	if !go_utils.InArray(ext, datasetExtensions) && !go_utils.InArray(ext, archiveExtensions) {
		return nil, fmt.Errorf("%w: only .csv and .xlsx files (or .zip, .gz, .lz4 archives) are accepted", ErrBadFileName)
	}

	path := filepath.Join(s.dir, clean)
	if err := writeFile(path, r); err != nil {
		return nil, fmt.Errorf("save %s: %w", clean, err)
	}
	path, err := unpackArchive(path)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", clean, err)
	}
	if !go_utils.InArray(strings.ToLower(filepath.Ext(path)), datasetExtensions) {
		os.Remove(path)
		return nil, fmt.Errorf("%w: archive %s does not contain a .csv or .xlsx file", ErrBadFileName, clean)
	}

	checksum, size, err := fileChecksum(path)
	if err != nil {
		return nil, err
	}
	logging.Info("stored %s (%d bytes)", path, size)
	return &StoredFile{Name: filepath.Base(path), Path: path, Checksum: checksum, Size: size}, nil
}

// List returns the dataset files of the data folder sorted by name.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if go_utils.InArray(strings.ToLower(filepath.Ext(e.Name())), datasetExtensions) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Path resolves a listed file name to its location in the data folder.
func (s *Store) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ErrBadFileName, name)
	}
	path := filepath.Join(s.dir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}
	return path, nil
}

func (s *Store) Load(name string) (*models.Dataset, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// RemoveOlderThan deletes files modified before maxAge and returns how many were removed.
func (s *Store) RemoveOlderThan(maxAge time.Time) (int, error) {
	return removeOldFiles(s.dir, maxAge)
}

func removeOldFiles(dirPath string, maxAge time.Time) (int, error) {
	files, err := os.ReadDir(dirPath)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, file := range files {
		filePath := filepath.Join(dirPath, file.Name())
		if file.IsDir() {
			n, err := removeOldFiles(filePath, maxAge)
			removed += n
			if err != nil {
				return removed, err
			}
			continue
		}
		info, err := file.Info()
		if err != nil {
			return removed, err
		}
		if info.ModTime().Before(maxAge) {
			if err := os.Remove(filePath); err != nil {
				return removed, err
			}
			removed++
			logging.Info("removed file: %s", filePath)
		}
	}
	return removed, nil
}

// sanitizeName keeps the known extensions of an upload and replaces
// special symbols in the rest of its name.
func sanitizeName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	exts := ""
	for {
		ext := strings.ToLower(filepath.Ext(base))
		if ext == "" || (!go_utils.InArray(ext, datasetExtensions) && !go_utils.InArray(ext, archiveExtensions)) {
			break
		}
		exts = ext + exts
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	stem := strings.Trim(specialSymbols.ReplaceAllString(base, "_"), "_")
	if stem == "" {
		return ""
	}
	return stem + exts
}

func fileChecksum(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()
	hasher := md5.New()
	size, err := io.Copy(hasher, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(hasher.Sum(nil)), size, nil
}
