package dataset

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pierrec/lz4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	return s
}

func TestStoreSaveAndList(t *testing.T) {
	s := newTestStore(t)

	saved, err := s.Save("My Sales (2024).csv", strings.NewReader(salesCSV))
	require.NoError(t, err)
	assert.Equal(t, "My_Sales_2024.csv", saved.Name)
	assert.Len(t, saved.Checksum, 32)
	assert.Equal(t, int64(len(salesCSV)), saved.Size)

	_, err = s.Save("b.csv", strings.NewReader("x\n1\n"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "readme.txt"), []byte("hi"), 0644))

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"My_Sales_2024.csv", "b.csv"}, names)

	ds, err := s.Load("My_Sales_2024.csv")
	require.NoError(t, err)
	assert.Equal(t, 3, ds.RowCount())
}

func TestStoreSaveRejects(t *testing.T) {
	s := newTestStore(t)
	tests := []struct {
		name string
		file string
	}{
		{"unsupported extension", "notes.json"},
		{"no stem", "....csv"},
		{"no extension", "data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Save(tt.file, strings.NewReader("a\n1\n"))
			assert.True(t, errors.Is(err, ErrBadFileName))
		})
	}
}

func TestStorePath(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Save("a.csv", strings.NewReader("a\n1\n"))
	require.NoError(t, err)

	path, err := s.Path("a.csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Dir(), "a.csv"), path)

	_, err = s.Path("../a.csv")
	assert.True(t, errors.Is(err, ErrBadFileName))
	_, err = s.Path("missing.csv")
	assert.True(t, errors.Is(err, ErrFileNotFound))
}

func TestStoreSaveArchives(t *testing.T) {
	var zipBuf bytes.Buffer
	zw := zip.NewWriter(&zipBuf)
	small, err := zw.Create("small.txt")
	require.NoError(t, err)
	_, err = small.Write([]byte("x"))
	require.NoError(t, err)
	big, err := zw.Create("inner/sales.csv")
	require.NoError(t, err)
	_, err = big.Write([]byte(salesCSV))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	var gzBuf bytes.Buffer
	gw := gzip.NewWriter(&gzBuf)
	_, err = gw.Write([]byte(salesCSV))
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	var lzBuf bytes.Buffer
	lw := lz4.NewWriter(&lzBuf)
	_, err = lw.Write([]byte(salesCSV))
	require.NoError(t, err)
	require.NoError(t, lw.Close())

	tests := []struct {
		name     string
		file     string
		content  []byte
		wantName string
	}{
		{"zip", "upload.zip", zipBuf.Bytes(), "sales.csv"},
		{"gzip", "sales.csv.gz", gzBuf.Bytes(), "sales.csv"},
		{"lz4", "report.csv.lz4", lzBuf.Bytes(), "report.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			saved, err := s.Save(tt.file, bytes.NewReader(tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, saved.Name)

			names, err := s.List()
			require.NoError(t, err)
			assert.Equal(t, []string{tt.wantName}, names)
			_, err = os.Stat(filepath.Join(s.Dir(), tt.file))
			assert.True(t, os.IsNotExist(err))

			ds, err := s.Load(saved.Name)
			require.NoError(t, err)
			assert.Equal(t, 3, ds.RowCount())
		})
	}
}

func TestStoreRemoveOlderThan(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Save("old.csv", strings.NewReader("a\n1\n"))
	require.NoError(t, err)
	_, err = s.Save("new.csv", strings.NewReader("a\n1\n"))
	require.NoError(t, err)
	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(s.Dir(), "old.csv"), past, past))

	removed, err := s.RemoveOlderThan(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"new.csv"}, names)
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"sales.csv", "sales.csv"},
		{"Sales Report.CSV", "Sales_Report.csv"},
		{"../../etc/passwd.csv", "passwd.csv"},
		{`C:\Users\me\data.xlsx`, "data.xlsx"},
		{"data.csv.gz", "data.csv.gz"},
		{"???.csv", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeName(tt.in))
		})
	}
}
