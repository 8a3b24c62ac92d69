package archive

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"
	"time"
)

var ErrInvalidArchive = errors.New("invalid archive")

type Member struct {
	Name     string
	Size     int64
	Modified time.Time
}

type Archive struct {
	Path    string
	rc      *zip.ReadCloser
	members []Member
	files   map[string]*zip.File
}

// Open opens a ZIP archive and indexes its JSON members.
func Open(p string) (*Archive, error) {
	if _, err := os.Stat(p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}

	rc, err := zip.OpenReader(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArchive, p, err)
	}

	a := &Archive{
		Path:  p,
		rc:    rc,
		files: make(map[string]*zip.File),
	}
	for _, f := range rc.File {
		if !isSessionFile(f) {
			continue
		}
		a.files[f.Name] = f
		a.members = append(a.members, Member{
			Name:     f.Name,
			Size:     int64(f.UncompressedSize64),
			Modified: f.Modified,
		})
	}
	sort.Slice(a.members, func(i, j int) bool {
		return a.members[i].Name < a.members[j].Name
	})

	return a, nil
}

func isSessionFile(f *zip.File) bool {
	if f.FileInfo().IsDir() {
		return false
	}
	name := strings.ReplaceAll(f.Name, "\\", "/")
	if strings.HasPrefix(name, "__MACOSX/") || strings.HasPrefix(path.Base(name), "._") {
		return false
	}
	return strings.EqualFold(path.Ext(name), ".json")
}

// Members returns the JSON members sorted by name.
func (a *Archive) Members() []Member {
	return a.members
}

func (a *Archive) Open(name string) (io.ReadCloser, error) {
	f, ok := a.files[name]
	if !ok {
		return nil, fmt.Errorf("member not found: %s", name)
	}
	return f.Open()
}

func (a *Archive) Close() error {
	return a.rc.Close()
}

// Fingerprint returns the hex SHA-256 of the archive file.
func Fingerprint(p string) (string, error) {
	f, err := os.Open(p)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
