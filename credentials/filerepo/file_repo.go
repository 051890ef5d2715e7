// Package filerepo persists session credentials in a single JSON file, the on-disk
// counterpart of browser local storage for command line and desktop consumers.
package filerepo

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-kyc-client/credentials"
	"github.com/jrsteele09/go-kyc-client/internal/errors"
)

var _ credentials.Repo = (*FileRepo)(nil)

const (
	fileMode = 0o600
	dirMode  = 0o700
)

// FileRepo stores all keys in one JSON object. Writes go to a temporary file that is renamed
// over the existing file so a crash never leaves a half written file behind.
type FileRepo struct {
	path string
	lock sync.Mutex
}

// New creates a repo backed by path. The file and its directory are created on first write.
func New(path string) *FileRepo {
	return &FileRepo{path: path}
}

// Path returns the backing file location.
func (fr *FileRepo) Path() string {
	return fr.path
}

func (fr *FileRepo) Get(_ context.Context, key credentials.Key) (string, error) {
	fr.lock.Lock()
	defer fr.lock.Unlock()

	values, err := fr.load()
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", credentials.ErrNotFound
	}
	return v, nil
}

func (fr *FileRepo) Set(_ context.Context, key credentials.Key, value string) error {
	fr.lock.Lock()
	defer fr.lock.Unlock()

	values, err := fr.load()
	if err != nil {
		return err
	}
	values[key] = value
	return fr.save(values)
}

func (fr *FileRepo) Delete(_ context.Context, keys ...credentials.Key) error {
	fr.lock.Lock()
	defer fr.lock.Unlock()

	values, err := fr.load()
	if err != nil {
		// The file only ever holds session keys, so an unreadable one is discarded whole.
		values = map[credentials.Key]string{}
	}
	for _, k := range keys {
		delete(values, k)
	}
	if len(values) == 0 {
		if err := os.Remove(fr.path); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "[FileRepo Delete] remove %s", fr.path)
		}
		return nil
	}
	return fr.save(values)
}

// load reads the file. A missing file is an empty store; an unreadable one is reported so
// the session can fall back to logged out.
func (fr *FileRepo) load() (map[credentials.Key]string, error) {
	values := make(map[credentials.Key]string)
	data, err := os.ReadFile(fr.path)
	if os.IsNotExist(err) {
		return values, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "[FileRepo load] read %s", fr.path)
	}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrapf(err, "[FileRepo load] decode %s", fr.path)
	}
	return values, nil
}

func (fr *FileRepo) save(values map[credentials.Key]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "[FileRepo save] encode")
	}

	dir := filepath.Dir(fr.path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return errors.Wrapf(err, "[FileRepo save] mkdir %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return errors.Wrapf(err, "[FileRepo save] create temp")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "[FileRepo save] write")
	}
	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "[FileRepo save] chmod")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "[FileRepo save] close")
	}
	if err := os.Rename(tmp.Name(), fr.path); err != nil {
		return errors.Wrapf(err, "[FileRepo save] rename")
	}
	return nil
}
