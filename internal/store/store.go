// Package store provides an encrypted thumbnail store backed by a filesystem.
// Thumbnails are stored as individual AES-256-GCM encrypted files.
package store

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/zarlcorp/core/pkg/zcrypto"
	"github.com/zarlcorp/core/pkg/zfilesystem"
)

const (
	rootDir     = "thumbnails"
	saltFile    = rootDir + "/salt"
	verifyFile  = rootDir + "/verify"
	blobsDir    = rootDir + "/blobs"
	verifyToken = "zcircle-thumbnail-store-ok"

	// RefPrefix marks thumbnail references that resolve to this store.
	RefPrefix = "thumb:"
)

// ErrNotFound is returned when a thumbnail does not exist.
var ErrNotFound = errors.New("thumbnail not found")

// Thumbnail is an image stored for a contact.
type Thumbnail struct {
	ID        string    `json:"id"`
	MIME      string    `json:"mime"`
	Data      []byte    `json:"data"`
	CreatedAt time.Time `json:"created_at"`
}

// Store manages encrypted thumbnail files on a filesystem.
type Store struct {
	fs  zfilesystem.ReadWriteFileFS
	key []byte
}

// Open opens or initializes an encrypted thumbnail store.
// On first run, it creates the salt and verification token.
// On subsequent runs, it verifies the password by decrypting the token.
func Open(fsys zfilesystem.ReadWriteFileFS, password string) (*Store, error) {
	if err := fsys.MkdirAll(blobsDir, 0o700); err != nil {
		return nil, fmt.Errorf("open store: create thumbnails dir: %w", err)
	}

	salt, err := readOrCreateSalt(fsys)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	key, _, err := zcrypto.DeriveKey([]byte(password), salt)
	if err != nil {
		return nil, fmt.Errorf("open store: derive key: %w", err)
	}

	if err := verifyOrCreateToken(fsys, key); err != nil {
		zcrypto.Erase(key)
		return nil, fmt.Errorf("open store: %w", err)
	}

	return &Store{fs: fsys, key: key}, nil
}

// Ref returns the avatar reference for a stored thumbnail.
func Ref(id string) string {
	return RefPrefix + id
}

// IDFromRef returns the thumbnail id of a store reference.
func IDFromRef(ref string) (string, bool) {
	id, ok := strings.CutPrefix(ref, RefPrefix)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// Put encrypts and writes a thumbnail to disk.
func (s *Store) Put(id, mime string, data []byte) error {
	th := Thumbnail{ID: id, MIME: mime, Data: data, CreatedAt: time.Now().UTC()}

	plain, err := json.Marshal(th)
	if err != nil {
		return fmt.Errorf("put thumbnail: marshal: %w", err)
	}

	ct, err := zcrypto.Encrypt(s.key, plain)
	if err != nil {
		return fmt.Errorf("put thumbnail: encrypt: %w", err)
	}

	if err := s.fs.WriteFile(blobPath(id), ct, 0o600); err != nil {
		return fmt.Errorf("put thumbnail: write %s: %w", id, err)
	}

	return nil
}

// Get decrypts and returns a single thumbnail by ID.
func (s *Store) Get(id string) (Thumbnail, error) {
	ct, err := s.fs.ReadFile(blobPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Thumbnail{}, ErrNotFound
		}
		return Thumbnail{}, fmt.Errorf("get thumbnail: read %s: %w", id, err)
	}

	return s.decrypt(ct)
}

// List returns the IDs of all stored thumbnails in lexical order.
func (s *Store) List() ([]string, error) {
	var ids []string

	err := s.fs.WalkDir(blobsDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) != ".enc" {
			return nil
		}

		ids = append(ids, strings.TrimSuffix(filepath.Base(path), ".enc"))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list thumbnails: %w", err)
	}

	sort.Strings(ids)
	return ids, nil
}

// Delete removes a thumbnail file by ID.
func (s *Store) Delete(id string) error {
	if err := s.fs.Remove(blobPath(id)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("delete thumbnail: remove %s: %w", id, err)
	}

	return nil
}

// Load resolves a thumbnail reference to an SVG href. Store references
// become data URIs; anything else is returned unchanged.
func (s *Store) Load(ref string) (string, error) {
	id, ok := IDFromRef(ref)
	if !ok {
		return ref, nil
	}

	th, err := s.Get(id)
	if err != nil {
		return "", fmt.Errorf("load %s: %w", ref, err)
	}

	return "data:" + th.MIME + ";base64," + base64.StdEncoding.EncodeToString(th.Data), nil
}

// Close erases the encryption key from memory.
func (s *Store) Close() error {
	zcrypto.Erase(s.key)
	s.key = nil
	return nil
}

func (s *Store) decrypt(ct []byte) (Thumbnail, error) {
	data, err := zcrypto.Decrypt(s.key, ct)
	if err != nil {
		return Thumbnail{}, fmt.Errorf("decrypt thumbnail: %w", err)
	}

	var th Thumbnail
	if err := json.Unmarshal(data, &th); err != nil {
		return Thumbnail{}, fmt.Errorf("unmarshal thumbnail: %w", err)
	}

	return th, nil
}

func readOrCreateSalt(fsys zfilesystem.ReadWriteFileFS) ([]byte, error) {
	salt, err := fsys.ReadFile(saltFile)
	if err == nil {
		return salt, nil
	}

	salt, err = zcrypto.RandBytes(zcrypto.SaltSize)
	if err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	if err := fsys.WriteFile(saltFile, salt, 0o600); err != nil {
		return nil, fmt.Errorf("write salt: %w", err)
	}

	return salt, nil
}

func verifyOrCreateToken(fsys zfilesystem.ReadWriteFileFS, key []byte) error {
	ct, err := fsys.ReadFile(verifyFile)
	if err != nil {
		// first run, create the verification token
		ct, err = zcrypto.Encrypt(key, []byte(verifyToken))
		if err != nil {
			return fmt.Errorf("encrypt verify token: %w", err)
		}

		if err := fsys.WriteFile(verifyFile, ct, 0o600); err != nil {
			return fmt.Errorf("write verify token: %w", err)
		}

		return nil
	}

	plain, err := zcrypto.Decrypt(key, ct)
	if err != nil || string(plain) != verifyToken {
		return errors.New("wrong password")
	}

	return nil
}

func blobPath(id string) string {
	return blobsDir + "/" + id + ".enc"
}
