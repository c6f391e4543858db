// Package cli implements zcircle's command-line subcommands.
package cli

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"syscall"

	"github.com/zarlcorp/core/pkg/zfilesystem"
	"github.com/zarlcorp/core/pkg/zstore"
	"github.com/zarlcorp/zcircle/internal/contact"
	"github.com/zarlcorp/zcircle/internal/store"
	"golang.org/x/term"
)

// DataDir returns the default data directory for zcircle.
func DataDir() string {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return d + "/zcircle"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".zcircle"
	}
	return home + "/.local/share/zcircle"
}

// ReadPassword prompts for a password on w and reads it without echo.
func ReadPassword(prompt string, w io.Writer) (string, error) {
	fmt.Fprint(w, prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

// ReadNewPassword prompts for a new password with confirmation.
func ReadNewPassword(w io.Writer) (string, error) {
	pass, err := ReadPassword("master password: ", w)
	if err != nil {
		return "", err
	}
	confirm, err := ReadPassword("confirm password: ", w)
	if err != nil {
		return "", err
	}
	if pass != confirm {
		return "", fmt.Errorf("passwords do not match")
	}
	return pass, nil
}

// IsFirstRun checks whether the contact book has been initialized.
func IsFirstRun(dir string) bool {
	_, err := os.Stat(dir + "/salt")
	return err != nil
}

// Book is an open contact book: the contact collection and the thumbnail
// store, both unlocked with the master password.
type Book struct {
	store      *zstore.Store
	Contacts   *zstore.Collection[contact.Contact]
	Thumbnails *store.Store
}

// OpenBook opens the contact book in dir with password.
func OpenBook(fsys zfilesystem.ReadWriteFileFS, password string) (*Book, error) {
	s, err := zstore.Open(fsys, []byte(password))
	if err != nil {
		return nil, err
	}

	col, err := zstore.NewCollection[contact.Contact](s, "contacts")
	if err != nil {
		s.Close()
		return nil, err
	}

	thumbs, err := store.Open(fsys, password)
	if err != nil {
		s.Close()
		return nil, err
	}

	return &Book{store: s, Contacts: col, Thumbnails: thumbs}, nil
}

// PromptOpenBook prompts for a password and opens the book in dir.
func PromptOpenBook(dir string) (*Book, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	var pass string
	var err error
	if IsFirstRun(dir) {
		pass, err = ReadNewPassword(os.Stderr)
	} else {
		pass, err = ReadPassword("master password: ", os.Stderr)
	}
	if err != nil {
		return nil, err
	}

	return OpenBook(zfilesystem.NewOSFileSystem(dir), pass)
}

// SortedContacts lists all contacts, newest first.
func (b *Book) SortedContacts() ([]contact.Contact, error) {
	cs, err := b.Contacts.List()
	if err != nil {
		return nil, err
	}
	// zstore.List does not guarantee order
	sort.Slice(cs, func(i, j int) bool {
		return cs[i].CreatedAt.After(cs[j].CreatedAt)
	})
	return cs, nil
}

// Close locks the book.
func (b *Book) Close() {
	b.Thumbnails.Close()
	b.store.Close()
}

func mustOpenBook() *Book {
	b, err := PromptOpenBook(DataDir())
	if err != nil {
		fatalf("%v", err)
	}
	return b
}

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatalf("encode json: %v", err)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "zcircle: "+format+"\n", args...)
	os.Exit(1)
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if strings.EqualFold(a, flag) {
			return true
		}
	}
	return false
}

// flagValue returns the value of --flag given as "--flag v" or "--flag=v".
func flagValue(args []string, flag string) (string, bool) {
	for i, a := range args {
		if v, ok := strings.CutPrefix(a, flag+"="); ok {
			return v, true
		}
		if strings.EqualFold(a, flag) && i+1 < len(args) {
			return args[i+1], true
		}
	}
	return "", false
}

// positional returns arguments that are neither flags nor flag values.
func positional(args []string, valueFlags ...string) []string {
	takesValue := make(map[string]bool, len(valueFlags))
	for _, f := range valueFlags {
		takesValue[f] = true
	}

	var out []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if strings.HasPrefix(a, "--") {
			if takesValue[a] {
				i++
			}
			continue
		}
		out = append(out, a)
	}
	return out
}

func encodeBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}
