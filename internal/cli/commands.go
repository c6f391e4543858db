package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rivo/uniseg"
	"github.com/zarlcorp/zcircle/internal/avatar"
	"github.com/zarlcorp/zcircle/internal/contact"
	"github.com/zarlcorp/zcircle/internal/forget"
	"github.com/zarlcorp/zcircle/internal/server"
	"github.com/zarlcorp/zcircle/internal/store"
	"gopkg.in/yaml.v3"
)

// CmdRender writes an avatar SVG to stdout.
func CmdRender(args []string) {
	p, err := propsFromFlags(args)
	if err != nil {
		fatalf("render: %v", err)
	}

	var book *Book
	if id, ok := flagValue(args, "--contact"); ok {
		book = mustOpenBook()
		defer book.Close()

		c, err := book.Contacts.Get(id)
		if err != nil {
			fatalf("render: contact %s: %v", id, err)
		}
		p.Contact = &c
		if p.Name == nil {
			p.Name = avatar.Name(c.DisplayName)
		}
	}

	if err := avatar.EncodeSVG(os.Stdout, avatar.Render(p), Loader(book)); err != nil {
		fatalf("render: %v", err)
	}
}

// CmdAdd saves a new contact, optionally with a thumbnail image file.
func CmdAdd(args []string) {
	name, ok := flagValue(args, "--name")
	if !ok || strings.TrimSpace(name) == "" {
		fatalf("add: --name is required")
	}
	address, _ := flagValue(args, "--address")

	book := mustOpenBook()
	defer book.Close()

	c := contact.Contact{
		ID:          contact.NewID(),
		DisplayName: strings.TrimSpace(name),
		Address:     strings.TrimSpace(address),
		CreatedAt:   time.Now().UTC(),
	}

	if path, ok := flagValue(args, "--thumbnail"); ok {
		ref, err := importThumbnail(book.Thumbnails, c.ID, path)
		if err != nil {
			fatalf("add: %v", err)
		}
		c.ThumbnailPath = ref
	}

	if err := book.Contacts.Put(c.ID, c); err != nil {
		fatalf("add: save: %v", err)
	}
	fmt.Println(c.ID)
}

// CmdList lists all saved contacts with their avatar color and variant.
func CmdList(args []string) {
	book := mustOpenBook()
	defer book.Close()

	cs, err := book.SortedContacts()
	if err != nil {
		fatalf("list: %v", err)
	}

	if len(cs) == 0 {
		fmt.Println("no saved contacts")
		return
	}

	if hasFlag(args, "--json") {
		printJSON(os.Stdout, cs)
		return
	}

	for _, c := range cs {
		el := avatar.Render(ContactProps(c))
		fmt.Printf("  %-10s %-24s %-16s %s %s\n",
			c.ID,
			truncate(c.DisplayName, 24),
			truncate(c.Address, 16),
			el.Container.Background,
			el.Variant,
		)
	}
}

// CmdForget deletes a saved contact and its stored thumbnail.
func CmdForget(id string) {
	book := mustOpenBook()
	defer book.Close()

	c, err := book.Contacts.Get(id)
	if err != nil {
		fatalf("forget: %s: %v", id, err)
	}

	result := forget.Execute(forget.Request{
		Contact:    c,
		Contacts:   book.Contacts,
		Thumbnails: book.Thumbnails,
	})
	fmt.Println(result.Summary())
	if result.HasErrors() {
		os.Exit(1)
	}
}

// CmdSample generates and prints a sample contact.
func CmdSample(args []string) {
	c := contact.NewGenerator().Generate()

	if hasFlag(args, "--json") {
		printJSON(os.Stdout, c)
	} else {
		fmt.Printf("  id:       %s\n", c.ID)
		fmt.Printf("  name:     %s\n", c.DisplayName)
		fmt.Printf("  address:  %s\n", c.Address)
		fmt.Printf("  color:    %s\n", avatar.Render(ContactProps(c)).Container.Background)
	}

	if hasFlag(args, "--save") {
		book := mustOpenBook()
		defer book.Close()

		if err := book.Contacts.Put(c.ID, c); err != nil {
			fatalf("save: %v", err)
		}
		fmt.Fprintln(os.Stderr, "saved")
	}
}

// CmdImport saves every contact listed in a YAML file.
func CmdImport(args []string) {
	files := positional(args)
	if len(files) != 1 {
		fatalf("usage: zcircle import <contacts.yaml>")
	}

	data, err := os.ReadFile(files[0])
	if err != nil {
		fatalf("import: %v", err)
	}

	cs, err := parseImport(data, time.Now().UTC())
	if err != nil {
		fatalf("import: %v", err)
	}

	book := mustOpenBook()
	defer book.Close()

	for _, c := range cs {
		if err := book.Contacts.Put(c.ID, c); err != nil {
			fatalf("import: save %s: %v", c.ID, err)
		}
	}
	fmt.Printf("imported %d contacts\n", len(cs))
}

// CmdServe serves avatars over HTTP until ctx is done.
func CmdServe(ctx context.Context, args []string) {
	addr, ok := flagValue(args, "--addr")
	if !ok {
		addr = ":8080"
	}

	book := mustOpenBook()
	defer book.Close()

	srv := server.New(server.Config{
		Addr:     addr,
		Contacts: book.Contacts,
		Loader:   ServeLoader(book),
		Logger:   slog.Default(),
	})
	if err := srv.Run(ctx); err != nil {
		fatalf("serve: %v", err)
	}
}

// ContactProps builds render props for a saved contact.
func ContactProps(c contact.Contact) avatar.Props {
	return avatar.Props{
		Name:    avatar.Name(c.DisplayName),
		Contact: &c,
		Address: c.Address,
	}
}

// ServeLoader resolves store references only. References arrive from HTTP
// clients, so local paths pass through as hrefs and are never read.
func ServeLoader(b *Book) avatar.ImageLoader {
	if b == nil || b.Thumbnails == nil {
		return avatar.PassthroughLoader
	}
	return b.Thumbnails
}

// Loader resolves store references through the book's thumbnail store and
// local file paths to data URIs. Anything else passes through. It is for
// references typed by the local user; servers use ServeLoader.
func Loader(b *Book) avatar.ImageLoader {
	return avatar.LoaderFunc(func(ref string) (string, error) {
		if _, ok := store.IDFromRef(ref); ok {
			if b == nil {
				return "", fmt.Errorf("load %s: contact book not open", ref)
			}
			return b.Thumbnails.Load(ref)
		}
		return loadFile(ref)
	})
}

func loadFile(ref string) (string, error) {
	data, err := os.ReadFile(ref)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ref, nil
		}
		return "", fmt.Errorf("load %s: %w", ref, err)
	}
	return "data:" + http.DetectContentType(data) + ";base64," + encodeBase64(data), nil
}

func importThumbnail(s *store.Store, id, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read thumbnail: %w", err)
	}
	if err := s.Put(id, http.DetectContentType(data), data); err != nil {
		return "", err
	}
	return store.Ref(id), nil
}

// propsFromFlags builds render props from --name, --address, --size and
// --thumbnail. A missing --name leaves the name absent.
func propsFromFlags(args []string) (avatar.Props, error) {
	var p avatar.Props

	if name, ok := flagValue(args, "--name"); ok {
		p.Name = avatar.Name(name)
	}
	p.Address, _ = flagValue(args, "--address")
	p.ThumbnailPath, _ = flagValue(args, "--thumbnail")

	if raw, ok := flagValue(args, "--size"); ok {
		size, err := strconv.Atoi(raw)
		if err != nil || size <= 0 {
			return avatar.Props{}, fmt.Errorf("invalid size %q", raw)
		}
		p.Size = size
	}

	return p, nil
}

// parseImport decodes a YAML list of contacts, assigning missing ids and
// creation times.
func parseImport(data []byte, now time.Time) ([]contact.Contact, error) {
	var cs []contact.Contact
	if err := yaml.Unmarshal(data, &cs); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	for i := range cs {
		c := &cs[i]
		c.DisplayName = strings.TrimSpace(c.DisplayName)
		if c.DisplayName == "" && c.Address == "" {
			return nil, fmt.Errorf("entry %d: display_name or address is required", i+1)
		}
		if c.ID == "" {
			c.ID = contact.NewID()
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
	}

	return cs, nil
}

// truncate shortens s to max user-perceived characters, marking the cut
// with an ellipsis.
func truncate(s string, max int) string {
	if uniseg.GraphemeClusterCount(s) <= max {
		return s
	}

	var b strings.Builder
	g := uniseg.NewGraphemes(s)
	for n := 0; n < max-1 && g.Next(); n++ {
		b.WriteString(g.Str())
	}
	return b.String() + "…"
}
