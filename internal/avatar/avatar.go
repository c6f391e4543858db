// Package avatar decides how a contact circle is drawn: a thumbnail image,
// an initial, the default icon, or the unknown-user image, on a background
// color derived from the contact or address.
//
// Render is pure. Encoders (EncodeSVG, the terminal badge in tui) turn the
// returned Element into output.
package avatar

import "github.com/zarlcorp/zcircle/internal/contact"

// DefaultSize is the icon size in pixels when Props.Size is zero.
const DefaultSize = 40

// UnknownName is the display name the contact source assigns to numbers
// that are not saved in the address book.
const UnknownName = "Mobile #"

// Variant identifies which visual an Element carries.
type Variant int

const (
	VariantThumbnail Variant = iota + 1
	VariantInitials
	VariantDefaultIcon
	VariantUnknownUser
)

func (v Variant) String() string {
	switch v {
	case VariantThumbnail:
		return "thumbnail"
	case VariantInitials:
		return "initials"
	case VariantDefaultIcon:
		return "default-icon"
	case VariantUnknownUser:
		return "unknown-user"
	}
	return "invalid"
}

// Fit is the image resize mode.
type Fit string

const (
	FitNone  Fit = ""
	FitCover Fit = "cover"
)

// Props is the identity descriptor plus rendering hints.
// Name is nil when no name is known; an empty Address or ThumbnailPath is
// treated as absent.
type Props struct {
	Name          *string
	Contact       *contact.Contact
	Address       string
	Size          int
	ThumbnailPath string
}

// Container is the circular frame around the visual. Foreground is the
// color inherited by text inside it.
type Container struct {
	Size       int
	Radius     float64
	Background Color
	Foreground Color
}

// Image describes a rendered image.
type Image struct {
	Source string
	Width  int
	Height int
	Radius float64
	Fit    Fit
}

// Text describes a rendered label. Its color comes from the container.
type Text struct {
	Value    string
	FontSize float64
}

// Element is the visual tree for one avatar. Exactly one of Image or Text is
// set for the image and initials variants; neither for the default icon.
type Element struct {
	Container Container
	Variant   Variant
	Image     *Image
	Text      *Text
}

// Renderer renders avatars with a given contact hasher.
type Renderer struct {
	hasher contact.Hasher
}

// NewRenderer creates a renderer. A nil hasher uses contact.NameHasher.
func NewRenderer(h contact.Hasher) *Renderer {
	if h == nil {
		h = contact.NameHasher
	}
	return &Renderer{hasher: h}
}

var defaultRenderer = NewRenderer(nil)

// Render renders p with the default renderer.
func Render(p Props) Element {
	return defaultRenderer.Render(p)
}

// Render chooses the visual for p. The first matching branch wins:
// thumbnail, default icon when no name is known, the initial, and finally
// the unknown-user image.
func (r *Renderer) Render(p Props) Element {
	size := p.iconSize()
	el := Element{
		Container: Container{
			Size:       size,
			Radius:     float64(size) / 2,
			Background: r.background(p),
			Foreground: White,
		},
	}

	if thumb := p.thumbnail(); thumb != "" {
		el.Variant = VariantThumbnail
		el.Image = &Image{
			Source: thumb,
			Width:  size,
			Height: size,
			Radius: float64(size) / 2,
			Fit:    FitCover,
		}
		return el
	}

	if p.Name == nil {
		el.Variant = VariantDefaultIcon
		return el
	}

	if *p.Name != UnknownName {
		el.Variant = VariantInitials
		el.Text = &Text{
			Value:    Initials(p.Contact, p.Name),
			FontSize: float64(size) / 2,
		}
		return el
	}

	el.Variant = VariantUnknownUser
	el.Image = &Image{
		Source: UnknownUserSource,
		Width:  size,
		Height: size,
	}
	return el
}

// background picks the contact color, then the address color, then the
// first palette entry.
func (r *Renderer) background(p Props) Color {
	if p.Contact != nil {
		return ContactColor(*p.Contact, r.hasher)
	}
	if p.Address != "" {
		return AddressColor(p.Address)
	}
	return Palette[0]
}

func (p Props) iconSize() int {
	if p.Size > 0 {
		return p.Size
	}
	return DefaultSize
}

// thumbnail returns the explicit override, else the contact's thumbnail.
func (p Props) thumbnail() string {
	if p.ThumbnailPath != "" {
		return p.ThumbnailPath
	}
	if p.Contact != nil {
		return p.Contact.ThumbnailPath
	}
	return ""
}

// Name returns a pointer to name, for building Props literals.
func Name(name string) *string {
	return &name
}
