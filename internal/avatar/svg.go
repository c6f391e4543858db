package avatar

import (
	_ "embed"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"hash/fnv"
	"io"
	"strconv"
	"strings"
)

// UnknownUserSource is the image source of the unknown-user variant.
const UnknownUserSource = "asset:unknown-user"

//go:embed assets/unknown_user.svg
var unknownUserSVG []byte

//go:embed assets/default_icon.svg
var defaultIconSVG []byte

// ImageLoader resolves a thumbnail reference to an href usable in SVG.
type ImageLoader interface {
	Load(ref string) (string, error)
}

// LoaderFunc adapts a function to the ImageLoader interface.
type LoaderFunc func(ref string) (string, error)

func (f LoaderFunc) Load(ref string) (string, error) { return f(ref) }

// PassthroughLoader uses references as hrefs unchanged.
var PassthroughLoader ImageLoader = LoaderFunc(func(ref string) (string, error) {
	return ref, nil
})

// EncodeSVG writes el as a standalone SVG document. A nil loader is
// PassthroughLoader.
func EncodeSVG(w io.Writer, el Element, loader ImageLoader) error {
	if loader == nil {
		loader = PassthroughLoader
	}

	body, err := svgBody(el, loader)
	if err != nil {
		return fmt.Errorf("encode svg: %w", err)
	}

	size := strconv.Itoa(el.Container.Size)
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`, size, size, size, size)
	fmt.Fprintf(&b, `<rect width="%s" height="%s" rx="%s" fill="%s"/>`,
		size, size, num(el.Container.Radius), attr(string(el.Container.Background)))
	b.WriteString(body)
	b.WriteString("</svg>\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("encode svg: write: %w", err)
	}
	return nil
}

// SVG returns el encoded with EncodeSVG.
func SVG(el Element, loader ImageLoader) (string, error) {
	var b strings.Builder
	if err := EncodeSVG(&b, el, loader); err != nil {
		return "", err
	}
	return b.String(), nil
}

func svgBody(el Element, loader ImageLoader) (string, error) {
	switch el.Variant {
	case VariantThumbnail:
		href, err := loader.Load(el.Image.Source)
		if err != nil {
			return "", fmt.Errorf("load thumbnail %s: %w", el.Image.Source, err)
		}
		return thumbnailSVG(*el.Image, href), nil

	case VariantInitials:
		return initialsSVG(el.Container, *el.Text), nil

	case VariantDefaultIcon:
		return defaultIconMarkup(el.Container), nil

	case VariantUnknownUser:
		img := *el.Image
		return fmt.Sprintf(`<image href="%s" width="%d" height="%d"/>`,
			dataURI("image/svg+xml", unknownUserSVG), img.Width, img.Height), nil
	}

	return "", fmt.Errorf("unknown variant %d", el.Variant)
}

func thumbnailSVG(img Image, href string) string {
	aspect := "none"
	if img.Fit == FitCover {
		aspect = "xMidYMid slice"
	}
	id := clipID(img, href)
	return fmt.Sprintf(`<clipPath id="%s"><rect width="%d" height="%d" rx="%s"/></clipPath>`+
		`<image href="%s" width="%d" height="%d" preserveAspectRatio="%s" clip-path="url(#%s)"/>`,
		id, img.Width, img.Height, num(img.Radius), attr(href), img.Width, img.Height, aspect, id)
}

// clipID names the clip path after what it clips, so avatars inlined into
// one document do not share a clip unless they are identical.
func clipID(img Image, href string) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%dx%d:%s:%s", img.Width, img.Height, num(img.Radius), href)
	return fmt.Sprintf("avatar-clip-%016x", h.Sum64())
}

func initialsSVG(c Container, t Text) string {
	return fmt.Sprintf(`<g fill="%s"><text x="50%%" y="50%%" text-anchor="middle" dominant-baseline="central" `+
		`font-family="sans-serif" font-size="%s">%s</text></g>`,
		attr(string(c.Foreground)), num(t.FontSize), attr(t.Value))
}

// defaultIconMarkup centers the icon at 60% of the container.
func defaultIconMarkup(c Container) string {
	inner := float64(c.Size) * 3 / 5
	offset := (float64(c.Size) - inner) / 2
	return fmt.Sprintf(`<image href="%s" x="%s" y="%s" width="%s" height="%s"/>`,
		dataURI("image/svg+xml", defaultIconSVG), num(offset), num(offset), num(inner), num(inner))
}

func dataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func attr(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
