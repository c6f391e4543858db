package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/zcircle/internal/avatar"
	"github.com/zarlcorp/zcircle/internal/cli"
	"github.com/zarlcorp/zcircle/internal/contact"
)

// glyphs stand in for images a terminal cannot draw.
const (
	glyphThumbnail   = "◉"
	glyphDefaultIcon = "●"
	glyphUnknownUser = "?"
)

// renderAvatar draws el as a one-line badge on the container background.
func renderAvatar(el avatar.Element) string {
	style := lipgloss.NewStyle().
		Background(lipgloss.Color(el.Container.Background)).
		Foreground(lipgloss.Color(el.Container.Foreground)).
		Padding(0, 1)

	switch el.Variant {
	case avatar.VariantInitials:
		value := avatar.Placeholder
		if el.Text != nil {
			value = el.Text.Value
		}
		return style.Bold(true).Render(value)
	case avatar.VariantThumbnail:
		return style.Render(glyphThumbnail)
	case avatar.VariantDefaultIcon:
		return style.Render(glyphDefaultIcon)
	default:
		return style.Render(glyphUnknownUser)
	}
}

func contactBadge(c contact.Contact) string {
	return renderAvatar(avatar.Render(cli.ContactProps(c)))
}
