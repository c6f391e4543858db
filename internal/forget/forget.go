// Package forget implements best-effort removal of a contact and the
// thumbnail it references.
package forget

import (
	"fmt"
	"strings"

	"github.com/zarlcorp/zcircle/internal/contact"
	"github.com/zarlcorp/zcircle/internal/store"
)

// ContactStore deletes contacts.
type ContactStore interface {
	Delete(id string) error
}

// ThumbnailStore deletes stored thumbnails.
type ThumbnailStore interface {
	Delete(id string) error
}

// Request describes what to forget.
type Request struct {
	Contact    contact.Contact
	Contacts   ContactStore
	Thumbnails ThumbnailStore // nil if no thumbnail store is open
}

// StepStatus records the outcome of one cascade step.
type StepStatus struct {
	Description string
	Err         error
}

// Result summarizes a completed forget.
type Result struct {
	Name  string
	Steps []StepStatus
}

// HasErrors returns true if any step failed.
func (r Result) HasErrors() bool {
	for _, s := range r.Steps {
		if s.Err != nil {
			return true
		}
	}
	return false
}

// Summary returns a human-readable summary of the result.
func (r Result) Summary() string {
	var b strings.Builder

	if r.HasErrors() {
		fmt.Fprintf(&b, "forgot %s (with errors)", r.Name)
	} else {
		fmt.Fprintf(&b, "forgot %s", r.Name)
	}

	for _, s := range r.Steps {
		if s.Err != nil {
			fmt.Fprintf(&b, "\n- %s: %v", s.Description, s.Err)
		} else {
			fmt.Fprintf(&b, "\n- %s", s.Description)
		}
	}

	return b.String()
}

// Plan returns human-readable descriptions of what Execute will do.
func Plan(req Request) []string {
	var steps []string

	if id, ok := thumbnailID(req); ok {
		steps = append(steps, fmt.Sprintf("delete thumbnail %s", id))
	}

	steps = append(steps, fmt.Sprintf("delete contact %s", displayName(req.Contact)))
	return steps
}

// Execute runs the cascade. Each step is attempted regardless of earlier
// failures; the contact itself is always deleted last.
func Execute(req Request) Result {
	result := Result{Name: displayName(req.Contact)}

	if id, ok := thumbnailID(req); ok {
		result.deleteThumbnail(req, id)
	}

	result.deleteContact(req)
	return result
}

func (r *Result) deleteThumbnail(req Request, id string) {
	if err := req.Thumbnails.Delete(id); err != nil {
		r.Steps = append(r.Steps, StepStatus{
			Description: fmt.Sprintf("delete thumbnail %s", id),
			Err:         err,
		})
		return
	}
	r.Steps = append(r.Steps, StepStatus{
		Description: fmt.Sprintf("deleted thumbnail %s", id),
	})
}

func (r *Result) deleteContact(req Request) {
	if err := req.Contacts.Delete(req.Contact.ID); err != nil {
		r.Steps = append(r.Steps, StepStatus{
			Description: "delete contact",
			Err:         err,
		})
		return
	}
	r.Steps = append(r.Steps, StepStatus{
		Description: "deleted contact",
	})
}

func thumbnailID(req Request) (string, bool) {
	if req.Thumbnails == nil {
		return "", false
	}
	return store.IDFromRef(req.Contact.ThumbnailPath)
}

func displayName(c contact.Contact) string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.ID
}
