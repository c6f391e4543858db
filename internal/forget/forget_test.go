package forget

import (
	"errors"
	"strings"
	"testing"

	"github.com/zarlcorp/zcircle/internal/contact"
)

// fakes

type fakeStore struct {
	deleted []string
	err     error
}

func (f *fakeStore) Delete(id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func testContact() contact.Contact {
	return contact.Contact{
		ID:            "c-001",
		DisplayName:   "Jane Doe",
		ThumbnailPath: "thumb:c-001",
		Address:       "0x1234",
	}
}

func TestExecuteFullCascade(t *testing.T) {
	cs := &fakeStore{}
	ts := &fakeStore{}

	result := Execute(Request{Contact: testContact(), Contacts: cs, Thumbnails: ts})

	if result.HasErrors() {
		t.Errorf("unexpected errors: %s", result.Summary())
	}
	if len(ts.deleted) != 1 || ts.deleted[0] != "c-001" {
		t.Errorf("thumbnail deletes = %v, want [c-001]", ts.deleted)
	}
	if len(cs.deleted) != 1 || cs.deleted[0] != "c-001" {
		t.Errorf("contact deletes = %v, want [c-001]", cs.deleted)
	}
	if len(result.Steps) != 2 {
		t.Fatalf("steps = %d, want 2", len(result.Steps))
	}
	if result.Steps[1].Description != "deleted contact" {
		t.Errorf("last step = %q, want contact deletion", result.Steps[1].Description)
	}
}

func TestExecuteSkipsExternalThumbnail(t *testing.T) {
	c := testContact()
	c.ThumbnailPath = "https://example.com/a.png"
	ts := &fakeStore{}

	result := Execute(Request{Contact: c, Contacts: &fakeStore{}, Thumbnails: ts})

	if len(ts.deleted) != 0 {
		t.Errorf("external thumbnail should not be deleted: %v", ts.deleted)
	}
	if len(result.Steps) != 1 {
		t.Errorf("steps = %d, want 1", len(result.Steps))
	}
}

func TestExecuteWithoutThumbnailStore(t *testing.T) {
	result := Execute(Request{Contact: testContact(), Contacts: &fakeStore{}})

	if len(result.Steps) != 1 {
		t.Errorf("steps = %d, want 1", len(result.Steps))
	}
}

func TestExecuteContinuesAfterThumbnailError(t *testing.T) {
	cs := &fakeStore{}
	ts := &fakeStore{err: errors.New("disk full")}

	result := Execute(Request{Contact: testContact(), Contacts: cs, Thumbnails: ts})

	if !result.HasErrors() {
		t.Fatal("expected errors")
	}
	if len(cs.deleted) != 1 {
		t.Error("contact should still be deleted after thumbnail failure")
	}

	summary := result.Summary()
	if !strings.Contains(summary, "with errors") || !strings.Contains(summary, "disk full") {
		t.Errorf("summary = %q", summary)
	}
}

func TestExecuteContactError(t *testing.T) {
	cs := &fakeStore{err: errors.New("locked")}

	result := Execute(Request{Contact: testContact(), Contacts: cs})

	if !result.HasErrors() {
		t.Fatal("expected errors")
	}
	if result.Steps[0].Description != "delete contact" {
		t.Errorf("step = %q", result.Steps[0].Description)
	}
}

func TestPlan(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want []string
	}{
		{
			name: "with thumbnail",
			req:  Request{Contact: testContact(), Thumbnails: &fakeStore{}},
			want: []string{"delete thumbnail c-001", "delete contact Jane Doe"},
		},
		{
			name: "no thumbnail store",
			req:  Request{Contact: testContact()},
			want: []string{"delete contact Jane Doe"},
		},
		{
			name: "unnamed contact uses id",
			req:  Request{Contact: contact.Contact{ID: "c-9"}},
			want: []string{"delete contact c-9"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Plan(tt.req)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("Plan = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSummaryClean(t *testing.T) {
	r := Result{Name: "Jane", Steps: []StepStatus{{Description: "deleted contact"}}}
	want := "forgot Jane\n- deleted contact"
	if got := r.Summary(); got != want {
		t.Errorf("Summary = %q, want %q", got, want)
	}
}
