// Package contact defines the address book record that avatars are drawn for.
package contact

import "time"

// Contact is a saved address book entry.
type Contact struct {
	ID            string    `json:"id" yaml:"id"`
	DisplayName   string    `json:"display_name" yaml:"display_name"`
	ThumbnailPath string    `json:"thumbnail_path,omitempty" yaml:"thumbnail_path,omitempty"`
	Address       string    `json:"address,omitempty" yaml:"address,omitempty"`
	PhoneNumbers  []string  `json:"phone_numbers,omitempty" yaml:"phone_numbers,omitempty"`
	Emails        []string  `json:"emails,omitempty" yaml:"emails,omitempty"`
	Note          string    `json:"note,omitempty" yaml:"note,omitempty"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at,omitempty"`
}
