// Package settings holds the single-row site configuration edited from the
// admin back office: storefront title and footer content.
package settings

import "context"

// DefaultSiteTitle is used until an admin saves a title of their own.
const DefaultSiteTitle = "豬豬手做"

// FooterLink is one entry in the storefront footer link list.
type FooterLink struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Settings is the site-wide configuration. FooterNotes and FooterLinks are
// stored as JSON documents and returned as-is to the storefront.
type Settings struct {
	SiteTitle   string       `json:"site_title"`
	FooterNotes []string     `json:"footer_notes"`
	FooterLinks []FooterLink `json:"footer_links"`
}

// Repository defines persistence for the settings row.
type Repository interface {
	Get(ctx context.Context) (*Settings, error)
	Update(ctx context.Context, s Settings) error
}
