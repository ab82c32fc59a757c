package postgres

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yuhlin/craftshop/internal/domain/settings"
)

const (
	getSettingsSQL = `SELECT site_title, footer_notes, footer_links FROM settings WHERE id = 1`

	updateSettingsSQL = `UPDATE settings
		SET site_title = $1, footer_notes = $2, footer_links = $3
		WHERE id = 1`
)

var _ settings.Repository = (*SettingsRepository)(nil)

// SettingsRepository implements settings.Repository backed by PostgreSQL.
// Footer content is stored in JSONB columns.
type SettingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository returns a SettingsRepository that uses the given pool.
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// Get returns the single settings row.
func (r *SettingsRepository) Get(ctx context.Context) (*settings.Settings, error) {
	var (
		s         settings.Settings
		notesJSON []byte
		linksJSON []byte
	)
	err := r.pool.QueryRow(ctx, getSettingsSQL).Scan(&s.SiteTitle, &notesJSON, &linksJSON)
	if err != nil {
		return nil, errors.Wrap(err, "getting settings")
	}

	if err := json.Unmarshal(notesJSON, &s.FooterNotes); err != nil {
		return nil, errors.Wrap(err, "parsing footer notes")
	}
	if err := json.Unmarshal(linksJSON, &s.FooterLinks); err != nil {
		return nil, errors.Wrap(err, "parsing footer links")
	}

	if s.FooterNotes == nil {
		s.FooterNotes = []string{}
	}
	if s.FooterLinks == nil {
		s.FooterLinks = []settings.FooterLink{}
	}
	return &s, nil
}

// Update overwrites the settings row. An empty title falls back to the
// default storefront name.
func (r *SettingsRepository) Update(ctx context.Context, s settings.Settings) error {
	if s.SiteTitle == "" {
		s.SiteTitle = settings.DefaultSiteTitle
	}
	if s.FooterNotes == nil {
		s.FooterNotes = []string{}
	}
	if s.FooterLinks == nil {
		s.FooterLinks = []settings.FooterLink{}
	}

	notesJSON, err := json.Marshal(s.FooterNotes)
	if err != nil {
		return errors.Wrap(err, "marshaling footer notes")
	}
	linksJSON, err := json.Marshal(s.FooterLinks)
	if err != nil {
		return errors.Wrap(err, "marshaling footer links")
	}

	if _, err := r.pool.Exec(ctx, updateSettingsSQL, s.SiteTitle, notesJSON, linksJSON); err != nil {
		return errors.Wrap(err, "updating settings")
	}
	return nil
}
