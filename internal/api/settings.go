package api

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/yuhlin/craftshop/internal/domain/settings"
)

type footerLinkResponse struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type settingsResponse struct {
	SiteTitle   string               `json:"site_title"`
	FooterNotes []string             `json:"footer_notes"`
	FooterLinks []footerLinkResponse `json:"footer_links"`
}

func toSettingsResponse(s *settings.Settings) settingsResponse {
	resp := settingsResponse{
		SiteTitle:   s.SiteTitle,
		FooterNotes: s.FooterNotes,
		FooterLinks: make([]footerLinkResponse, len(s.FooterLinks)),
	}
	if resp.FooterNotes == nil {
		resp.FooterNotes = []string{}
	}
	for i, l := range s.FooterLinks {
		resp.FooterLinks[i] = footerLinkResponse{Label: l.Label, URL: l.URL}
	}
	return resp
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Get(r.Context())
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(s))
}

func decodeSettings(d *jx.Decoder) (settings.Settings, error) {
	var s settings.Settings
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "site_title":
			v, err := optStr(d)
			s.SiteTitle = v
			return err
		case "footer_notes":
			if d.Next() == jx.Null {
				return d.Null()
			}
			return d.Arr(func(d *jx.Decoder) error {
				v, err := d.Str()
				if err != nil {
					return err
				}
				s.FooterNotes = append(s.FooterNotes, v)
				return nil
			})
		case "footer_links":
			if d.Next() == jx.Null {
				return d.Null()
			}
			return d.Arr(func(d *jx.Decoder) error {
				var link settings.FooterLink
				if err := d.Obj(func(d *jx.Decoder, key string) error {
					switch key {
					case "label":
						v, err := optStr(d)
						link.Label = v
						return err
					case "url":
						v, err := optStr(d)
						link.URL = v
						return err
					default:
						return d.Skip()
					}
				}); err != nil {
					return err
				}
				s.FooterLinks = append(s.FooterLinks, link)
				return nil
			})
		default:
			return d.Skip()
		}
	})
	return s, err
}

func (h *Handler) adminUpdateSettings(w http.ResponseWriter, r *http.Request) {
	s, err := decodeSettings(jx.Decode(r.Body, 4096))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.settings.Update(r.Context(), s); err != nil {
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
