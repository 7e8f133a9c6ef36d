// Package images decides which image URLs the console may render.
package images

import (
	"net/url"
	"strings"

	"bssaj-admin/internal/view"
)

// PreviewPrefix is the local path under which draft upload previews are served.
const PreviewPrefix = "/previews/"

type Allowlist struct {
	hosts map[string]struct{}
}

func NewAllowlist(hosts []string) *Allowlist {
	a := &Allowlist{hosts: make(map[string]struct{}, len(hosts))}
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			a.hosts[h] = struct{}{}
		}
	}
	return a
}

// Allowed accepts local preview paths and http(s) URLs on a listed host.
func (a *Allowlist) Allowed(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	if strings.HasPrefix(raw, PreviewPrefix) {
		return !strings.Contains(raw, "..")
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") {
		return false
	}
	_, ok := a.hosts[strings.ToLower(u.Hostname())]
	return ok
}

// Avatar renders raw when it is allowed, otherwise the initials of name.
func (a *Allowlist) Avatar(raw, name string) view.Cell {
	c := view.Cell{Kind: view.CellImage, Fallback: view.Initials(name), Text: name}
	if a.Allowed(raw) {
		c.Image = strings.TrimSpace(raw)
	}
	return c
}

// Picture is Avatar without a name: the fallback is a placeholder icon.
func (a *Allowlist) Picture(raw string) view.Cell {
	c := view.Cell{Kind: view.CellImage}
	if a.Allowed(raw) {
		c.Image = strings.TrimSpace(raw)
	}
	return c
}
