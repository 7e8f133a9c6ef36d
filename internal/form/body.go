package form

import (
	"net/url"

	"bssaj-admin/internal/apiclient"
)

type BodyKind int

const (
	BodyJSON BodyKind = iota
	BodyMultipart
)

// BuildBody sends JSON resources as the form struct itself and file resources
// as text fields plus the selected files.
func BuildBody(kind BodyKind, value any, fields url.Values, files []apiclient.File) apiclient.Body {
	if kind == BodyJSON {
		return apiclient.JSONBody{Value: value}
	}
	return apiclient.NewMultipartBody(fields, files)
}
