package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"sort"
	"strings"
)

// Body is a request payload for Create and Update.
type Body interface {
	ContentType() string
	Reader() (io.Reader, error)
}

type JSONBody struct {
	Value any
}

func (b JSONBody) ContentType() string { return "application/json" }

func (b JSONBody) Reader() (io.Reader, error) {
	raw, err := json.Marshal(b.Value)
	if err != nil {
		return nil, fmt.Errorf("apiclient: encode json body: %w", err)
	}
	return bytes.NewReader(raw), nil
}

type File struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// MultipartBody carries text fields plus optional files. The boundary is fixed
// on first use so ContentType and Reader agree.
type MultipartBody struct {
	Fields url.Values
	Files  []File

	boundary string
}

func NewMultipartBody(fields url.Values, files []File) *MultipartBody {
	return &MultipartBody{Fields: fields, Files: files}
}

func (b *MultipartBody) ensureBoundary() string {
	if b.boundary == "" {
		b.boundary = multipart.NewWriter(io.Discard).Boundary()
	}
	return b.boundary
}

func (b *MultipartBody) ContentType() string {
	return "multipart/form-data; boundary=" + b.ensureBoundary()
}

func (b *MultipartBody) Reader() (io.Reader, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.SetBoundary(b.ensureBoundary()); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(b.Fields))
	for k := range b.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range b.Fields[k] {
			if err := w.WriteField(k, v); err != nil {
				return nil, fmt.Errorf("apiclient: write field %s: %w", k, err)
			}
		}
	}

	for _, f := range b.Files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(f.Field), escapeQuotes(f.Filename)))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, fmt.Errorf("apiclient: create part %s: %w", f.Field, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, fmt.Errorf("apiclient: write part %s: %w", f.Field, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return &buf, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
