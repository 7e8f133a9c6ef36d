package form

import (
	"net/url"

	"github.com/google/uuid"
)

// DraftField is the hidden input that carries the draft id across posts.
const DraftField = "_draft"

// Draft is the uncommitted state of one form: values, touched fields,
// validation errors and the previews of the files selected so far.
type Draft struct {
	ID       string
	fields   []Field
	values   url.Values
	touched  map[string]bool
	errors   map[string]string
	Previews map[string][]Preview
}

func NewDraft(fields []Field) *Draft {
	return ResumeDraft("", fields)
}

// ResumeDraft reuses a posted draft id when it is well formed, otherwise it
// starts a new draft.
func ResumeDraft(id string, fields []Field) *Draft {
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	return &Draft{
		ID:       id,
		fields:   fields,
		values:   url.Values{},
		touched:  make(map[string]bool),
		errors:   make(map[string]string),
		Previews: make(map[string][]Preview),
	}
}

func (d *Draft) Fields() []Field {
	return d.fields
}

func (d *Draft) Values() url.Values {
	out := make(url.Values, len(d.values))
	for k, v := range d.values {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func (d *Draft) Value(name string) string {
	return d.values.Get(name)
}

// Pristine reports whether no field has been touched yet.
func (d *Draft) Pristine() bool {
	return len(d.touched) == 0
}

// Reinitialize replaces the values with src while the draft is pristine.
// Once any field was touched the source is ignored and false is returned.
func (d *Draft) Reinitialize(src url.Values) bool {
	if !d.Pristine() {
		return false
	}
	d.values = url.Values{}
	for _, f := range d.fields {
		if f.IsFile() {
			continue
		}
		if v, ok := src[f.Name]; ok {
			d.values[f.Name] = append([]string(nil), v...)
		}
	}
	return true
}

func (d *Draft) Set(name, value string) {
	d.values.Set(name, value)
	d.touched[name] = true
}

// Apply takes a submitted form: every known field gets its posted value and
// the whole draft counts as touched.
func (d *Draft) Apply(posted url.Values) {
	d.Load(posted)
	d.TouchAll()
}

// Load copies the posted values without touching anything. Unchecked
// checkboxes post nothing and are cleared.
func (d *Draft) Load(posted url.Values) {
	for _, f := range d.fields {
		if f.IsFile() {
			continue
		}
		if v, ok := posted[f.Name]; ok {
			d.values[f.Name] = append([]string(nil), v...)
		} else {
			d.values.Del(f.Name)
		}
	}
}

func (d *Draft) Touch(name string) {
	d.touched[name] = true
}

func (d *Draft) TouchAll() {
	for _, f := range d.fields {
		d.touched[f.Name] = true
	}
}

func (d *Draft) Touched(name string) bool {
	return d.touched[name]
}

func (d *Draft) SetErrors(errs map[string]string) {
	d.errors = make(map[string]string, len(errs))
	for k, v := range errs {
		d.errors[k] = v
	}
}

func (d *Draft) Errors() map[string]string {
	return d.errors
}

// VisibleErrors returns the errors of touched fields only.
func (d *Draft) VisibleErrors() map[string]string {
	out := make(map[string]string)
	for k, v := range d.errors {
		if d.touched[k] {
			out[k] = v
		}
	}
	return out
}

func (d *Draft) Error(name string) string {
	if !d.touched[name] {
		return ""
	}
	return d.errors[name]
}

func (d *Draft) Valid() bool {
	return len(d.errors) == 0
}
