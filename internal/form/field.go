// Package form holds the create/edit form machinery: field schemas, the draft
// a user is editing, binding and validation of posted values, payload encoding
// and the preview store for selected files.
package form

type Kind string

const (
	KindText     Kind = "text"
	KindTextarea Kind = "textarea"
	KindRichText Kind = "richtext"
	KindEmail    Kind = "email"
	KindURL      Kind = "url"
	KindNumber   Kind = "number"
	KindDate     Kind = "date"
	KindSelect   Kind = "select"
	KindCheckbox Kind = "checkbox"
	KindPassword Kind = "password"
	KindFile     Kind = "file"
	KindFiles    Kind = "files"
)

type Option struct {
	Value string
	Label string
}

type Field struct {
	Name        string
	Label       string
	Kind        Kind
	Placeholder string
	Help        string
	Required    bool
	Options     []Option
	// OptionsFrom names a lookup the screen resolves into Options at render time.
	OptionsFrom string
	CreateOnly  bool
}

func (f Field) IsFile() bool {
	return f.Kind == KindFile || f.Kind == KindFiles
}

func (f Field) Multiple() bool {
	return f.Kind == KindFiles
}

// InputType is the HTML input type for simple kinds.
func (f Field) InputType() string {
	switch f.Kind {
	case KindEmail, KindURL, KindNumber, KindDate, KindPassword, KindCheckbox:
		return string(f.Kind)
	case KindFile, KindFiles:
		return "file"
	default:
		return "text"
	}
}

// Fields filters a schema for the create or edit variant of a form.
func Fields(all []Field, creating bool) []Field {
	out := make([]Field, 0, len(all))
	for _, f := range all {
		if f.CreateOnly && !creating {
			continue
		}
		out = append(out, f)
	}
	return out
}

// FileSlots lists the names of the file fields in a schema.
func FileSlots(fields []Field) []string {
	var out []string
	for _, f := range fields {
		if f.IsFile() {
			out = append(out, f.Name)
		}
	}
	return out
}
