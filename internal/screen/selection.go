package screen

import (
	"net/url"
	"strings"
)

// Selection is which overlay a list screen shows. At most one is open; a
// delete dialog wins over a reject dialog, which wins over the detail modal.
type Selection struct {
	View   string
	Delete string
	Reject string
}

var selectionKeys = []string{"view", "delete", "reject"}

func ParseSelection(values url.Values) Selection {
	if id := strings.TrimSpace(values.Get("delete")); id != "" {
		return Selection{Delete: id}
	}
	if id := strings.TrimSpace(values.Get("reject")); id != "" {
		return Selection{Reject: id}
	}
	if id := strings.TrimSpace(values.Get("view")); id != "" {
		return Selection{View: id}
	}
	return Selection{}
}

func (s Selection) Empty() bool {
	return s.View == "" && s.Delete == "" && s.Reject == ""
}
