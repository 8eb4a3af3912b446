// Package ingot parses ingot documents: plain-text files made of a
// delimiter-free front matter block, a body, and an optional back matter
// block, each matter block separated from the body by a blank line.
//
// Parsing is lenient. Malformed matter never aborts a parse; fields whose
// values cannot be coerced keep their previous value and the failure is
// recorded in Ingot.Issues.
package ingot

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Ingot is one piece of site content plus its metadata.
type Ingot struct {
	ID            uint64        `json:"id"`
	Author        uint64        `json:"author"`
	PName         string        `json:"pname"`
	Path          string        `json:"path"`
	Published     time.Time     `json:"published"`
	Modified      time.Time     `json:"modified"`
	Content       string        `json:"content"`
	Title         string        `json:"title"`
	Excerpt       string        `json:"excerpt"`
	Status        Status        `json:"status"`
	CommentStatus CommentStatus `json:"comment_status"`
	To            To            `json:"to"`
	Tags          RKeyList      `json:"tags"`
	Categories    RKeyList      `json:"categories"`
	Issues        []Issue       `json:"issues,omitempty"`
}

// Status is the publication state of an ingot.
type Status uint8

const (
	StatusDraft Status = iota
	StatusPublish
	StatusPrivate
)

var statusNames = [...]string{"draft", "publish", "private"}

// ParseStatus matches s case-insensitively against the known states.
func ParseStatus(s string) (Status, error) {
	for i, name := range statusNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return Status(i), nil
		}
	}
	return StatusDraft, fmt.Errorf("%w: unknown status %q", ErrInvalid, s)
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "draft"
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Status) UnmarshalText(b []byte) error {
	v, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// CommentStatus tells whether comments are accepted. The zero value is
// CommentClose.
type CommentStatus uint8

const (
	CommentClose CommentStatus = iota
	CommentOpen
)

// ParseCommentStatus accepts "open", "close" and "closed".
func ParseCommentStatus(s string) (CommentStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "open":
		return CommentOpen, nil
	case "close", "closed":
		return CommentClose, nil
	}
	return CommentClose, fmt.Errorf("%w: unknown comment status %q", ErrInvalid, s)
}

func (c CommentStatus) String() string {
	if c == CommentOpen {
		return "open"
	}
	return "close"
}

func (c CommentStatus) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *CommentStatus) UnmarshalText(b []byte) error {
	v, err := ParseCommentStatus(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ToKind is the render target family.
type ToKind uint8

const (
	ToPost ToKind = iota
	ToPage
	ToArticle
	ToTop
	ToAsIs
	ToCustom
)

var toNames = [...]string{"post", "page", "article", "top", "asis"}

// To describes what an ingot renders into. Custom holds the lower-cased
// target name when Kind is ToCustom.
type To struct {
	Kind   ToKind
	Custom string
}

// ParseTo never fails: unknown names become custom targets.
func ParseTo(s string) To {
	lower := strings.ToLower(strings.TrimSpace(s))
	for i, name := range toNames {
		if lower == name {
			return To{Kind: ToKind(i)}
		}
	}
	return To{Kind: ToCustom, Custom: lower}
}

func (t To) String() string {
	if t.Kind == ToCustom {
		return t.Custom
	}
	if int(t.Kind) < len(toNames) {
		return toNames[t.Kind]
	}
	return "post"
}

func (t To) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *To) UnmarshalText(b []byte) error {
	*t = ParseTo(string(b))
	return nil
}

// RKeyRaw is an unresolved reference to a category or tag, either by
// numeric id or by name.
type RKeyRaw struct {
	ID   uint64
	Name string
	IsID bool
}

// NewRKeyRaw trims text, strips one layer of surrounding quotes and then
// tries to read it as an unsigned integer.
func NewRKeyRaw(text string) RKeyRaw {
	s := unquote(strings.TrimSpace(text))
	if id, ok := parseUint(s); ok {
		return RKeyRaw{ID: id, IsID: true}
	}
	return RKeyRaw{Name: s}
}

func (k RKeyRaw) String() string {
	if k.IsID {
		return fmt.Sprintf("%d", k.ID)
	}
	return k.Name
}

func (k RKeyRaw) MarshalJSON() ([]byte, error) {
	if k.IsID {
		return json.Marshal(k.ID)
	}
	return json.Marshal(k.Name)
}

func (k *RKeyRaw) UnmarshalJSON(b []byte) error {
	var id uint64
	if err := json.Unmarshal(b, &id); err == nil {
		*k = RKeyRaw{ID: id, IsID: true}
		return nil
	}
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	*k = NewRKeyRaw(name)
	return nil
}

func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'') && first == last {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// Resolver maps a raw key onto a project-wide numeric id.
type Resolver interface {
	Lookup(key RKeyRaw) (uint64, bool)
}

// RKeyList is a list of category or tag references. It is Raw straight out
// of the parser and becomes collated once resolved against an index.
type RKeyList struct {
	Raw      []RKeyRaw
	IDs      []uint64
	Collated bool
}

// RKeyListFromString splits s on commas. Empty items are dropped.
func RKeyListFromString(s string) RKeyList {
	var keys []RKeyRaw
	for _, part := range strings.Split(s, ",") {
		k := NewRKeyRaw(part)
		if !k.IsID && k.Name == "" {
			continue
		}
		keys = append(keys, k)
	}
	return RKeyList{Raw: keys}
}

// RKeyListFromNode builds a list from a scalar (comma-split) or an array
// (one key per scalar child; other children are dropped). Any other node
// gives an empty list.
func RKeyListFromNode(n *Node) RKeyList {
	if n == nil {
		return RKeyList{}
	}
	switch n.Kind {
	case NodeQuotedString, NodeUnquotedString:
		return RKeyListFromString(n.Text)
	case NodeArray:
		var keys []RKeyRaw
		for _, child := range n.Children {
			if s, ok := child.StringValue(); ok {
				keys = append(keys, NewRKeyRaw(s))
			}
		}
		return RKeyList{Raw: keys}
	}
	return RKeyList{}
}

// IsCollated reports whether the list holds resolved ids.
func (l RKeyList) IsCollated() bool { return l.Collated }

// Len returns the number of entries in whichever state the list is in.
func (l RKeyList) Len() int {
	if l.Collated {
		return len(l.IDs)
	}
	return len(l.Raw)
}

// Collate resolves every raw key through r. Unresolvable keys are dropped
// and returned. Collating an already collated list returns it unchanged.
func (l RKeyList) Collate(r Resolver) (RKeyList, []RKeyRaw) {
	if l.Collated {
		return l, nil
	}
	out := RKeyList{IDs: make([]uint64, 0, len(l.Raw)), Collated: true}
	var missing []RKeyRaw
	seen := make(map[uint64]struct{}, len(l.Raw))
	for _, k := range l.Raw {
		id, ok := r.Lookup(k)
		if !ok {
			missing = append(missing, k)
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out.IDs = append(out.IDs, id)
	}
	return out, missing
}

// MarshalJSON encodes a raw list as {"raw": [...]} and a collated one as
// {"ids": [...]}.
func (l RKeyList) MarshalJSON() ([]byte, error) {
	if l.Collated {
		ids := l.IDs
		if ids == nil {
			ids = []uint64{}
		}
		return json.Marshal(struct {
			IDs []uint64 `json:"ids"`
		}{ids})
	}
	raw := l.Raw
	if raw == nil {
		raw = []RKeyRaw{}
	}
	return json.Marshal(struct {
		Raw []RKeyRaw `json:"raw"`
	}{raw})
}

func (l *RKeyList) UnmarshalJSON(b []byte) error {
	var v struct {
		Raw []RKeyRaw `json:"raw"`
		IDs *[]uint64 `json:"ids"`
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v.IDs != nil {
		*l = RKeyList{IDs: *v.IDs, Collated: true}
		return nil
	}
	*l = RKeyList{Raw: v.Raw}
	return nil
}
