package ingot

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// setter folds one value node into a record. A returned error means the
// value was dropped and the field left untouched.
type setter func(rec *Ingot, n *Node) error

var fieldSetters = map[string]setter{}

func init() {
	alias := func(s setter, keys ...string) {
		for _, k := range keys {
			fieldSetters[k] = s
		}
	}
	alias(setUint("id", func(r *Ingot) *uint64 { return &r.ID }), "id", "ingot_id")
	alias(setUint("author", func(r *Ingot) *uint64 { return &r.Author }), "author")
	alias(setText(func(r *Ingot) *string { return &r.PName }),
		"pname", "path_name", "url_path_name", "path_url_name", "post_url_name", "page_url_name")
	alias(setText(func(r *Ingot) *string { return &r.Title }), "title")
	alias(setText(func(r *Ingot) *string { return &r.Excerpt }), "excerpt", "summary")
	alias(setTime("published", func(r *Ingot) *time.Time { return &r.Published }), "published", "created")
	alias(setTime("modified", func(r *Ingot) *time.Time { return &r.Modified }), "modified", "updated")
	alias(setStatus, "status")
	alias(setCommentStatus, "comment_status", "comments")
	alias(setTo, "type", "to")
	alias(func(r *Ingot, n *Node) error { r.Tags = RKeyListFromNode(n); return nil }, "tag", "tags")
	alias(func(r *Ingot, n *Node) error { r.Categories = RKeyListFromNode(n); return nil }, "category", "categories")
}

// SetFromKeyValue folds one key/value pair into rec. A nil value and an
// unknown key are no-ops. The returned error, if any, is an
// *InvalidFieldError; rec is unchanged in that case.
func SetFromKeyValue(rec *Ingot, key string, value *Node) error {
	if value == nil {
		return nil
	}
	set, ok := fieldSetters[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return nil
	}
	return set(rec, value)
}

func parseUint(s string) (uint64, bool) {
	v, err := strconv.ParseUint(s, 10, 64)
	return v, err == nil
}

func invalid(key, value, reason string) error {
	return &InvalidFieldError{Key: key, Value: value, Reason: reason}
}

func setUint(key string, field func(*Ingot) *uint64) setter {
	return func(r *Ingot, n *Node) error {
		s := n.StringValueOrEmpty()
		v, ok := parseUint(strings.TrimSpace(s))
		if !ok {
			return invalid(key, s, "not an unsigned integer")
		}
		*field(r) = v
		return nil
	}
}

func setText(field func(*Ingot) *string) setter {
	return func(r *Ingot, n *Node) error {
		if s := n.StringValueOrEmpty(); s != "" {
			*field(r) = s
		}
		return nil
	}
}

func setTime(key string, field func(*Ingot) *time.Time) setter {
	return func(r *Ingot, n *Node) error {
		s := n.StringValueOrEmpty()
		v, err := cast.StringToDate(strings.TrimSpace(s))
		if err != nil {
			return invalid(key, s, "not a timestamp")
		}
		*field(r) = v
		return nil
	}
}

func setStatus(r *Ingot, n *Node) error {
	s := n.StringValueOrEmpty()
	v, err := ParseStatus(s)
	if err != nil {
		return invalid("status", s, "unknown status")
	}
	r.Status = v
	return nil
}

func setCommentStatus(r *Ingot, n *Node) error {
	s := n.StringValueOrEmpty()
	v, err := ParseCommentStatus(s)
	if err != nil {
		return invalid("comment_status", s, "unknown comment status")
	}
	r.CommentStatus = v
	return nil
}

func setTo(r *Ingot, n *Node) error {
	r.To = ParseTo(n.StringValueOrEmpty())
	return nil
}
