package ingotservice

import (
	"fmt"
	"strings"
	"time"

	"github.com/starford/nibi/internal/render"
	"github.com/starford/nibi/internal/storage"
)

// Scaffold returns a new draft document titled title, published at now.
func Scaffold(title string, now time.Time) []byte {
	title = strings.TrimSpace(title)
	var b strings.Builder
	fmt.Fprintf(&b, "title: %s\n", title)
	if pname := render.Slug(title); pname != "" {
		fmt.Fprintf(&b, "pname: %s\n", pname)
	}
	b.WriteString("status: draft\n")
	fmt.Fprintf(&b, "published: %s\n", now.UTC().Format(time.RFC3339))
	b.WriteString("\n")
	return []byte(b.String())
}

// PathFor derives a file name from title. It returns "" when the title
// holds nothing usable.
func PathFor(title string) string {
	s := render.Slug(title)
	if s == "" {
		return ""
	}
	return s + storage.Ext
}
