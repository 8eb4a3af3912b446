//go:build property
// +build property

package ingot

import (
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genDocument builds documents out of fragments that exercise every token
// kind, so shrinking stays readable.
func genDocument() gopter.Gen {
	fragments := gen.OneConstOf(
		"title", "tags", ":", ",", " ", "\t", "\n", "\r\n", "\r",
		"'", "\"", "[", "]", "{", "}", "(", ")", "<", ">",
		"//", "/*", "*/", "*", "/", ";", "\\", "\\,", "42", "go", "日本",
	)
	return gen.SliceOf(fragments).Map(func(parts []string) string {
		return strings.Join(parts, "")
	})
}

func TestTokenizerProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("tokens render back to the input", prop.ForAll(
		func(doc string) bool {
			var b strings.Builder
			for _, tok := range tokenize(doc) {
				b.WriteString(tok.String())
			}
			return b.String() == doc
		},
		genDocument(),
	))

	properties.Property("arbitrary text renders back to the input", prop.ForAll(
		func(doc string) bool {
			var b strings.Builder
			for _, tok := range tokenize(doc) {
				b.WriteString(tok.String())
			}
			return b.String() == doc
		},
		gen.AnyString(),
	))

	properties.Property("positions strictly increase", prop.ForAll(
		func(doc string) bool {
			last := -1
			for _, tok := range tokenize(doc) {
				if tok.Pos <= last {
					return false
				}
				last = tok.Pos
			}
			return true
		},
		genDocument(),
	))

	properties.TestingRun(t)
}

func TestParseProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("parse never fails in lenient mode", prop.ForAll(
		func(doc string) bool {
			rec, err := ParseString(doc)
			return err == nil && rec != nil
		},
		genDocument(),
	))

	properties.Property("parse is deterministic", prop.ForAll(
		func(doc string) bool {
			a, _ := ParseString(doc)
			b, _ := ParseString(doc)
			return reflect.DeepEqual(a, b)
		},
		genDocument(),
	))

	properties.Property("numeric keys resolve to ids", prop.ForAll(
		func(n uint64, quoted bool) bool {
			s := strconv.FormatUint(n, 10)
			if quoted {
				s = "'" + s + "'"
			}
			k := NewRKeyRaw(s)
			return k.IsID && k.ID == n && k.String() == strconv.FormatUint(n, 10)
		},
		gen.UInt64(),
		gen.Bool(),
	))

	properties.Property("collating twice changes nothing", prop.ForAll(
		func(names []string) bool {
			idx := mapResolver{}
			for i, name := range names {
				if i%2 == 0 {
					idx[strings.ToLower(name)] = uint64(i + 1)
				}
			}
			l := RKeyListFromString(strings.Join(names, ","))
			once, _ := l.Collate(idx)
			twice, missing := once.Collate(idx)
			return reflect.DeepEqual(once, twice) && len(missing) == 0
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}
