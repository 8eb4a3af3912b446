package ingot

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

type mapResolver map[string]uint64

func (m mapResolver) Lookup(k RKeyRaw) (uint64, bool) {
	if k.IsID {
		for _, id := range m {
			if id == k.ID {
				return id, true
			}
		}
		return 0, false
	}
	id, ok := m[strings.ToLower(k.Name)]
	return id, ok
}

func TestNewRKeyRaw(t *testing.T) {
	cases := []struct {
		in   string
		want RKeyRaw
	}{
		{"12", RKeyRaw{ID: 12, IsID: true}},
		{"  \"12\" ", RKeyRaw{ID: 12, IsID: true}},
		{"'go'", RKeyRaw{Name: "go"}},
		{`"'nested'"`, RKeyRaw{Name: "'nested'"}},
		{"-1", RKeyRaw{Name: "-1"}},
		{`"mismatched'`, RKeyRaw{Name: `"mismatched'`}},
		{"static site", RKeyRaw{Name: "static site"}},
	}
	for _, c := range cases {
		if got := NewRKeyRaw(c.in); got != c.want {
			t.Errorf("NewRKeyRaw(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
}

func TestRKeyListFromString_DropsEmptyItems(t *testing.T) {
	l := RKeyListFromString("a,, b ,")
	want := []RKeyRaw{{Name: "a"}, {Name: "b"}}
	if !reflect.DeepEqual(l.Raw, want) {
		t.Errorf("raw = %+v, want %+v", l.Raw, want)
	}
}

func TestRKeyListFromNode(t *testing.T) {
	arr := &Node{Kind: NodeArray, Children: []*Node{
		{Kind: NodeUnquotedString, Text: "1"},
		{Kind: NodeArray},
		{Kind: NodeComment, Text: "skip"},
		{Kind: NodeQuotedString, Text: "x"},
	}}
	want := []RKeyRaw{{ID: 1, IsID: true}, {Name: "x"}}
	if got := RKeyListFromNode(arr).Raw; !reflect.DeepEqual(got, want) {
		t.Errorf("array = %+v, want %+v", got, want)
	}
	if n := RKeyListFromNode(&Node{Kind: NodeKeyValue}).Len(); n != 0 {
		t.Errorf("key/value len = %d, want 0", n)
	}
	if n := RKeyListFromNode(nil).Len(); n != 0 {
		t.Errorf("nil len = %d, want 0", n)
	}
}

func TestRKeyList_Collate(t *testing.T) {
	idx := mapResolver{"go": 1, "web": 2}
	l := RKeyListFromString("go, 2, missing, GO")

	got, missing := l.Collate(idx)
	if !got.IsCollated() || !reflect.DeepEqual(got.IDs, []uint64{1, 2}) {
		t.Errorf("collated = %+v", got)
	}
	if !reflect.DeepEqual(missing, []RKeyRaw{{Name: "missing"}}) {
		t.Errorf("missing = %+v", missing)
	}

	again, missing := got.Collate(idx)
	if !reflect.DeepEqual(got, again) || len(missing) != 0 {
		t.Errorf("second collate = %+v, missing %+v", again, missing)
	}
}

func TestRKeyList_CollateIsDeterministic(t *testing.T) {
	idx := mapResolver{"a": 10, "b": 20}
	first, _ := RKeyListFromString("b, a, 10").Collate(idx)
	data, err := json.Marshal(first)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"ids":[20,10]}` {
		t.Errorf("json = %s", data)
	}

	var raw RKeyList
	if err := json.Unmarshal([]byte(`{"raw":["b","a",10]}`), &raw); err != nil {
		t.Fatal(err)
	}
	second, _ := raw.Collate(idx)
	if !reflect.DeepEqual(first.IDs, second.IDs) {
		t.Errorf("ids = %v, want %v", second.IDs, first.IDs)
	}
}

func TestRKeyList_JSONRoundTrip(t *testing.T) {
	l := RKeyListFromString("1, two")
	data, err := json.Marshal(l)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"raw":[1,"two"]}` {
		t.Errorf("json = %s", data)
	}

	var back RKeyList
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(l, back) {
		t.Errorf("round trip = %+v, want %+v", back, l)
	}

	data, err = json.Marshal(RKeyList{})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"raw":[]}` {
		t.Errorf("empty json = %s", data)
	}
}

func TestStatus(t *testing.T) {
	s, err := ParseStatus(" PRIVATE ")
	if err != nil || s != StatusPrivate {
		t.Errorf("ParseStatus = %v, %v", s, err)
	}
	if _, err := ParseStatus("archived"); !errors.Is(err, ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
	if got := StatusPublish.String(); got != "publish" {
		t.Errorf("String = %q", got)
	}
}

func TestCommentStatus(t *testing.T) {
	if c, err := ParseCommentStatus("Open"); err != nil || c != CommentOpen {
		t.Errorf("Open = %v, %v", c, err)
	}
	if c, err := ParseCommentStatus("closed"); err != nil || c != CommentClose {
		t.Errorf("closed = %v, %v", c, err)
	}
	if _, err := ParseCommentStatus("maybe"); !errors.Is(err, ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}

func TestParseTo(t *testing.T) {
	cases := map[string]To{
		"AsIs":     {Kind: ToAsIs},
		"top":      {Kind: ToTop},
		"Article":  {Kind: ToArticle},
		"RSS Feed": {Kind: ToCustom, Custom: "rss feed"},
	}
	for in, want := range cases {
		if got := ParseTo(in); got != want {
			t.Errorf("ParseTo(%q) = %+v, want %+v", in, got, want)
		}
	}
	if got := ParseTo("RSS Feed").String(); got != "rss feed" {
		t.Errorf("String = %q", got)
	}
}

func TestIngot_JSON(t *testing.T) {
	rec := mustParse(t, "id: 5\nstatus: publish\nto: page\ntags: a\n\nT\n\nB")
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if m["status"] != "publish" || m["to"] != "page" || m["comment_status"] != "close" {
		t.Errorf("json = %s", data)
	}
	if _, ok := m["issues"]; ok {
		t.Error("issues should be omitted when empty")
	}

	var back Ingot
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.Status != rec.Status || back.To != rec.To || !reflect.DeepEqual(back.Tags, rec.Tags) {
		t.Errorf("decoded = %+v", back)
	}
}

func TestSetFromKeyValue(t *testing.T) {
	rec := &Ingot{}
	if err := SetFromKeyValue(rec, "ID", &Node{Kind: NodeUnquotedString, Text: " 9 "}); err != nil || rec.ID != 9 {
		t.Errorf("ID = %d, %v", rec.ID, err)
	}
	if err := SetFromKeyValue(rec, "id", nil); err != nil || rec.ID != 9 {
		t.Errorf("nil value changed id: %d, %v", rec.ID, err)
	}
	if err := SetFromKeyValue(rec, "nope", &Node{Kind: NodeUnquotedString, Text: "1"}); err != nil {
		t.Errorf("unknown key: %v", err)
	}
	if err := SetFromKeyValue(rec, "ingot_id", &Node{Kind: NodeArray}); !errors.Is(err, ErrInvalid) || rec.ID != 9 {
		t.Errorf("array id = %d, %v", rec.ID, err)
	}

	for _, key := range []string{"pname", "path_name", "url_path_name", "path_url_name", "post_url_name", "page_url_name"} {
		rec := &Ingot{}
		if err := SetFromKeyValue(rec, key, &Node{Kind: NodeUnquotedString, Text: "slug"}); err != nil || rec.PName != "slug" {
			t.Errorf("%s: pname = %q, %v", key, rec.PName, err)
		}
	}

	if err := SetFromKeyValue(rec, "created", &Node{Kind: NodeUnquotedString, Text: "2024-05-06"}); err != nil || rec.Published.Year() != 2024 {
		t.Errorf("created = %v, %v", rec.Published, err)
	}
	if err := SetFromKeyValue(rec, "categories", &Node{Kind: NodeUnquotedString, Text: "x"}); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(rec.Categories.Raw, []RKeyRaw{{Name: "x"}}) {
		t.Errorf("categories = %+v", rec.Categories.Raw)
	}
}
