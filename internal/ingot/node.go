package ingot

// NodeKind identifies the payload of a Node.
type NodeKind uint8

const (
	NodeQuotedString NodeKind = iota
	NodeUnquotedString
	NodeArray
	NodeMap // reserved; the parser never produces it
	NodeComment
	NodeKeyValue
)

// String returns the node kind name.
func (k NodeKind) String() string {
	switch k {
	case NodeQuotedString:
		return "QuotedString"
	case NodeUnquotedString:
		return "UnquotedString"
	case NodeArray:
		return "Array"
	case NodeMap:
		return "Map"
	case NodeComment:
		return "Comment"
	case NodeKeyValue:
		return "KeyValue"
	default:
		return "Unknown"
	}
}

// Node is one element of the token tree. Each node owns its children.
//
//   - QuotedString: Quote, Text
//   - UnquotedString, Comment: Text
//   - Array: Children
//   - Map: Map
//   - KeyValue: Key, Value (nil when the key had no value)
type Node struct {
	Pos      int
	Kind     NodeKind
	Quote    Quote
	Text     string
	Children []*Node
	Map      map[string]*Node
	Key      string
	Value    *Node
}

// StringValue returns the text of a scalar node.
func (n *Node) StringValue() (string, bool) {
	if n == nil {
		return "", false
	}
	switch n.Kind {
	case NodeQuotedString, NodeUnquotedString:
		return n.Text, true
	}
	return "", false
}

// StringValueOrEmpty is StringValue with non-scalars mapped to "".
func (n *Node) StringValueOrEmpty() string {
	s, _ := n.StringValue()
	return s
}

func newScalar(pos int, text string) *Node {
	return &Node{Pos: pos, Kind: NodeUnquotedString, Text: text}
}

func newQuoted(pos int, q Quote, text string) *Node {
	return &Node{Pos: pos, Kind: NodeQuotedString, Quote: q, Text: text}
}

func newKeyValue(pos int, key string, value *Node) *Node {
	return &Node{Pos: pos, Kind: NodeKeyValue, Key: key, Value: value}
}
