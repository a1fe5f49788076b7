package contenttree

import (
	"strings"

	"github.com/allanasp/haspen-cms-sub001/internal/util"
)

// Reserved keys of the wire representation; everything else on a block map is
// a field value.
const (
	KeyUID       = "_uid"
	KeyComponent = "component"
	KeyBody      = "body"
)

// Block is one node of a content tree: a stable opaque id, the component type
// it instances, and its field values. Nested blocks live inside field values
// as lists of block maps and are materialized lazily during walks.
type Block struct {
	UID       string
	Component string
	Fields    map[string]any
}

// Tree wraps the ordered list of top-level blocks ("body").
type Tree struct {
	Body []*Block
}

// BlockFromMap extracts a block from its raw wire map. Missing _uid or
// component are preserved as empty strings so validation can report them.
func BlockFromMap(raw map[string]any) *Block {
	block := &Block{
		Fields: make(map[string]any, len(raw)),
	}
	for key, value := range raw {
		switch key {
		case KeyUID:
			if s, ok := value.(string); ok {
				block.UID = strings.TrimSpace(s)
			}
		case KeyComponent:
			if s, ok := value.(string); ok {
				block.Component = strings.TrimSpace(s)
			}
		default:
			block.Fields[key] = value
		}
	}
	return block
}

// ToMap re-materializes the wire representation of the block.
func (b *Block) ToMap() map[string]any {
	out := make(map[string]any, len(b.Fields)+2)
	for key, value := range b.Fields {
		out[key] = util.CloneValue(value)
	}
	out[KeyUID] = b.UID
	out[KeyComponent] = b.Component
	return out
}

// Clone deep-copies the block.
func (b *Block) Clone() *Block {
	if b == nil {
		return nil
	}
	return &Block{
		UID:       b.UID,
		Component: b.Component,
		Fields:    util.CloneMap(b.Fields),
	}
}

// ParseTree decodes the raw wire structure {body: [...]} into a Tree. A
// missing or malformed body yields ErrBodyMissing; malformed body entries
// yield ErrBlockMalformed. An empty body is a valid tree.
func ParseTree(raw map[string]any) (*Tree, error) {
	if raw == nil {
		return nil, ErrBodyMissing
	}
	rawBody, ok := raw[KeyBody]
	if !ok {
		return nil, ErrBodyMissing
	}
	list, ok := rawBody.([]any)
	if !ok {
		if rawBody == nil {
			return &Tree{Body: []*Block{}}, nil
		}
		return nil, ErrBodyMissing
	}

	tree := &Tree{Body: make([]*Block, 0, len(list))}
	for _, entry := range list {
		blockMap, ok := entry.(map[string]any)
		if !ok {
			return nil, ErrBlockMalformed
		}
		tree.Body = append(tree.Body, BlockFromMap(blockMap))
	}
	return tree, nil
}

// ToMap renders the tree back to its wire representation.
func (t *Tree) ToMap() map[string]any {
	body := make([]any, 0, len(t.Body))
	for _, block := range t.Body {
		body = append(body, block.ToMap())
	}
	return map[string]any{KeyBody: body}
}

// Clone deep-copies the tree.
func (t *Tree) Clone() *Tree {
	if t == nil {
		return nil
	}
	out := &Tree{Body: make([]*Block, len(t.Body))}
	for i, block := range t.Body {
		out.Body[i] = block.Clone()
	}
	return out
}

// ChildBlocks extracts the nested blocks held by a field value. The second
// return reports whether the value is block-shaped at all (a list whose
// entries are objects).
func ChildBlocks(value any) ([]*Block, bool) {
	list, ok := value.([]any)
	if !ok {
		return nil, false
	}
	blocks := make([]*Block, 0, len(list))
	for _, entry := range list {
		blockMap, ok := entry.(map[string]any)
		if !ok {
			return nil, false
		}
		blocks = append(blocks, BlockFromMap(blockMap))
	}
	return blocks, true
}

// IsBlockList reports whether a field value structurally looks like a list of
// content blocks (objects carrying _uid and component). Used where schema
// knowledge is unavailable, e.g. translation leaf counting.
func IsBlockList(value any) bool {
	list, ok := value.([]any)
	if !ok || len(list) == 0 {
		return false
	}
	for _, entry := range list {
		blockMap, ok := entry.(map[string]any)
		if !ok {
			return false
		}
		if _, hasUID := blockMap[KeyUID]; !hasUID {
			return false
		}
		if _, hasComponent := blockMap[KeyComponent]; !hasComponent {
			return false
		}
	}
	return true
}
