package include

import (
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// Tree is the shape of relations to serialize with a result: each node
// names a property and holds the relations loaded beneath it. Children
// are unique by property name.
type Tree struct {
	PropertyName string
	children     map[string]*Tree
}

// New returns a root node. The root's name is informational.
func New(rootName string) *Tree {
	return &Tree{PropertyName: rootName}
}

// Linear builds the chain names[0] -> names[1] -> ... and returns its head
// and tail. Both are nil when names is empty.
func Linear(names ...string) (head, tail *Tree) {
	for _, name := range names {
		node := &Tree{PropertyName: name}
		if head == nil {
			head = node
		} else {
			tail.put(node)
		}
		tail = node
	}
	return head, tail
}

func (t *Tree) put(child *Tree) {
	if t.children == nil {
		t.children = make(map[string]*Tree)
	}
	t.children[child.PropertyName] = child
}

// AddChild inserts child under t. When t already has a child of that name,
// child's own children are merged into it recursively instead. It returns
// the node that holds the name afterwards.
func (t *Tree) AddChild(child *Tree) *Tree {
	existing, ok := t.children[child.PropertyName]
	if !ok {
		t.put(child)
		return child
	}
	for _, grandchild := range child.children {
		existing.AddChild(grandchild)
	}
	return existing
}

// AddLinearChild merges a single-branch chain into t, reusing nodes that
// already exist, and returns the node of t that corresponds to the chain's
// tail. Adding the same chain twice returns the same node. If a node of
// the chain branches, its children are merged with AddChild and that node
// is returned.
func (t *Tree) AddLinearChild(chain *Tree) *Tree {
	cur := t
	for node := chain; ; {
		next, ok := cur.children[node.PropertyName]
		if !ok {
			next = &Tree{PropertyName: node.PropertyName}
			cur.put(next)
		}
		cur = next
		switch len(node.children) {
		case 0:
			return cur
		case 1:
			for _, only := range node.children {
				node = only
			}
		default:
			for _, child := range node.children {
				cur.AddChild(child)
			}
			return cur
		}
	}
}

// AddPath is AddLinearChild for a list of names.
func (t *Tree) AddPath(names ...string) *Tree {
	head, _ := Linear(names...)
	if head == nil {
		return t
	}
	return t.AddLinearChild(head)
}

// Child returns the child named name, or nil. A nil tree has no children.
func (t *Tree) Child(name string) *Tree {
	if t == nil {
		return nil
	}
	return t.children[name]
}

func (t *Tree) Has(name string) bool { return t.Child(name) != nil }

func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.children)
}

// Names returns the child names sorted.
func (t *Tree) Names() []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.children))
	for name := range t.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Children returns the children ordered by name.
func (t *Tree) Children() []*Tree {
	names := t.Names()
	out := make([]*Tree, len(names))
	for i, name := range names {
		out[i] = t.children[name]
	}
	return out
}

// String renders the children as "A(B, C), D".
func (t *Tree) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *Tree) write(b *strings.Builder) {
	for i, child := range t.Children() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(child.PropertyName)
		if child.Len() > 0 {
			b.WriteByte('(')
			child.write(b)
			b.WriteByte(')')
		}
	}
}

// MarshalJSON writes the children as nested objects keyed by name.
func (t *Tree) MarshalJSON() ([]byte, error) {
	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(t.toMap())
}

func (t *Tree) toMap() map[string]any {
	out := make(map[string]any, t.Len())
	for _, child := range t.Children() {
		out[child.PropertyName] = child.toMap()
	}
	return out
}
