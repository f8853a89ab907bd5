// Package trie implements an immutable, persistent (copy-on-write)
// trie mapping byte-string keys to values of arbitrary type. Every
// mutating operation returns a new Trie value that structurally shares
// unmodified subtrees with its receiver; no node reachable from a
// previously returned Trie is ever mutated.
package trie

// node is one trie node: a mapping from single-byte edge labels to
// child node references, and optionally a value. A node is a value
// node iff hasValue is true. Nodes are immutable once reachable from
// any Trie returned to a caller.
type node struct {
	children map[byte]*node
	value    any // holds a *T for whatever value type was Put here
	hasValue bool
}

// clone returns a shallow copy of n: a fresh children map pointing at
// the same child nodes, and the same value reference. Off-path
// children are left referentially identical to n's, which is the
// structural-sharing property the whole package exists to provide.
func (n *node) clone() *node {
	cp := &node{value: n.value, hasValue: n.hasValue}
	if len(n.children) > 0 {
		cp.children = make(map[byte]*node, len(n.children))
		for k, v := range n.children {
			cp.children[k] = v
		}
	}
	return cp
}

func (n *node) isLeaf() bool {
	return len(n.children) == 0
}

// Trie is a value type: a reference to an immutable root node
// (possibly nil for the empty trie). Distinct Trie values are
// independent; concurrent readers of the same Trie are always safe.
type Trie struct {
	root *node
}

// New returns the empty trie.
func New() Trie {
	return Trie{}
}

// findPath strips a trailing null byte from key, if present, per the
// data model's key-normalization rule, then walks from the root along
// the normalized key, stopping at the first missing edge. It returns
// the normalized key alongside the path so every caller indexes and
// sizes against the same bytes it walked. The returned slice always
// starts with the root (if non-nil) and has length <= len(key)+1; a
// length of exactly len(key)+1 means the full key resolved to a node.
func (t Trie) findPath(key string) (string, []*node) {
	if n := len(key); n > 0 && key[n-1] == 0 {
		key = key[:n-1]
	}

	if t.root == nil {
		return key, nil
	}
	path := make([]*node, 0, len(key)+1)
	path = append(path, t.root)
	cur := t.root
	for i := 0; i < len(key); i++ {
		child, ok := cur.children[key[i]]
		if !ok {
			break
		}
		path = append(path, child)
		cur = child
	}
	return key, path
}

// Get walks key from t's root and returns the value stored there if
// its dynamic type is T. Returns ok=false if the key is absent or the
// terminal node holds a value of a different type. The empty key
// addresses the root.
func Get[T any](t Trie, key string) (value *T, ok bool) {
	key, path := t.findPath(key)
	if len(path) != len(key)+1 {
		return nil, false
	}
	terminal := path[len(path)-1]
	if !terminal.hasValue {
		return nil, false
	}
	v, ok := terminal.value.(*T)
	return v, ok
}

// Put clones the path of existing nodes along key, creating fresh
// interior nodes where the path ran out, and installs a value node at
// the terminus holding a reference to value. Off-path children of the
// rewritten nodes remain referentially identical to the receiver's.
func Put[T any](t Trie, key string, value T) Trie {
	key, path := t.findPath(key)

	newNodes := make([]*node, 0, len(key)+1)
	for i := 0; i < len(key); i++ {
		if i < len(path) {
			newNodes = append(newNodes, path[i].clone())
		} else {
			newNodes = append(newNodes, &node{})
		}
	}

	stored := value
	var terminal *node
	if len(path) == len(key)+1 {
		terminal = &node{children: path[len(path)-1].children, value: &stored, hasValue: true}
	} else {
		terminal = &node{value: &stored, hasValue: true}
	}
	newNodes = append(newNodes, terminal)

	for i := len(newNodes) - 1; i > 0; i-- {
		parent := newNodes[i-1]
		if parent.children == nil {
			parent.children = make(map[byte]*node, 1)
		} else {
			// parent was freshly cloned above; the map is already a
			// private copy, safe to mutate in place.
		}
		parent.children[key[i-1]] = newNodes[i]
	}

	return Trie{root: newNodes[0]}
}

// Remove returns a trie with key's value erased. If key is absent or
// not a value node, the receiver is returned unchanged. Removing a
// value turns its node into a plain node unless that leaves it a
// childless non-value node, in which case it (and any ancestor that is
// itself a childless-after-pruning non-value node with exactly one
// child) is pruned; pruning all the way to the root yields the empty
// trie.
func Remove(t Trie, key string) Trie {
	key, path := t.findPath(key)
	if len(path) != len(key)+1 || !path[len(path)-1].hasValue {
		return t
	}

	keep := len(path)
	if path[keep-1].isLeaf() {
		keep--
		for keep > 0 && !path[keep-1].hasValue && len(path[keep-1].children) == 1 {
			keep--
		}
	}

	if keep == 0 {
		return Trie{}
	}

	newNodes := make([]*node, 0, keep)
	for i := 0; i < keep-1; i++ {
		newNodes = append(newNodes, path[i].clone())
	}

	var terminal *node
	if keep == len(key)+1 {
		// The value node survives with its children, minus its value.
		terminal = &node{children: path[keep-1].children}
	} else {
		terminal = path[keep-1].clone()
		delete(terminal.children, key[keep-1])
	}
	newNodes = append(newNodes, terminal)

	for i := len(newNodes) - 1; i > 0; i-- {
		newNodes[i-1].children[key[i-1]] = newNodes[i]
	}

	return Trie{root: newNodes[0]}
}
