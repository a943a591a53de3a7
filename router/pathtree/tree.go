package pathtree

import (
	"errors"
	"strings"
)

// Wildcard is the segment matching any remaining path suffix.
const Wildcard = "*"

var ErrWildcardNotLast = errors.New("wildcard segment must be the last one")

// Node is a segment-indexed tree. Paths are split by slashes after the leading one is
// stripped, so the root path "/" is a single empty segment.
type Node[T any] struct {
	isLeaf   bool
	payload  T
	children map[string]*Node[T]
	wildcard *leaf[T]
}

type leaf[T any] struct {
	payload T
}

func New[T any]() *Node[T] {
	return new(Node[T])
}

// Insert stores the value at the path, overriding the previous one if any. A wildcard
// segment is allowed only at the end of the path.
func (n *Node[T]) Insert(path string, value T) error {
	node := n
	key := strings.TrimPrefix(path, "/")

	for {
		segment, rest, more := strings.Cut(key, "/")
		if segment == Wildcard {
			if more {
				return ErrWildcardNotLast
			}

			node.wildcard = &leaf[T]{payload: value}
			return nil
		}

		if node.children == nil {
			node.children = make(map[string]*Node[T])
		}

		child, found := node.children[segment]
		if !found {
			child = New[T]()
			node.children[segment] = child
		}

		if !more {
			child.isLeaf = true
			child.payload = value
			return nil
		}

		node, key = child, rest
	}
}

// Lookup resolves the path. A literal registered exactly at the final segment takes
// precedence over a sibling wildcard. Otherwise, the first wildcard met on the way wins
// and the rest of the path, starting with the segment it replaced, is returned verbatim
// as trailing.
func (n *Node[T]) Lookup(path string) (value T, trailing string, found bool) {
	node := n
	key := strings.TrimPrefix(path, "/")

	for {
		segment, rest, more := strings.Cut(key, "/")
		child := node.children[segment]

		if !more && child != nil && child.isLeaf {
			return child.payload, "", true
		}

		if node.wildcard != nil {
			return node.wildcard.payload, key, true
		}

		if child == nil || !more {
			return value, "", false
		}

		node, key = child, rest
	}
}
