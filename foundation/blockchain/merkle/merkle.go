// Copyright 2017 Cameron Bergoon
// https://github.com/cbergoon/merkletree
// Licensed under the MIT License, see LICENCE file for details.
// This code has been cleaned up, refactored, and turned into generics.

// Package merkle provides a generic merkle tree used to commit to and
// verify the transaction set of a block.
package merkle

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
)

// Hashable represents the behavior concrete data must exhibit to be used
// in the merkle tree.
type Hashable[T any] interface {
	Hash() []byte
	Equals(other T) bool
}

// =============================================================================

// Tree represents a merkle tree over data of some type T that exhibits the
// behavior defined by the Hashable constraint.
type Tree[T Hashable[T]] struct {
	root         *Node[T]
	leafs        []*Node[T]
	merkleRoot   []byte
	hashStrategy func() hash.Hash
}

// WithHashStrategy changes the default hash strategy (sha256) used when
// constructing a new tree.
func WithHashStrategy[T Hashable[T]](hashStrategy func() hash.Hash) func(t *Tree[T]) {
	return func(t *Tree[T]) {
		t.hashStrategy = hashStrategy
	}
}

// NewTree constructs a merkle tree over values. An empty value list
// produces a tree whose root is the all-zero hash rather than an
// error, since a block with no transactions is valid.
func NewTree[T Hashable[T]](values []T, options ...func(t *Tree[T])) (*Tree[T], error) {
	t := Tree[T]{
		hashStrategy: sha256.New,
	}

	for _, option := range options {
		option(&t)
	}

	if len(values) == 0 {
		t.merkleRoot = make([]byte, t.hashStrategy().Size())
		return &t, nil
	}

	if err := t.Generate(values); err != nil {
		return nil, err
	}

	return &t, nil
}

// Generate (re)builds the leafs and nodes of the tree from values.
func (t *Tree[T]) Generate(values []T) error {
	if len(values) == 0 {
		return errors.New("merkle: cannot construct tree with no content")
	}

	var leafs []*Node[T]
	for _, value := range values {
		leafs = append(leafs, &Node[T]{
			hash:  value.Hash(),
			value: value,
			leaf:  true,
			tree:  t,
		})
	}

	if len(leafs)%2 == 1 {
		last := leafs[len(leafs)-1]
		duplicate := &Node[T]{
			hash:  last.hash,
			value: last.value,
			leaf:  true,
			dup:   true,
			tree:  t,
		}
		leafs = append(leafs, duplicate)
	}

	root, err := buildIntermediate(leafs, t)
	if err != nil {
		return err
	}

	t.root = root
	t.leafs = leafs
	t.merkleRoot = root.hash

	return nil
}

// Root returns the tree's merkle root as a fixed 32-byte array.
func (t *Tree[T]) Root() [32]byte {
	var out [32]byte
	copy(out[:], t.merkleRoot)
	return out
}

// RootBytes returns the tree's merkle root bytes.
func (t *Tree[T]) RootBytes() []byte {
	return t.merkleRoot
}

// RootHex returns the merkle root as lowercase hex.
func (t *Tree[T]) RootHex() string {
	return hex.EncodeToString(t.merkleRoot)
}

// Verify validates the hashes at every level of the tree and reports
// whether the resulting root matches the recorded one.
func (t *Tree[T]) Verify() error {
	if t.root == nil {
		return nil
	}

	calculated, err := t.root.verify()
	if err != nil {
		return err
	}

	if !bytes.Equal(t.merkleRoot, calculated) {
		return errors.New("merkle: root hash invalid")
	}

	return nil
}

// Values returns the unique values stored in the tree, with the
// duplicated last leaf (added when the original count was odd) dropped.
func (t *Tree[T]) Values() []T {
	var values []T
	for _, n := range t.leafs {
		values = append(values, n.value)
	}

	if l := len(t.leafs); l >= 2 && bytes.Equal(t.leafs[l-1].hash, t.leafs[l-2].hash) {
		return values[:l-1]
	}

	return values
}

// String returns a string representation of the tree's leaves.
func (t *Tree[T]) String() string {
	s := ""
	for _, l := range t.leafs {
		s += fmt.Sprint(l)
		s += "\n"
	}
	return s
}

// =============================================================================

// Node represents a node, root, or leaf in the tree.
type Node[T Hashable[T]] struct {
	tree   *Tree[T]
	parent *Node[T]
	left   *Node[T]
	right  *Node[T]
	hash   []byte
	value  T
	leaf   bool
	dup    bool
}

func (n *Node[T]) verify() ([]byte, error) {
	if n.leaf {
		return n.value.Hash(), nil
	}

	rightHash, err := n.right.verify()
	if err != nil {
		return nil, err
	}

	leftHash, err := n.left.verify()
	if err != nil {
		return nil, err
	}

	h := n.tree.hashStrategy()
	if _, err := h.Write(append(append([]byte{}, leftHash...), rightHash...)); err != nil {
		return nil, err
	}

	return h.Sum(nil), nil
}

func (n *Node[T]) String() string {
	return fmt.Sprintf("%t %t %x", n.leaf, n.dup, n.hash)
}

// =============================================================================

// buildIntermediate constructs the intermediate and root levels of the
// tree from a list of leaf nodes, duplicating the final node at any
// level with an odd count.
func buildIntermediate[T Hashable[T]](nl []*Node[T], t *Tree[T]) (*Node[T], error) {
	var nodes []*Node[T]

	for i := 0; i < len(nl); i += 2 {
		left, right := i, i+1
		if i+1 == len(nl) {
			right = i
		}

		h := t.hashStrategy()
		concat := append(append([]byte{}, nl[left].hash...), nl[right].hash...)
		if _, err := h.Write(concat); err != nil {
			return nil, err
		}

		n := Node[T]{
			left:  nl[left],
			right: nl[right],
			hash:  h.Sum(nil),
			tree:  t,
		}

		nodes = append(nodes, &n)
		nl[left].parent = &n
		nl[right].parent = &n

		if len(nl) == 2 {
			return &n, nil
		}
	}

	return buildIntermediate(nodes, t)
}
