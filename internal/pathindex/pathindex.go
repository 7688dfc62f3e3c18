// Package pathindex builds an in-memory prefix index over the
// (path, buffer) pairs produced by an unpack, so a caller like
// `inspect` can answer exact and prefix lookups without re-walking a
// plain slice.
package pathindex

import (
	art "github.com/plar/go-adaptive-radix-tree/v2"
)

// Entry is one indexed (path, buffer) pair.
type Entry struct {
	Path string
	Data []byte
}

// Index is an adaptive radix tree keyed by path bytes, mirroring the
// teacher's mmap'd database's Find/Prefix pair but held entirely in
// memory over an already-unpacked result set.
type Index struct {
	tree art.Tree
}

// Build inserts every entry into a fresh Index. Later entries with a
// duplicate path overwrite earlier ones, matching a plain map's
// semantics for the same input.
func Build(entries []Entry) *Index {
	tree := art.New()
	for _, e := range entries {
		tree.Insert(art.Key(e.Path), e.Data)
	}
	return &Index{tree: tree}
}

// Lookup returns the buffer stored at the exact path, if any.
func (idx *Index) Lookup(path string) ([]byte, bool) {
	v, found := idx.tree.Search(art.Key(path))
	if !found {
		return nil, false
	}
	return v.([]byte), true
}

// Prefix returns every entry whose path has prefix as a prefix, in the
// tree's traversal order. An empty prefix enumerates everything.
func (idx *Index) Prefix(prefix string) []Entry {
	var out []Entry
	idx.tree.ForEachPrefix(art.Key(prefix), func(n art.Node) bool {
		out = append(out, Entry{Path: string(n.Key()), Data: n.Value().([]byte)})
		return true
	})
	return out
}

// Len reports how many distinct paths are indexed.
func (idx *Index) Len() int {
	return idx.tree.Size()
}
