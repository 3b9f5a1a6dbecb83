// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

import (
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// LabeledChild pairs an arc label with the (already-canonical) identifier
// of the child it leads to. It is the unit of a Signature's edge list.
type LabeledChild struct {
	Label string
	Child int
}

// Signature is the canonical structural key used to decide whether two
// nodes at the same layer denote the same residual sub-language. It
// deliberately excludes edge_counts, which get aggregated when nodes with
// equal signatures are merged.
type Signature struct {
	Layer         int
	TerminalCount int
	Edges         []LabeledChild
}

// newSignature builds a Signature from a node's current edge map, sorting
// by label so the signature is independent of map iteration order.
func newSignature(layer, terminalCount int, edges map[string]int) Signature {
	items := make([]LabeledChild, 0, len(edges))
	for lab, ch := range edges {
		items = append(items, LabeledChild{Label: lab, Child: ch})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Label < items[j].Label })
	return Signature{Layer: layer, TerminalCount: terminalCount, Edges: items}
}

// key renders the signature as a comparable Go value usable as a map key
// directly (sorted edges make this deterministic), sidestepping the need
// for a fingerprint in code paths that can afford a string-keyed map.
func (s Signature) key() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(s.Layer))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(s.TerminalCount))
	for _, e := range s.Edges {
		b.WriteByte('|')
		b.WriteString(e.Label)
		b.WriteByte('=')
		b.WriteString(strconv.Itoa(e.Child))
	}
	return b.String()
}

// Fingerprint hashes the canonical signature into a uint64, the "structural
// hash" referenced in the package glossary. It is used as the bucket key
// for the slice compiler's per-layer intern table and the trie reducer's
// per-layer grouping map, with the full key() string used to resolve
// collisions within a bucket.
func (s Signature) Fingerprint() uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(s.key())
	return h.Sum64()
}

// signatureIndex is a per-layer intern table mapping a canonical signature
// to the id of the single canonical node with that signature. Lookup is a
// fingerprint hit followed by an exact key() comparison to guard against
// hash collisions.
type signatureIndex struct {
	buckets map[uint64][]signatureEntry
}

type signatureEntry struct {
	key string
	id  int
}

func newSignatureIndex() *signatureIndex {
	return &signatureIndex{buckets: make(map[uint64][]signatureEntry)}
}

// lookup returns the canonical node id for sig, if interned.
func (idx *signatureIndex) lookup(sig Signature) (int, bool) {
	k := sig.key()
	fp := sig.Fingerprint()
	for _, e := range idx.buckets[fp] {
		if e.key == k {
			return e.id, true
		}
	}
	return 0, false
}

// intern records sig as canonically mapping to id. Callers must have
// already checked lookup returns false for sig.
func (idx *signatureIndex) intern(sig Signature, id int) {
	fp := sig.Fingerprint()
	idx.buckets[fp] = append(idx.buckets[fp], signatureEntry{key: sig.key(), id: id})
}

// remove drops sig's entry, if present. Used by the slice compiler when a
// node's edge set changes after it was already interned, so a later lookup
// for the node's old shape cannot spuriously match it.
func (idx *signatureIndex) remove(sig Signature) {
	fp := sig.Fingerprint()
	k := sig.key()
	bucket := idx.buckets[fp]
	for i, e := range bucket {
		if e.key == k {
			idx.buckets[fp] = append(bucket[:i], bucket[i+1:]...)
			return
		}
	}
}
