package fdk

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Canonicalize strips every character of id which is not an ASCII digit, so
// "12.345.678/0001-99" and "12345678000199" map to the same key.
func Canonicalize(id string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, id)
}

// Index is the final store: documents keyed by canonical identifier.
type Index map[string]*Document

// Keys returns the keys of the index, sorted.
func (idx Index) Keys() []string {
	keys := make([]string, 0, len(idx))
	for k := range idx {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CollisionPolicy decides what Reindex does when two raw identifiers share a
// canonical key.
type CollisionPolicy int

const (
	// LastWriteWins keeps the document seen last and records the collision.
	LastWriteWins CollisionPolicy = iota
	// StrictCollisions fails with ErrIDCollision.
	StrictCollisions
)

// Collision describes two raw identifiers which canonicalized to Key.
type Collision struct {
	Key      string
	Replaced string
	Kept     string
}

// ReindexReport summarizes a Reindex call.
type ReindexReport struct {
	Collisions []Collision
	// Unkeyed lists raw identifiers without a single digit; they have no
	// canonical key and are left out of the index.
	Unkeyed []string
}

// Reindex re-keys docs by canonical identifier. A document's own identity
// (Fund.CNPJ) is used when set, otherwise its key in docs. Raw identifiers
// are visited in sorted order so that the outcome of a collision does not
// depend on map iteration order.
func Reindex(docs Documents, policy CollisionPolicy) (Index, ReindexReport, error) {
	var report ReindexReport
	raw := make([]string, 0, len(docs))
	for id := range docs {
		raw = append(raw, id)
	}
	sort.Strings(raw)

	idx := make(Index, len(docs))
	owner := make(map[string]string, len(docs))
	for _, key := range raw {
		doc := docs[key]
		if doc == nil {
			return nil, report, errors.Wrapf(ErrCorruptArtifact, "no document for %q", key)
		}
		id := key
		if doc.Fund.CNPJ != "" {
			id = doc.Fund.CNPJ
		}
		canon := Canonicalize(id)
		if canon == "" {
			report.Unkeyed = append(report.Unkeyed, id)
			continue
		}
		if prev, ok := owner[canon]; ok {
			if policy == StrictCollisions {
				return nil, report, errors.Wrapf(ErrIDCollision, "%q and %q both canonicalize to %s", prev, id, canon)
			}
			report.Collisions = append(report.Collisions, Collision{Key: canon, Replaced: prev, Kept: id})
		}
		owner[canon] = id
		idx[canon] = doc
	}
	return idx, report, nil
}
