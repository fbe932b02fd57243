package fdk

// Error is a constant error type so sentinels can be declared as consts.
type Error string

func (e Error) Error() string { return string(e) }

const (
	// ErrCorruptArtifact is returned when a persisted artifact exists and is
	// not empty, but cannot be decoded. It needs an operator: the file is
	// never silently discarded.
	ErrCorruptArtifact = Error("artifact exists but is not valid")

	// ErrIDCollision is returned by Reindex under StrictCollisions.
	ErrIDCollision = Error("identifiers collide after canonicalization")

	// ErrNotFound is returned by a DocumentReader for unknown identifiers.
	ErrNotFound = Error("document not found")
)

// IndexWriter persists a complete Index. Implementations replace whatever
// they held before in one step, so a failed write leaves the previous index
// readable.
type IndexWriter interface {
	WriteIndex(idx Index) error
}

// DocumentReader is the read side of the final store, as used by the lookup
// service. Implementations accept the identifier in any formatting and
// canonicalize it before the lookup.
type DocumentReader interface {
	Document(id string) (*Document, error)
}
