package engine

import (
	"encoding/gob"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/pierrec/lz4/v4"

	"github.com/hellblazer/art/geometry"
)

// snapshotMagic identifies the snapshot container format.
const snapshotMagic = "ARTSNAP1"

// SnapshotHeader describes a serialized category store. The ID is
// assigned at write time so individual snapshots can be told apart in
// blob storage.
type SnapshotHeader struct {
	Magic     string
	ID        uuid.UUID
	CreatedAt time.Time
	Rule      string
	Dimension int
	Slots     int
}

// snapshotBody carries the category slots, nil entries (pruned
// categories) included, so creation indices survive the round trip.
type snapshotBody struct {
	Slots []geometry.Category
}

// WriteSnapshot serializes the engine's category store to w as an
// lz4-compressed gob stream. Concrete category types are registered
// for gob by their geometry packages.
func (e *Engine) WriteSnapshot(w io.Writer) error {
	zw := lz4.NewWriter(w)
	enc := gob.NewEncoder(zw)

	hdr := SnapshotHeader{
		Magic:     snapshotMagic,
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
		Rule:      e.rule.Name(),
		Dimension: e.rule.Dimension(),
		Slots:     e.store.Slots(),
	}
	if err := enc.Encode(hdr); err != nil {
		return fmt.Errorf("engine: failed to encode snapshot header: %w", err)
	}
	if err := enc.Encode(snapshotBody{Slots: e.store.slots}); err != nil {
		return fmt.Errorf("engine: failed to encode snapshot body: %w", err)
	}
	return zw.Close()
}

// ReadSnapshot replaces the engine's category store with the contents
// of a snapshot previously written by WriteSnapshot. The snapshot must
// have been written by the same rule name and dimensionality;
// otherwise ErrSnapshotMismatch is returned and the store is left
// untouched.
func (e *Engine) ReadSnapshot(r io.Reader) (SnapshotHeader, error) {
	zr := lz4.NewReader(r)
	dec := gob.NewDecoder(zr)

	var hdr SnapshotHeader
	if err := dec.Decode(&hdr); err != nil {
		return SnapshotHeader{}, fmt.Errorf("engine: failed to decode snapshot header: %w", err)
	}
	if hdr.Magic != snapshotMagic {
		return SnapshotHeader{}, fmt.Errorf("engine: bad snapshot magic %q", hdr.Magic)
	}
	if hdr.Rule != e.rule.Name() || hdr.Dimension != e.rule.Dimension() {
		return SnapshotHeader{}, &ErrSnapshotMismatch{
			WantRule: e.rule.Name(),
			GotRule:  hdr.Rule,
			WantDim:  e.rule.Dimension(),
			GotDim:   hdr.Dimension,
		}
	}

	var body snapshotBody
	if err := dec.Decode(&body); err != nil {
		return SnapshotHeader{}, fmt.Errorf("engine: failed to decode snapshot body: %w", err)
	}
	for i, c := range body.Slots {
		if c != nil && c.Index() != i {
			return SnapshotHeader{}, fmt.Errorf("engine: snapshot slot %d holds category %d", i, c.Index())
		}
	}

	e.store.replace(body.Slots)
	return hdr, nil
}
