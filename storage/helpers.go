package storage

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

// Artifact encoding/decoding
func encodeArtifact(a any) ([]byte, error) {
	encOpts := cbor.CoreDetEncOptions()
	em, err := encOpts.EncMode()
	if err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}
	return em.Marshal(a)
}

func decodeArtifact(data []byte, out any) error {
	return cbor.Unmarshal(data, out)
}

// getArtifact decodes the artifact stored under prefix+key into out. It
// returns ErrNotFound if there is no such key.
func (s *Storage) getArtifact(prefix, key []byte, out any) error {
	pr := prefixeddb.NewPrefixedReader(s.db, prefix)
	data, err := pr.Get(key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get artifact: %w", err)
	}
	if err := decodeArtifact(data, out); err != nil {
		return fmt.Errorf("decode artifact: %w", err)
	}
	return nil
}

// setArtifact encodes and stores the artifact under prefix+key, replacing
// any previous value.
func (s *Storage) setArtifact(prefix, key []byte, artifact any) error {
	data, err := encodeArtifact(artifact)
	if err != nil {
		return err
	}
	wTx := prefixeddb.NewPrefixedWriteTx(s.db.WriteTx(), prefix)
	if err := wTx.Set(key, data); err != nil {
		wTx.Discard()
		return err
	}
	return wTx.Commit()
}

// listArtifacts returns the keys stored under the prefix, without it.
func (s *Storage) listArtifacts(prefix []byte) ([][]byte, error) {
	pr := prefixeddb.NewPrefixedReader(s.db, prefix)
	var keys [][]byte
	if err := pr.Iterate(nil, func(k, _ []byte) bool {
		keys = append(keys, bytes.Clone(k))
		return true
	}); err != nil {
		return nil, fmt.Errorf("iterate artifacts: %w", err)
	}
	return keys, nil
}
