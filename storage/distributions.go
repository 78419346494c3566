package storage

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/vocdoni/note-selector/anonymity"
	"github.com/vocdoni/note-selector/types"
)

// DistributionRecord is the stored anonymity set distribution of a pool.
type DistributionRecord struct {
	ChainID   uint64            `json:"chainId"   cbor:"0,keyasint,omitempty"`
	Scope     *types.BigInt     `json:"scope"     cbor:"1,keyasint,omitempty"`
	Entries   []anonymity.Entry `json:"entries"   cbor:"2,keyasint,omitempty"`
	UpdatedAt int64             `json:"updatedAt" cbor:"3,keyasint,omitempty"`
}

// Distribution builds the anonymity distribution of the record.
func (r *DistributionRecord) Distribution() (*anonymity.Distribution, error) {
	return anonymity.NewDistribution(r.Entries)
}

// distributionKey is the big endian chain ID followed by the scope bytes.
func distributionKey(chainID uint64, scope *types.BigInt) []byte {
	return append(binary.BigEndian.AppendUint64(nil, chainID), scope.Bytes()...)
}

// SetDistribution stores the anonymity distribution of the pool identified
// by chain ID and scope, replacing the previous one.
func (s *Storage) SetDistribution(chainID uint64, scope *types.BigInt, dist *anonymity.Distribution) error {
	if dist == nil {
		return fmt.Errorf("nil distribution")
	}
	record := &DistributionRecord{
		ChainID:   chainID,
		Scope:     scope,
		Entries:   dist.Entries(),
		UpdatedAt: time.Now().Unix(),
	}
	return s.setArtifact(distributionPrefix, distributionKey(chainID, scope), record)
}

// DistributionRecord returns the stored distribution record of the pool.
// It returns ErrNotFound if none was stored.
func (s *Storage) DistributionRecord(chainID uint64, scope *types.BigInt) (*DistributionRecord, error) {
	record := &DistributionRecord{}
	if err := s.getArtifact(distributionPrefix, distributionKey(chainID, scope), record); err != nil {
		return nil, err
	}
	return record, nil
}

// Distribution returns the anonymity distribution of the pool. It returns
// ErrNotFound if none was stored.
func (s *Storage) Distribution(chainID uint64, scope *types.BigInt) (*anonymity.Distribution, error) {
	record, err := s.DistributionRecord(chainID, scope)
	if err != nil {
		return nil, err
	}
	return record.Distribution()
}

// ListDistributions returns every stored distribution record.
func (s *Storage) ListDistributions() ([]*DistributionRecord, error) {
	keys, err := s.listArtifacts(distributionPrefix)
	if err != nil {
		return nil, err
	}
	records := make([]*DistributionRecord, 0, len(keys))
	for _, k := range keys {
		record := &DistributionRecord{}
		if err := s.getArtifact(distributionPrefix, k, record); err != nil {
			return nil, fmt.Errorf("distribution %x: %w", k, err)
		}
		records = append(records, record)
	}
	return records, nil
}
