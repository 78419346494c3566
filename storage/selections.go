package storage

import (
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/vocdoni/note-selector/selector"
	"github.com/vocdoni/note-selector/types"
)

// SelectionReport is the stored outcome of a selection, kept so a wallet
// can audit later which plan was chosen and why.
type SelectionReport struct {
	ID              uuid.UUID        `json:"id"              cbor:"0,keyasint,omitempty"`
	CreatedAt       int64            `json:"createdAt"       cbor:"1,keyasint,omitempty"`
	RequestedAmount *types.BigInt    `json:"requestedAmount" cbor:"2,keyasint,omitempty"`
	ChainID         uint64           `json:"chainId"         cbor:"3,keyasint,omitempty"`
	Scope           *types.BigInt    `json:"scope"           cbor:"4,keyasint,omitempty"`
	CurrentBlock    uint64           `json:"currentBlock"    cbor:"5,keyasint,omitempty"`
	Results         []*ResultSummary `json:"results"         cbor:"6,keyasint,omitempty"`
}

// ResultSummary is the stored version of a scored candidate.
type ResultSummary struct {
	Strategy     string                         `json:"strategy"     cbor:"0,keyasint,omitempty"`
	Chosen       bool                           `json:"isChosen"     cbor:"1,keyasint,omitempty"`
	PrivacyScore float64                        `json:"privacyScore" cbor:"2,keyasint,omitempty"`
	Scores       map[selector.Objective]float64 `json:"scores"       cbor:"3,keyasint,omitempty"`
	Allocations  []*AllocationSummary           `json:"allocations"  cbor:"4,keyasint,omitempty"`
	Change       *types.BigInt                  `json:"change"       cbor:"5,keyasint,omitempty"`
}

// AllocationSummary is the amount spent from a note, identified by label.
type AllocationSummary struct {
	Label  *types.BigInt `json:"label"  cbor:"0,keyasint,omitempty"`
	Amount *types.BigInt `json:"amount" cbor:"1,keyasint,omitempty"`
}

// NewSelectionReport summarizes the results of a selection. The ID is left
// empty, SetSelection assigns it.
func NewSelectionReport(requested *big.Int, chainID uint64, scope *types.BigInt,
	currentBlock uint64, results []*selector.Result,
) *SelectionReport {
	report := &SelectionReport{
		RequestedAmount: types.FromBig(requested),
		ChainID:         chainID,
		Scope:           scope,
		CurrentBlock:    currentBlock,
		Results:         make([]*ResultSummary, 0, len(results)),
	}
	for _, r := range results {
		summary := &ResultSummary{
			Strategy:     r.Strategy,
			Chosen:       r.Chosen,
			PrivacyScore: r.PrivacyScore,
			Scores:       r.Scores,
			Change:       r.Change,
		}
		for _, a := range r.Plan.Allocations() {
			summary.Allocations = append(summary.Allocations, &AllocationSummary{
				Label:  a.Note.Label,
				Amount: types.FromBig(a.Amount),
			})
		}
		report.Results = append(report.Results, summary)
	}
	return report
}

// Chosen returns the chosen result of the report, or nil if the selection
// found no plan.
func (r *SelectionReport) Chosen() *ResultSummary {
	for _, res := range r.Results {
		if res.Chosen {
			return res
		}
	}
	return nil
}

// SetSelection stores the report under a new random ID and returns it. The
// creation time is set if missing.
func (s *Storage) SetSelection(report *SelectionReport) (uuid.UUID, error) {
	if report == nil {
		return uuid.Nil, fmt.Errorf("nil selection report")
	}
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	report.ID = uuid.New()
	if report.CreatedAt == 0 {
		report.CreatedAt = time.Now().Unix()
	}
	if err := s.setArtifact(selectionPrefix, report.ID[:], report); err != nil {
		return uuid.Nil, fmt.Errorf("store selection: %w", err)
	}
	return report.ID, nil
}

// Selection returns the stored report. It returns ErrNotFound if there is
// no report with that ID.
func (s *Storage) Selection(id uuid.UUID) (*SelectionReport, error) {
	report := &SelectionReport{}
	if err := s.getArtifact(selectionPrefix, id[:], report); err != nil {
		return nil, err
	}
	return report, nil
}

// ListSelections returns the IDs of every stored report.
func (s *Storage) ListSelections() ([]uuid.UUID, error) {
	keys, err := s.listArtifacts(selectionPrefix)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(keys))
	for _, k := range keys {
		id, err := uuid.FromBytes(k)
		if err != nil {
			return nil, fmt.Errorf("invalid selection key %x: %w", k, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
