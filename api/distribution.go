package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vocdoni/note-selector/anonymity"
	"github.com/vocdoni/note-selector/log"
	stg "github.com/vocdoni/note-selector/storage"
	"github.com/vocdoni/note-selector/types"
)

// setDistribution stores the anonymity distribution of a pool
// POST /distributions
func (a *API) setDistribution(w http.ResponseWriter, r *http.Request) {
	req := &DistributionRequest{}
	if err := decodeBody(w, r, req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	if len(req.Distribution) == 0 {
		ErrMalformedDistribution.With("empty distribution").Write(w)
		return
	}
	dist, err := anonymity.FromMap(req.Distribution)
	if err != nil {
		ErrMalformedDistribution.WithErr(err).Write(w)
		return
	}
	if err := a.storage.SetDistribution(req.ChainID, req.Scope, dist); err != nil {
		ErrGenericInternalServerError.Withf("could not store distribution: %v", err).Write(w)
		return
	}
	log.Infow("anonymity distribution stored",
		"chainId", req.ChainID,
		"scope", req.Scope.String(),
		"entries", dist.Len(),
	)
	httpWriteJSON(w, distributionResponse(req.ChainID, req.Scope, dist, 0))
}

// distribution returns the stored anonymity distribution of a pool
// GET /distributions/{chainId}/{scope}
func (a *API) distribution(w http.ResponseWriter, r *http.Request) {
	chainID, err := strconv.ParseUint(chi.URLParam(r, ChainIDURLParam), 10, 64)
	if err != nil {
		ErrMalformedPoolID.WithErr(err).Write(w)
		return
	}
	scope := new(types.BigInt)
	if err := scope.UnmarshalText([]byte(chi.URLParam(r, ScopeURLParam))); err != nil {
		ErrMalformedPoolID.WithErr(err).Write(w)
		return
	}
	record, err := a.storage.DistributionRecord(chainID, scope)
	if err != nil {
		if errors.Is(err, stg.ErrNotFound) {
			ErrDistributionNotFound.Write(w)
			return
		}
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	dist, err := record.Distribution()
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	httpWriteJSON(w, distributionResponse(record.ChainID, record.Scope, dist, record.UpdatedAt))
}

// listDistributions returns every stored anonymity distribution
// GET /distributions
func (a *API) listDistributions(w http.ResponseWriter, r *http.Request) {
	records, err := a.storage.ListDistributions()
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	list := &DistributionList{Distributions: make([]*DistributionResponse, 0, len(records))}
	for _, record := range records {
		dist, err := record.Distribution()
		if err != nil {
			ErrGenericInternalServerError.WithErr(err).Write(w)
			return
		}
		list.Distributions = append(list.Distributions,
			distributionResponse(record.ChainID, record.Scope, dist, record.UpdatedAt))
	}
	httpWriteJSON(w, list)
}

func distributionResponse(chainID uint64, scope *types.BigInt, dist *anonymity.Distribution, updatedAt int64) *DistributionResponse {
	return &DistributionResponse{
		ChainID:      chainID,
		Scope:        scope,
		Distribution: dist.Map(),
		Thresholds: anonymity.ComputeThresholds(dist,
			anonymity.DefaultUnhealthyPercentile, anonymity.DefaultHealthyPercentile),
		UpdatedAt: updatedAt,
	}
}
