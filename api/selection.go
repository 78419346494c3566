package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vocdoni/note-selector/anonymity"
	"github.com/vocdoni/note-selector/log"
	"github.com/vocdoni/note-selector/selector"
	stg "github.com/vocdoni/note-selector/storage"
)

// newSelection runs a note selection and stores its report
// POST /selections
func (a *API) newSelection(w http.ResponseWriter, r *http.Request) {
	req := &SelectionRequest{}
	if err := decodeBody(w, r, req); err != nil {
		selectionsTotal.WithLabelValues(outcomeRejected).Inc()
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	if req.RequestedAmount.Sign() <= 0 {
		selectionsTotal.WithLabelValues(outcomeRejected).Inc()
		ErrInvalidAmount.With("requested amount must be positive").Write(w)
		return
	}
	for _, p := range []float64{req.UnhealthyPercentile, req.HealthyPercentile} {
		if p < 0 || p > 1 {
			selectionsTotal.WithLabelValues(outcomeRejected).Inc()
			ErrInvalidPercentile.Withf("%f is out of [0, 1]", p).Write(w)
			return
		}
	}

	dist, apiErr := a.selectionDistribution(req)
	if apiErr != nil {
		selectionsTotal.WithLabelValues(outcomeRejected).Inc()
		apiErr.Write(w)
		return
	}

	var currentBlock uint64
	switch {
	case req.CurrentBlock != nil:
		currentBlock = *req.CurrentBlock
	case a.blocks != nil:
		height, err := a.blocks.BlockNumber(r.Context())
		if err != nil {
			selectionsTotal.WithLabelValues(outcomeFailed).Inc()
			ErrBlockHeightUnavailable.WithErr(err).Write(w)
			return
		}
		currentBlock = height
	default:
		log.Debugw("no current block height, note ages are ignored")
	}

	selReq := req.SelectorRequest(dist, currentBlock)
	ctx, err := a.selector.NewContext(selReq)
	if err != nil {
		selectionsTotal.WithLabelValues(outcomeRejected).Inc()
		selectionError(err).Write(w)
		return
	}

	start := time.Now()
	results, err := a.selector.Select(selReq)
	if err != nil {
		selectionsTotal.WithLabelValues(outcomeRejected).Inc()
		selectionError(err).Write(w)
		return
	}
	selectionDuration.Observe(time.Since(start).Seconds())
	selectionCandidates.Observe(float64(len(results)))
	if len(results) == 0 {
		selectionsTotal.WithLabelValues(outcomeInfeasible).Inc()
	} else {
		selectionsTotal.WithLabelValues(outcomeSelected).Inc()
		chosenStrategyTotal.WithLabelValues(string(results[0].Heuristic)).Inc()
		chosenNotes.Observe(float64(results[0].Plan.Len()))
	}

	report := stg.NewSelectionReport(selReq.RequestedAmount, req.ChainID, req.Scope, currentBlock, results)
	id, err := a.storage.SetSelection(report)
	if err != nil {
		ErrGenericInternalServerError.Withf("could not store selection: %v", err).Write(w)
		return
	}
	log.Infow("new selection",
		"id", id.String(),
		"requested", req.RequestedAmount.String(),
		"candidates", len(results),
	)
	httpWriteJSON(w, &SelectionResponse{
		ID:           id,
		CurrentBlock: currentBlock,
		Thresholds:   ctx.Thresholds,
		Results:      results,
	})
}

// selectionDistribution returns the inline distribution of the request or,
// if missing, the one stored for its pool. A pool without distribution
// yields nil, which makes every amount maximally identifiable.
func (a *API) selectionDistribution(req *SelectionRequest) (*anonymity.Distribution, *Error) {
	if req.AnonymityDistribution != nil {
		dist, err := anonymity.FromMap(req.AnonymityDistribution)
		if err != nil {
			e := ErrMalformedDistribution.WithErr(err)
			return nil, &e
		}
		return dist, nil
	}
	dist, err := a.storage.Distribution(req.ChainID, req.Scope)
	if err != nil {
		if errors.Is(err, stg.ErrNotFound) {
			log.Warnw("no anonymity distribution for pool", "chainId", req.ChainID, "scope", req.Scope.String())
			return nil, nil
		}
		e := ErrGenericInternalServerError.WithErr(err)
		return nil, &e
	}
	return dist, nil
}

// selectionError maps the selector errors to API errors.
func selectionError(err error) Error {
	switch {
	case errors.Is(err, selector.ErrInvalidAmount):
		return ErrInvalidAmount.WithErr(err)
	case errors.Is(err, selector.ErrInvalidNote):
		return ErrInvalidNote.WithErr(err)
	case errors.Is(err, selector.ErrInvalidWeights):
		return ErrInvalidWeights.WithErr(err)
	default:
		return ErrGenericInternalServerError.WithErr(err)
	}
}

// selection returns a stored selection report
// GET /selections/{selectionId}
func (a *API) selection(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, SelectionURLParam))
	if err != nil {
		ErrMalformedSelectionID.WithErr(err).Write(w)
		return
	}
	report, err := a.storage.Selection(id)
	if err != nil {
		if errors.Is(err, stg.ErrNotFound) {
			ErrSelectionNotFound.Write(w)
			return
		}
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	httpWriteJSON(w, report)
}
