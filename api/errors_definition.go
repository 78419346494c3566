//nolint:lll
package api

import (
	"fmt"
	"net/http"
)

// The custom Error type satisfies the error interface.
// Error() returns a human-readable description of the error.
//
// Error codes in the 40001-49999 range are the user's fault,
// and they return HTTP Status 400 or 404, whatever is most appropriate.
//
// Error codes 50001-59999 are the server's fault
// and they return HTTP Status 500 or 503, or something else if appropriate.
//
// NEVER change any of the current error codes, only append new errors after the current last 4XXX or 5XXX
// If you notice there's a gap, DON'T fill in the gap, that code was used in the past for some error
// and shouldn't be reused.
// There's no correlation between Code and HTTP Status.
var (
	ErrResourceNotFound      = Error{Code: 40001, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("resource not found")}
	ErrMalformedBody         = Error{Code: 40004, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed JSON body")}
	ErrInvalidAmount         = Error{Code: 40010, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid requested amount")}
	ErrInvalidNote           = Error{Code: 40011, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid note")}
	ErrInvalidWeights        = Error{Code: 40012, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid weights")}
	ErrMalformedDistribution = Error{Code: 40013, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed anonymity distribution")}
	ErrMalformedSelectionID  = Error{Code: 40014, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed selection ID")}
	ErrSelectionNotFound     = Error{Code: 40015, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("selection not found")}
	ErrMalformedPoolID       = Error{Code: 40016, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed chain ID or scope")}
	ErrDistributionNotFound  = Error{Code: 40017, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("distribution not found")}
	ErrInvalidPercentile     = Error{Code: 40018, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid percentile")}

	ErrMarshalingServerJSONFailed = Error{Code: 50001, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("marshaling (server-side) JSON failed")}
	ErrGenericInternalServerError = Error{Code: 50002, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("internal server error")}
	ErrBlockHeightUnavailable     = Error{Code: 50003, HTTPstatus: http.StatusServiceUnavailable, Err: fmt.Errorf("current block height unavailable")}
)
