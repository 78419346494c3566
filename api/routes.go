package api

const (
	// PingEndpoint is the endpoint for checking the API status
	PingEndpoint = "/ping"
	// SelectionsEndpoint is the endpoint for running a new note selection
	SelectionsEndpoint = "/selections"
	// SelectionEndpoint is the endpoint to get a stored selection report
	SelectionURLParam = "selectionId"
	SelectionEndpoint = "/selections/{" + SelectionURLParam + "}"
	// DistributionsEndpoint is the endpoint to store and list the anonymity
	// set distributions
	DistributionsEndpoint = "/distributions"
	// DistributionEndpoint is the endpoint to get the distribution of a pool
	ChainIDURLParam      = "chainId"
	ScopeURLParam        = "scope"
	DistributionEndpoint = "/distributions/{" + ChainIDURLParam + "}/{" + ScopeURLParam + "}"
	// MetricsEndpoint exposes the Prometheus metrics
	MetricsEndpoint = "/metrics"
)
