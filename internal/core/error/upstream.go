package errx

import (
	"errors"
	"net/http"
)

// Sentinel errors for the chat-completion upstream. The remote caller
// classifies per-candidate outcomes with these so the engine can decide
// whether to advance to the next model or fail the whole call.
var (
	// ErrModelUnavailable marks a candidate model the API does not serve
	// (HTTP 404). The caller should try the next candidate.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrBadResponse marks a payload that deviates from the expected
	// {choices:[{message:{content}}]} shape.
	ErrBadResponse = errors.New("malformed completion response")

	// ErrAllModelsFailed is raised after every candidate has been tried
	// without producing a usable reply.
	ErrAllModelsFailed = errors.New("all models failed to respond")
)

// WrapUpstream wraps a chat-completion failure so HTTP handlers can map it
// to a retry-able status.
func WrapUpstream(err error) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, UpstreamErrorMessage)
}
