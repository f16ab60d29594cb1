package httphandler

import (
	"net/http"

	"go.opentelemetry.io/otel/propagation"

	"github.com/ourritual/sdk-go/keys"
	"github.com/ourritual/sdk-go/otel"
	"github.com/ourritual/sdk-go/rcontext"
)

// Transport is an http.RoundTripper that attaches the current unit's
// annotation context and trace headers to every outgoing request. The
// context is snapshotted at call-issue time.
//
//	client := &http.Client{Transport: httphandler.NewTransport(nil)}
type Transport struct {
	Base http.RoundTripper
}

func NewTransport(base http.RoundTripper) *Transport {
	return &Transport{Base: base}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	// Per RoundTripper contract the request must not be mutated in place.
	req = req.Clone(req.Context())
	otel.GetTextMapPropagator().Inject(req.Context(), propagation.HeaderCarrier(req.Header))
	if header := rcontext.Encode(rcontext.FromContext(req.Context())); header != "" {
		req.Header.Set(keys.ContextHeader, header)
	}
	return base.RoundTrip(req)
}
