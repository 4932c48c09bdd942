package activitypub

import (
	"net/http"
	"time"

	"github.com/doyensec/safeurl"
)

// NewSafeClient builds the HTTP client used for all outbound federation
// traffic. safeurl validates resolved addresses at dial time, so
// payloads addressed at private, loopback or link-local ranges never
// leave the process even through DNS rebinding.
func NewSafeClient(timeout time.Duration) *http.Client {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes("http", "https").
		SetAllowedPorts(80, 443).
		Build()

	return safeurl.Client(config).Client
}
