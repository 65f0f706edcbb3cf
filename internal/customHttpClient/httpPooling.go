package customHttpClient

import (
	"net/http"

	"github.com/akolanti/GoRAG/internal/config"
)

var customTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

var pooledClient = &http.Client{
	Transport: customTransport,
	Timeout:   config.ProviderCallTimeout,
}

// Pooled returns the shared outbound HTTP client. Provider SDKs that accept
// a custom client should use it so repeated calls reuse connections instead
// of paying the TLS handshake every time.
func Pooled() *http.Client {
	return pooledClient
}
