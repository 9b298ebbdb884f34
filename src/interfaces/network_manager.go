package interfaces

import "context"

// -----------------------------------------------------------------------------
// INetworkManager abstracts outbound HTTP so sources can be tested without
// hitting the real provider.
// -----------------------------------------------------------------------------

type INetworkManager interface {

	// Get performs a single GET request with the given query params and returns
	// the response body. A non-200 status or transport failure is an error.
	Get(ctx context.Context, url string, params map[string]string) ([]byte, error)
}
