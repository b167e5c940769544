package testutil

import (
	"time"

	"github.com/julianstephens/habitual/internal/api"
)

// Client returns an API client pointed at the fake service. Retries are
// disabled so injected failures surface immediately.
func (s *Server) Client(opts ...api.Option) *api.Client {
	base := []api.Option{
		api.WithTokenStore(&api.MemoryTokenStore{}),
		api.WithRetryMax(0),
		api.WithRetryWait(time.Millisecond, 5*time.Millisecond),
	}
	return api.New(s.URL, append(base, opts...)...)
}

// LoggedInClient returns a client that already holds the service token.
func (s *Server) LoggedInClient(opts ...api.Option) *api.Client {
	tokens := &api.MemoryTokenStore{}
	_ = tokens.SetToken(DefaultToken)
	return s.Client(append([]api.Option{api.WithTokenStore(tokens)}, opts...)...)
}
