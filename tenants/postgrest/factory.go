package postgrest

import (
	"net/http"
	"time"

	"github.com/jrsteele09/bot-dashboard/tenants"
)

// Factory builds a new Client for every descriptor it is given.
type Factory struct {
	timeout   time.Duration
	transport http.RoundTripper
}

var _ tenants.ClientFactory = (*Factory)(nil)

// FactoryOption defines a function type to modify the Factory.
type FactoryOption func(*Factory)

// WithTransport sets the base round tripper (primarily for testing).
func WithTransport(rt http.RoundTripper) FactoryOption {
	return func(f *Factory) {
		f.transport = rt
	}
}

func NewFactory(timeout time.Duration, options ...FactoryOption) *Factory {
	f := &Factory{timeout: timeout}
	for _, opt := range options {
		opt(f)
	}
	return f
}

func (f *Factory) NewClient(d tenants.Descriptor) (tenants.Client, error) {
	c, err := NewClient(d, f.timeout, f.transport)
	if err != nil {
		return nil, err
	}
	return c, nil
}
