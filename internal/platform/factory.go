package platform

import (
	"github.com/aretw0/notes/pkg/core"
)

// New wires the backend adapter into a core.Service.
//
//	svc, err := notes.New("https://notes.example.com/api", notes.WithTimeout(5*time.Second))
func New(uri string, opts ...Option) (*core.Service, error) {
	api, err := Init(uri, opts...)
	if err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	policy, _ := o.config["refresh_policy"].(core.RefreshPolicy)
	buffer, _ := o.config["event_buffer"].(int)

	return core.NewService(api, core.ServiceConfig{
		RefreshPolicy: policy,
		EventBuffer:   buffer,
		Logger:        o.logger,
	}), nil
}
