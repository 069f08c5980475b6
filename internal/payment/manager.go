package payment

import (
	"ninepay-gateway/internal/metrics"
)

// Manager owns the configured gateway for the lifetime of the process.
type Manager struct {
	cfg     Config
	gateway Gateway
}

func NewManager(cfg Config, doer Doer, recorder *metrics.Recorder) (*Manager, error) {
	gw, err := NewNinePayGateway(cfg, doer, recorder)
	if err != nil {
		return nil, err
	}
	return &Manager{cfg: cfg, gateway: gw}, nil
}

func (m *Manager) Gateway() Gateway {
	return m.gateway
}

// Env reports the environment name the gateway was configured with.
func (m *Manager) Env() string {
	return m.cfg.Env
}
