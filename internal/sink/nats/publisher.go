package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"gitlab.com/nevasik7/alerting/logger"

	"github.com/ReqCrypto/sol-meme-scanner/internal/config"
	"github.com/ReqCrypto/sol-meme-scanner/internal/domain"
)

// Publisher delivers cycle results to a NATS subject as JSON. Consumers
// (chat bots, dashboards) subscribe downstream; message formatting is their
// problem, not ours.
type Publisher struct {
	nc      *nats.Conn
	log     logger.Logger
	subject string
}

func New(log logger.Logger, cfg *config.NATSConfig) (*Publisher, error) {
	if cfg == nil {
		return nil, errors.New("nats config is required")
	}
	if cfg.URL == "" {
		return nil, errors.New("nats url is required")
	}
	if cfg.Subject == "" {
		return nil, errors.New("nats subject is required")
	}

	opts := []nats.Option{
		nats.Name("sol-meme-scanner"),
		nats.Timeout(5 * time.Second),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &Publisher{
		nc:      nc,
		log:     log,
		subject: cfg.Subject,
	}, nil
}

func (p *Publisher) Deliver(_ context.Context, res *domain.CycleResult) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to marshal cycle result: %w", err)
	}

	if err = p.nc.Publish(p.subject, payload); err != nil {
		return fmt.Errorf("failed to publish cycle result: %w", err)
	}

	p.log.Debugf("Delivered %d candidates to %s", len(res.Candidates), p.subject)
	return nil
}

func (p *Publisher) Health(_ context.Context) error {
	if p.nc == nil || p.nc.Status() != nats.CONNECTED {
		return errors.New("nats connection not ready")
	}
	return nil
}

func (p *Publisher) Close() error {
	if p.nc == nil || p.nc.Status() == nats.CLOSED {
		return nil
	}

	if err := p.nc.Drain(); err != nil {
		p.log.Errorf("Failed to drain connection to NATS, error=%v", err)
		p.nc.Close()
		return fmt.Errorf("failed to drain connection to NATS: %w", err)
	}

	p.nc.Close()
	p.log.Infof("NATS connection closed gracefully")
	return nil
}
