package services

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/k12fleet/assetdesk/internal/logger"
)

// DirectoryPinger is the probe surface of the directory client.
type DirectoryPinger interface {
	Ping(ctx context.Context) error
}

// DirectoryStatus is the last observed health of the directory service.
type DirectoryStatus struct {
	Status    string    `json:"status"` // up, down, pending
	Latency   int64     `json:"latency_ms"`
	Message   string    `json:"message,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// HealthService periodically probes the asset directory so operators can see
// whether an audit pass is likely to succeed before starting one.
type HealthService struct {
	pinger DirectoryPinger

	mu     sync.RWMutex
	status DirectoryStatus
}

func NewHealthService(pinger DirectoryPinger) *HealthService {
	return &HealthService{
		pinger: pinger,
		status: DirectoryStatus{Status: "pending"},
	}
}

// Check probes the directory once and records the result.
func (s *HealthService) Check(ctx context.Context) DirectoryStatus {
	start := time.Now()
	status := DirectoryStatus{Status: "up", CheckedAt: start}

	if err := s.pinger.Ping(ctx); err != nil {
		status.Status = "down"
		status.Message = err.Error()
		logger.Log().WithError(err).Warn("directory service unreachable")
	}
	status.Latency = time.Since(start).Milliseconds()

	s.mu.Lock()
	s.status = status
	s.mu.Unlock()

	return status
}

// Status returns the most recent probe result.
func (s *HealthService) Status() DirectoryStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Schedule registers the periodic probe on the given cron runner.
func (s *HealthService) Schedule(c *cron.Cron) error {
	_, err := c.AddFunc("@every 1m", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		s.Check(ctx)
	})
	return err
}
