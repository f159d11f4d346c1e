package services

import (
	"context"
	"sync"
	"time"

	"blog-hand/providers"

	"go.uber.org/zap"
)

const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

// ProviderHealth ist das Ergebnis einer Probe gegen einen einzelnen Provider.
type ProviderHealth struct {
	Name      string `json:"name"`
	OK        bool   `json:"ok"`
	Count     int    `json:"count"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
}

// HealthReport fasst den Zustand aller Provider zusammen.
type HealthReport struct {
	Timestamp   time.Time        `json:"timestamp"`
	Status      string           `json:"status"`
	Providers   []ProviderHealth `json:"providers"`
	PinnedFound bool             `json:"pinned_found"`
}

// Healthy meldet, ob alle Provider erreichbar waren.
func (h *HealthReport) Healthy() bool {
	return h.Status == StatusHealthy
}

// HealthChecker fragt die Provider direkt ab, also ohne fetch-or-empty,
// damit Ausfälle sichtbar werden, die der Resolver sonst verschluckt.
type HealthChecker struct {
	Providers []providers.Provider
	Resolver  *Resolver
	Timeout   time.Duration
	Logger    *zap.Logger
}

func NewHealthChecker(ps []providers.Provider, resolver *Resolver, logger *zap.Logger) *HealthChecker {
	return &HealthChecker{Providers: ps, Resolver: resolver, Timeout: 10 * time.Second, Logger: logger}
}

// Check prüft alle Provider parallel mit einer Recent-Anfrage (limit 1).
func (h *HealthChecker) Check(ctx context.Context) *HealthReport {
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	report := &HealthReport{
		Timestamp: time.Now().UTC(),
		Status:    StatusHealthy,
		Providers: make([]ProviderHealth, len(h.Providers)),
	}

	var wg sync.WaitGroup
	for i, p := range h.Providers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			report.Providers[i] = h.probe(ctx, p)
		}()
	}
	if h.Resolver != nil && h.Resolver.PinnedID != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			report.PinnedFound = h.Resolver.ByID(ctx, h.Resolver.PinnedID) != nil
		}()
	}
	wg.Wait()

	for _, ph := range report.Providers {
		if !ph.OK {
			report.Status = StatusDegraded
		}
	}
	if len(report.Providers) == 0 {
		report.Status = StatusDegraded
	}
	return report
}

func (h *HealthChecker) probe(ctx context.Context, p providers.Provider) ProviderHealth {
	ph := ProviderHealth{Name: p.Name()}
	if !p.Capabilities().Has(providers.KindRecent) {
		ph.OK = true
		return ph
	}

	start := time.Now()
	articles, err := p.Query(ctx, providers.Query{Kind: providers.KindRecent, Limit: 1})
	ph.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		h.Logger.Warn("Health-Probe fehlgeschlagen", zap.String("provider", p.Name()), zap.Error(err))
		ph.Error = err.Error()
		return ph
	}
	ph.OK = true
	ph.Count = len(articles)
	return ph
}
