package services

import (
	"sync"
	"time"

	"team-project/dashboard/logging"
	"team-project/dashboard/models"
)

type registryEntry struct {
	dashboard *Dashboard
	lastUsed  time.Time
}

// DashboardRegistry keeps one Dashboard per browser session. Entries untouched
// for longer than the idle timeout are dropped.
type DashboardRegistry struct {
	backend     Backend
	concurrency int
	idleTimeout time.Duration
	now         func() time.Time

	mu         sync.Mutex
	dashboards map[string]*registryEntry
}

func NewDashboardRegistry(backend Backend, concurrency int, idleTimeout time.Duration) *DashboardRegistry {
	return &DashboardRegistry{
		backend:     backend,
		concurrency: concurrency,
		idleTimeout: idleTimeout,
		now:         time.Now,
		dashboards:  map[string]*registryEntry{},
	}
}

// Open returns the dashboard stored under key, creating it on first use. A
// changed identity starts over with an empty dashboard.
func (r *DashboardRegistry) Open(key string, identity models.Identity) *Dashboard {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.evictIdle(now)

	if e, ok := r.dashboards[key]; ok &&
		e.dashboard.identity.Username == identity.Username &&
		e.dashboard.identity.Role == identity.Role {
		e.lastUsed = now
		return e.dashboard
	}
	d := NewDashboard(r.backend, identity, r.concurrency)
	r.dashboards[key] = &registryEntry{dashboard: d, lastUsed: now}
	return d
}

// Close drops the dashboard stored under key.
func (r *DashboardRegistry) Close(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.dashboards, key)
}

// Len is the number of live dashboards.
func (r *DashboardRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.dashboards)
}

func (r *DashboardRegistry) evictIdle(now time.Time) {
	if r.idleTimeout <= 0 {
		return
	}
	for key, e := range r.dashboards {
		if now.Sub(e.lastUsed) > r.idleTimeout {
			logging.Logger.Debugf("Event ID: DASHBOARD_EVICTED, Description: %s idle since %s", e.dashboard.identity.Username, e.lastUsed.Format(time.RFC3339))
			delete(r.dashboards, key)
		}
	}
}
