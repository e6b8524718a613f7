package holds

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// MemoryRegistry резервы в памяти процесса, разбитые на шарды по (мастер, дата).
// Потеря резервов при рестарте допустима: подтверждение записи все равно перепроверяет интервал.
//
// Порядок захвата блокировок: сначала mu, потом shard.mu. Одновременно обе держит только Sweep.
type MemoryRegistry struct {
	mu        sync.RWMutex
	shards    map[string]*shard
	byID      map[string]string // holdID -> ключ шарда
	bySession map[string]string // sessionID -> holdID
	clock     Clock
}

type shard struct {
	mu    sync.RWMutex
	holds map[string]*domain.Hold
	dead  bool // шард удален из реестра сборщиком, писать в него нельзя
}

// NewMemoryRegistry создает реестр в памяти
func NewMemoryRegistry(clock Clock) *MemoryRegistry {
	if clock == nil {
		clock = RealClock
	}
	return &MemoryRegistry{
		shards:    make(map[string]*shard),
		byID:      make(map[string]string),
		bySession: make(map[string]string),
		clock:     clock,
	}
}

func (r *MemoryRegistry) shardFor(key string, create bool) *shard {
	r.mu.RLock()
	sh, ok := r.shards[key]
	r.mu.RUnlock()
	if ok || !create {
		return sh
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if sh, ok = r.shards[key]; !ok {
		sh = &shard{holds: make(map[string]*domain.Hold)}
		r.shards[key] = sh
	}
	return sh
}

func (r *MemoryRegistry) Acquire(_ context.Context, hold *domain.Hold) error {
	key := domain.DayKey(hold.StylistID, hold.Date)
	now := r.clock.Now()
	stored := *hold

	for {
		sh := r.shardFor(key, true)
		sh.mu.Lock()
		if sh.dead {
			sh.mu.Unlock()
			continue
		}

		for id, other := range sh.holds {
			if other.IsExpired(now) {
				delete(sh.holds, id)
				continue
			}
			if other.SessionID == hold.SessionID {
				continue
			}
			if other.Interval().Overlaps(hold.Interval()) {
				sh.mu.Unlock()
				return ErrConflict
			}
		}
		sh.holds[stored.ID] = &stored
		sh.mu.Unlock()
		break
	}

	r.mu.Lock()
	prevID := r.bySession[hold.SessionID]
	r.bySession[hold.SessionID] = hold.ID
	r.byID[hold.ID] = key
	prevKey := r.byID[prevID]
	if prevID != "" && prevID != hold.ID {
		delete(r.byID, prevID)
	}
	r.mu.Unlock()

	if prevID != "" && prevID != hold.ID {
		if sh := r.shardFor(prevKey, false); sh != nil {
			sh.mu.Lock()
			delete(sh.holds, prevID)
			sh.mu.Unlock()
		}
	}

	return nil
}

func (r *MemoryRegistry) Get(_ context.Context, holdID string) (*domain.Hold, error) {
	r.mu.RLock()
	key, ok := r.byID[holdID]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	sh := r.shardFor(key, false)
	if sh == nil {
		return nil, ErrNotFound
	}

	sh.mu.RLock()
	defer sh.mu.RUnlock()
	h, ok := sh.holds[holdID]
	if !ok || h.IsExpired(r.clock.Now()) {
		return nil, ErrNotFound
	}
	cp := *h
	return &cp, nil
}

func (r *MemoryRegistry) Release(_ context.Context, holdID string) error {
	r.mu.Lock()
	key, ok := r.byID[holdID]
	delete(r.byID, holdID)
	r.mu.Unlock()
	if !ok {
		return nil
	}

	sh := r.shardFor(key, false)
	if sh == nil {
		return nil
	}

	sh.mu.Lock()
	h, ok := sh.holds[holdID]
	delete(sh.holds, holdID)
	sh.mu.Unlock()

	if ok {
		r.mu.Lock()
		if r.bySession[h.SessionID] == holdID {
			delete(r.bySession, h.SessionID)
		}
		r.mu.Unlock()
	}
	return nil
}

func (r *MemoryRegistry) ListActive(_ context.Context, stylistID int64, date time.Time) ([]*domain.Hold, error) {
	sh := r.shardFor(domain.DayKey(stylistID, date), false)
	if sh == nil {
		return []*domain.Hold{}, nil
	}

	now := r.clock.Now()
	sh.mu.RLock()
	result := make([]*domain.Hold, 0, len(sh.holds))
	for _, h := range sh.holds {
		if h.IsExpired(now) {
			continue
		}
		cp := *h
		result = append(result, &cp)
	}
	sh.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].StartTime.IsBefore(result[j].StartTime)
	})
	return result, nil
}

func (r *MemoryRegistry) Sweep(_ context.Context) (int, error) {
	now := r.clock.Now()
	removed := 0

	r.mu.Lock()
	defer r.mu.Unlock()

	for key, sh := range r.shards {
		sh.mu.Lock()
		for id, h := range sh.holds {
			if !h.IsExpired(now) {
				continue
			}
			delete(sh.holds, id)
			delete(r.byID, id)
			if r.bySession[h.SessionID] == id {
				delete(r.bySession, h.SessionID)
			}
			removed++
		}
		if len(sh.holds) == 0 {
			sh.dead = true
			delete(r.shards, key)
		}
		sh.mu.Unlock()
	}

	// индексы резервов, удаленных лениво в Acquire
	for id, key := range r.byID {
		sh, ok := r.shards[key]
		if !ok {
			delete(r.byID, id)
			continue
		}
		sh.mu.RLock()
		_, exists := sh.holds[id]
		sh.mu.RUnlock()
		if !exists {
			delete(r.byID, id)
		}
	}
	for session, id := range r.bySession {
		if _, ok := r.byID[id]; !ok {
			delete(r.bySession, session)
		}
	}

	return removed, nil
}

func (r *MemoryRegistry) Count(_ context.Context) (int, error) {
	now := r.clock.Now()
	count := 0

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, sh := range r.shards {
		sh.mu.RLock()
		for _, h := range sh.holds {
			if !h.IsExpired(now) {
				count++
			}
		}
		sh.mu.RUnlock()
	}
	return count, nil
}
