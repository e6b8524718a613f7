// Package usecasetest содержит in-memory реализации зависимостей use case для тестов
package usecasetest

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/catalogservice"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/staffservice"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Clock управляемые часы
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock создает часы, показывающие now
func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance сдвигает часы вперед
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set устанавливает время
func (c *Clock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// TxManager выполняет функцию без транзакции
type TxManager struct{}

func (TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }
func (TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
func (TxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Staff справочник мастеров в памяти
type Staff struct {
	mu       sync.RWMutex
	stylists map[int64]*domain.Stylist
	Err      error
}

// NewStaff создает справочник с указанными мастерами
func NewStaff(stylists ...*domain.Stylist) *Staff {
	s := &Staff{stylists: make(map[int64]*domain.Stylist)}
	for _, st := range stylists {
		s.Put(st)
	}
	return s
}

// Put добавляет или заменяет мастера
func (s *Staff) Put(st *domain.Stylist) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stylists[st.ID] = st
}

func (s *Staff) GetStylist(_ context.Context, id int64) (*domain.Stylist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	st, ok := s.stylists[id]
	if !ok {
		return nil, staffservice.ErrStylistNotFound
	}
	cp := *st
	return &cp, nil
}

func (s *Staff) GetActiveStylists(_ context.Context) ([]*domain.Stylist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	result := make([]*domain.Stylist, 0, len(s.stylists))
	for _, st := range s.stylists {
		if st.IsActive {
			cp := *st
			result = append(result, &cp)
		}
	}
	return result, nil
}

// Catalog каталог услуг в памяти
type Catalog struct {
	services map[int64]*domain.Service
}

// NewCatalog создает каталог с указанными услугами
func NewCatalog(services ...*domain.Service) *Catalog {
	c := &Catalog{services: make(map[int64]*domain.Service)}
	for _, s := range services {
		c.services[s.ID] = s
	}
	return c
}

func (c *Catalog) GetService(_ context.Context, id int64) (*domain.Service, error) {
	s, ok := c.services[id]
	if !ok {
		return nil, catalogservice.ErrServiceNotFound
	}
	cp := *s
	return &cp, nil
}

// Appointments репозиторий записей в памяти.
// Повторяет ограничения БД: пересечение занимающих записей мастера и уникальность хеша токена.
type Appointments struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*domain.Appointment
}

// NewAppointments создает пустой репозиторий
func NewAppointments() *Appointments {
	return &Appointments{rows: make(map[int64]*domain.Appointment)}
}

func (r *Appointments) LockStylistDay(context.Context, int64, time.Time) error { return nil }

func (r *Appointments) Create(_ context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.rows {
		if existing.TokenHash == appt.TokenHash {
			return nil, appointmentRepo.ErrDuplicateToken
		}
	}
	if r.collides(appt, 0) {
		return nil, appointmentRepo.ErrSlotTaken
	}

	r.nextID++
	cp := *appt
	cp.ID = r.nextID
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	r.rows[cp.ID] = &cp

	out := cp
	return &out, nil
}

func (r *Appointments) GetByID(_ context.Context, id int64) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.rows[id]
	if !ok {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *Appointments) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Appointment, error) {
	return r.GetByID(ctx, id)
}

func (r *Appointments) GetByTokenHash(_ context.Context, hash string) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.rows {
		if a.TokenHash == hash {
			cp := *a
			return &cp, nil
		}
	}
	return nil, appointmentRepo.ErrAppointmentNotFound
}

func (r *Appointments) ListOccupying(_ context.Context, stylistID int64, date time.Time, excludeID int64) ([]*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*domain.Appointment
	for _, a := range r.rows {
		if a.StylistID == stylistID && a.ID != excludeID && a.IsOccupying() && sameDay(a.Date, date) {
			cp := *a
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *Appointments) ListByStylist(_ context.Context, filter domain.StylistAppointmentsFilter) ([]*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*domain.Appointment
	for _, a := range r.rows {
		if a.StylistID != filter.StylistID {
			continue
		}
		if filter.StartDate != nil && domain.DateOnly(a.Date).Before(domain.DateOnly(*filter.StartDate)) {
			continue
		}
		if filter.EndDate != nil && domain.DateOnly(a.Date).After(domain.DateOnly(*filter.EndDate)) {
			continue
		}
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		if filter.Status == nil && !filter.IncludeInactive && !a.IsOccupying() {
			continue
		}
		cp := *a
		result = append(result, &cp)
	}
	return result, nil
}

func (r *Appointments) UpdateStatus(_ context.Context, id int64, status domain.AppointmentStatus, at time.Time) error {
	return r.update(id, func(a *domain.Appointment) {
		a.Status = status
		a.UpdatedAt = at
	})
}

func (r *Appointments) Cancel(_ context.Context, id int64, reason *string, at time.Time) error {
	return r.update(id, func(a *domain.Appointment) {
		a.Status = domain.StatusCancelled
		a.CancellationReason = reason
		a.CancelledAt = &at
		a.UpdatedAt = at
	})
}

func (r *Appointments) Reschedule(_ context.Context, id int64, date time.Time, start, end types.TimeString, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.rows[id]
	if !ok {
		return appointmentRepo.ErrAppointmentNotFound
	}
	moved := *a
	moved.Date, moved.StartTime, moved.EndTime = date, start, end
	moved.Status = domain.StatusRescheduled
	if r.collides(&moved, id) {
		return appointmentRepo.ErrSlotTaken
	}
	moved.RescheduledAt = &at
	moved.UpdatedAt = at
	r.rows[id] = &moved
	return nil
}

// All возвращает копии всех записей
func (r *Appointments) All() []*domain.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*domain.Appointment, 0, len(r.rows))
	for _, a := range r.rows {
		cp := *a
		result = append(result, &cp)
	}
	return result
}

func (r *Appointments) update(id int64, fn func(a *domain.Appointment)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.rows[id]
	if !ok {
		return appointmentRepo.ErrAppointmentNotFound
	}
	fn(a)
	return nil
}

func (r *Appointments) collides(appt *domain.Appointment, excludeID int64) bool {
	if !appt.IsOccupying() {
		return false
	}
	for _, existing := range r.rows {
		if existing.ID == excludeID || existing.StylistID != appt.StylistID || !existing.IsOccupying() {
			continue
		}
		if sameDay(existing.Date, appt.Date) && existing.Interval().Overlaps(appt.Interval()) {
			return true
		}
	}
	return false
}

func sameDay(a, b time.Time) bool {
	return domain.DateOnly(a).Equal(domain.DateOnly(b))
}

// Publisher запоминает опубликованные события
type Publisher struct {
	mu     sync.Mutex
	events []domain.AppointmentEvent
	Err    error
}

func (p *Publisher) Publish(_ context.Context, e domain.AppointmentEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.events = append(p.events, e)
	return nil
}

// Events возвращает копию опубликованных событий
func (p *Publisher) Events() []domain.AppointmentEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.AppointmentEvent(nil), p.events...)
}

// Metrics считает исходы операций
type Metrics struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (m *Metrics) RecordBookingOutcome(operation, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.outcomes == nil {
		m.outcomes = make(map[string]int)
	}
	m.outcomes[operation+"/"+outcome]++
}

// Count количество исходов operation/outcome
func (m *Metrics) Count(operation, outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outcomes[operation+"/"+outcome]
}
