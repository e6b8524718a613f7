package holds

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
)

// ActiveHoldsGauge получатель количества активных резервов (*metrics.Metrics)
type ActiveHoldsGauge interface {
	SetActiveHolds(n int)
}

// Sweeper периодически удаляет истекшие резервы и обновляет метрику
type Sweeper struct {
	registry Registry
	gauge    ActiveHoldsGauge
	logger   Logger
	cron     *cron.Cron
	timeout  time.Duration
}

// NewSweeper регистрирует задачу очистки по cron-расписанию (например "@every 1m")
func NewSweeper(registry Registry, schedule string, gauge ActiveHoldsGauge, logger Logger) (*Sweeper, error) {
	s := &Sweeper{
		registry: registry,
		gauge:    gauge,
		logger:   logger,
		cron:     cron.New(),
		timeout:  10 * time.Second,
	}

	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, err
	}
	return s, nil
}

// Start запускает планировщик в фоне
func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop останавливает планировщик и ждет завершения текущего прохода
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Sweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.Error("HoldSweeper: %v", err)
	}
}

// RunOnce выполняет один проход очистки
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	removed, err := s.registry.Sweep(ctx)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info("HoldSweeper: removed %d expired holds", removed)
	}

	if s.gauge != nil {
		active, err := s.registry.Count(ctx)
		if err != nil {
			return removed, err
		}
		s.gauge.SetActiveHolds(active)
	}
	return removed, nil
}
