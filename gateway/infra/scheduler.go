package infra

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ranking-gateway/gateway/domain"
	"ranking-gateway/gateway/metrics"

	"go.uber.org/zap"
)

// Scheduler serializa todas as chamadas ao upstream do processo.
//
// Uma única goroutine (loop) consome a fila FIFO e executa uma tarefa por vez:
// espera até nextAllowed, roda a action e só então empurra nextAllowed para
// agora+cooldown. A admissão é limitada por maxPending (tarefas admitidas e
// ainda não concluídas); acima disso Schedule falha na hora com ErrQueueFull.
type Scheduler struct {
	cooldown   time.Duration
	maxPending int
	log        *zap.Logger
	now        func() time.Time

	mu          sync.Mutex
	pending     int
	nextAllowed time.Time
	stopped     bool

	queue chan *task
}

type task struct {
	ctx        context.Context
	action     func(context.Context) error
	enqueuedAt time.Time
	done       chan taskResult
}

type taskResult struct {
	queued time.Duration
	err    error
}

type SchedulerOption func(*Scheduler)

func WithCooldown(d time.Duration) SchedulerOption {
	return func(s *Scheduler) { s.cooldown = d }
}

func WithMaxPending(n int) SchedulerOption {
	return func(s *Scheduler) { s.maxPending = n }
}

func WithSchedulerLogger(l *zap.Logger) SchedulerOption {
	return func(s *Scheduler) { s.log = l }
}

func NewScheduler(opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		cooldown:   1 * time.Second,
		maxPending: 25,
		log:        zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.maxPending < 1 {
		s.maxPending = 1
	}
	if s.cooldown < 0 {
		s.cooldown = 0
	}
	// pending nunca passa de maxPending, então o envio no canal nunca bloqueia.
	s.queue = make(chan *task, s.maxPending)
	return s
}

func (s *Scheduler) Cooldown() time.Duration { return s.cooldown }
func (s *Scheduler) MaxPending() int         { return s.maxPending }

// Pending devolve quantas tarefas foram admitidas e ainda não terminaram.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// RetryAfter estima quando vale a pena o cliente tentar de novo com a fila cheia.
func (s *Scheduler) RetryAfter() time.Duration {
	d := time.Duration(s.Pending()) * s.cooldown
	if d < time.Second {
		return time.Second
	}
	return d
}

// Start inicia o loop que drena a fila. Pare cancelando o contexto.
func (s *Scheduler) Start(ctx DoneContext) {
	go s.loop(ctx)
}

// Schedule implementa domain.Scheduler.
//
// Depois de admitida, a action roda até o fim com um contexto que não é
// cancelado junto com o do chamador. Se ctx terminar antes, Schedule volta
// com ctx.Err(), mas a tarefa continua na fila.
func (s *Scheduler) Schedule(ctx context.Context, action func(context.Context) error) (time.Duration, error) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return 0, domain.ErrSchedulerStopped
	}
	if s.pending >= s.maxPending {
		s.mu.Unlock()
		metrics.SchedulerRejectedTotal.Inc()
		return 0, domain.ErrQueueFull
	}
	s.pending++
	t := &task{
		ctx:        context.WithoutCancel(ctx),
		action:     action,
		enqueuedAt: s.now(),
		done:       make(chan taskResult, 1),
	}
	// envio sob o lock: ordem da fila == ordem de admissão
	s.queue <- t
	metrics.SchedulerPending.Set(float64(s.pending))
	s.mu.Unlock()

	select {
	case res := <-t.done:
		return res.queued, res.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (s *Scheduler) loop(ctx DoneContext) {
	for {
		select {
		case <-ctx.Done():
			s.stop()
			return
		case t := <-s.queue:
			select {
			case <-ctx.Done():
				s.finish(t, 0, domain.ErrSchedulerStopped, false)
				s.stop()
				return
			default:
			}
			s.run(ctx, t)
		}
	}
}

func (s *Scheduler) run(ctx DoneContext, t *task) {
	s.mu.Lock()
	wait := s.nextAllowed.Sub(s.now())
	s.mu.Unlock()

	if wait > 0 {
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			s.finish(t, 0, domain.ErrSchedulerStopped, false)
			return
		}
	}

	startedAt := s.now()
	queued := startedAt.Sub(t.enqueuedAt)
	metrics.SchedulerWaitSeconds.Observe(queued.Seconds())

	err := s.invoke(t)
	if err != nil {
		s.log.Debug("upstream task failed", zap.Error(err), zap.Duration("queued", queued))
	}
	s.finish(t, queued, err, true)
}

// invoke isola panics da action para o loop continuar servindo a fila.
func (s *Scheduler) invoke(t *task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("upstream task panicked", zap.Any("panic", r))
			err = fmt.Errorf("upstream task panicked: %v", r)
		}
	}()
	return t.action(t.ctx)
}

func (s *Scheduler) finish(t *task, queued time.Duration, err error, ran bool) {
	s.mu.Lock()
	if ran {
		s.nextAllowed = s.now().Add(s.cooldown)
	}
	s.pending--
	metrics.SchedulerPending.Set(float64(s.pending))
	s.mu.Unlock()

	t.done <- taskResult{queued: queued, err: err}
}

// stop recusa novas tarefas e falha as que ainda estavam na fila.
func (s *Scheduler) stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	for {
		select {
		case t := <-s.queue:
			s.finish(t, 0, domain.ErrSchedulerStopped, false)
		default:
			return
		}
	}
}
