// Package poller refreshes the unread notification count while a session is active.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/yukikurage/teamtask/internal/client/session"
	"github.com/yukikurage/teamtask/internal/logger"
	"go.uber.org/zap"
)

const DefaultInterval = 30 * time.Second

// UnreadFetcher is the part of the notification store the poller drives.
type UnreadFetcher interface {
	FetchUnread(ctx context.Context, userID uint64) (int, error)
}

// SessionSource reports the signed-in user and status transitions.
type SessionSource interface {
	UserID() uint64
	IsAuthenticated() bool
	Subscribe(fn func(session.Status)) func()
}

// Service owns the single polling loop of the process.
type Service struct {
	fetcher  UnreadFetcher
	session  SessionSource
	interval time.Duration
	log      *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	subs   map[uint64]chan int
	nextID uint64
	last   int
	unsub  func()
}

// New builds a poller. interval <= 0 takes DefaultInterval.
func New(fetcher UnreadFetcher, sess SessionSource, interval time.Duration, log *zap.Logger) *Service {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Service{
		fetcher:  fetcher,
		session:  sess,
		interval: interval,
		log:      logger.OrNop(log).Named("poller"),
		subs:     make(map[uint64]chan int),
	}
}

// Attach starts polling whenever the session becomes authenticated and
// stops it when the session ends. It starts at once if already signed in.
func (s *Service) Attach() {
	s.mu.Lock()
	if s.unsub != nil {
		s.mu.Unlock()
		return
	}
	s.unsub = s.session.Subscribe(func(st session.Status) {
		switch st {
		case session.StatusAuthenticated:
			s.Start()
		case session.StatusUnauthenticated:
			// May run on the loop goroutine when a poll gets a 401.
			s.stop(false)
		}
	})
	s.mu.Unlock()

	if s.session.IsAuthenticated() {
		s.Start()
	}
}

// Detach stops polling and drops the session subscription.
func (s *Service) Detach() {
	s.mu.Lock()
	unsub := s.unsub
	s.unsub = nil
	s.mu.Unlock()
	if unsub != nil {
		unsub()
	}
	s.Stop()
}

// Start runs the loop. It fetches immediately and then on every tick.
// Calling Start while running is a no-op.
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx, s.done)
	s.log.Debug("polling started", zap.Duration("interval", s.interval))
}

// Stop ends the loop and waits for it to exit.
func (s *Service) Stop() {
	s.stop(true)
}

func (s *Service) stop(wait bool) {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	if wait {
		<-done
	}
	s.log.Debug("polling stopped")
}

// Running reports whether the loop is active.
func (s *Service) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Refresh fetches out of band and broadcasts the result.
func (s *Service) Refresh(ctx context.Context) (int, error) {
	userID := s.session.UserID()
	if userID == 0 {
		return 0, nil
	}
	count, err := s.fetcher.FetchUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.broadcast(count)
	return count, nil
}

// Subscribe returns a channel of unread counts. Slow readers only see the
// latest value. The returned func cancels and closes the channel.
func (s *Service) Subscribe() (<-chan int, func()) {
	ch := make(chan int, 1)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// Last returns the most recently broadcast count.
func (s *Service) Last() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Service) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Service) tick(ctx context.Context) {
	if _, err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
		s.log.Warn("notification poll failed", zap.Error(err))
	}
}

func (s *Service) broadcast(count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = count
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- count:
		default:
		}
	}
}
