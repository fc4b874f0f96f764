package store

import (
	"context"

	"github.com/yukikurage/teamtask/internal/client"
	"github.com/yukikurage/teamtask/internal/logger"
	"go.uber.org/zap"
)

type readBody struct {
	Read bool `json:"read"`
}

// NotificationSlice caches the caller's notifications and the unread count.
type NotificationSlice struct {
	*collection[client.Notification]

	api    *client.Client
	log    *zap.Logger
	unread int
}

func NewNotificationSlice(api *client.Client, log *zap.Logger) *NotificationSlice {
	return &NotificationSlice{
		collection: newCollection(func(n client.Notification) uint64 { return n.ID }),
		api:        api,
		log:        logger.OrNop(log).Named("notifications"),
	}
}

func (s *NotificationSlice) Notifications() []client.Notification { return s.snapshot() }
func (s *NotificationSlice) Loading() bool                         { return s.loading() }
func (s *NotificationSlice) Error() string                         { return s.lastError() }
func (s *NotificationSlice) ClearError()                           { s.clearError() }

func (s *NotificationSlice) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unread
}

// FetchUnread replaces the cache with the user's unread notifications,
// newest first. It returns the unread count it applied, or the current
// count when the result was stale.
func (s *NotificationSlice) FetchUnread(ctx context.Context, userID uint64) (int, error) {
	q := client.NewQuery().
		Filter("user.id", "$eq", userID).
		Filter("read", "$eq", false).
		Sort("createdAt:desc")
	return s.fetch(ctx, q)
}

// FetchAll replaces the cache with the full history, newest first.
func (s *NotificationSlice) FetchAll(ctx context.Context, userID uint64, page, pageSize int) (int, error) {
	q := client.NewQuery().
		Filter("user.id", "$eq", userID).
		Sort("createdAt:desc").
		Page(page, pageSize)
	return s.fetch(ctx, q)
}

func (s *NotificationSlice) fetch(ctx context.Context, q *client.Query) (int, error) {
	seq := s.beginFetch()
	var resp client.Envelope[[]client.Notification]
	err := s.api.Get(ctx, client.PathNotifications, &resp, client.WithQuery(q))
	kept := s.endFetch(seq, resp.Data, resp.Meta, err, func() {
		s.unread = 0
		for _, n := range resp.Data {
			if !n.Read {
				s.unread++
			}
		}
	})
	if err != nil {
		return 0, err
	}
	if !kept {
		s.log.Debug("discarded stale notification fetch", zap.Uint64("seq", seq))
	}
	return s.UnreadCount(), nil
}

// MarkRead flips one notification to read. The count drops by one only if
// the cached copy was unread.
func (s *NotificationSlice) MarkRead(ctx context.Context, id uint64) error {
	s.begin()
	var resp client.Envelope[client.Notification]
	err := s.api.Put(ctx, client.Item(client.PathNotifications, id), client.Payload[readBody]{Data: readBody{Read: true}}, &resp)
	s.end(err, func() { s.markRead(id) })
	return err
}

// MarkAllRead marks every cached unread notification. It stops at the first
// failure; the ones already acknowledged stay read.
func (s *NotificationSlice) MarkAllRead(ctx context.Context) error {
	var pending []uint64
	for _, n := range s.snapshot() {
		if !n.Read {
			pending = append(pending, n.ID)
		}
	}
	for _, id := range pending {
		if err := s.MarkRead(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes one notification; the count drops if it was unread.
func (s *NotificationSlice) Delete(ctx context.Context, id uint64) error {
	s.begin()
	err := s.api.Delete(ctx, client.Item(client.PathNotifications, id), nil, nil)
	s.end(err, func() {
		if removed, ok := s.remove(id); ok && !removed.Read {
			s.decrement()
		}
	})
	return err
}

// Add inserts a locally received notification at the front.
func (s *NotificationSlice) Add(n client.Notification) {
	s.mu.Lock()
	if s.find(n.ID) < 0 {
		s.prepend(n)
		if !n.Read {
			s.unread++
		}
	}
	s.mu.Unlock()
	s.notify()
}

func (s *NotificationSlice) Reset() {
	s.mu.Lock()
	s.unread = 0
	s.mu.Unlock()
	s.reset()
}

func (s *NotificationSlice) markRead(id uint64) {
	i := s.find(id)
	if i < 0 || s.items[i].Read {
		return
	}
	s.items[i].Read = true
	s.decrement()
}

func (s *NotificationSlice) decrement() {
	if s.unread > 0 {
		s.unread--
	}
}
