package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/teamtask/internal/client"
	"github.com/yukikurage/teamtask/internal/client/session"
	"github.com/yukikurage/teamtask/internal/client/store"
	"github.com/yukikurage/teamtask/internal/models"
	"github.com/yukikurage/teamtask/internal/testutil"
	"github.com/yukikurage/teamtask/internal/testutil/apitest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

type fakeSession struct {
	mu     sync.Mutex
	userID uint64
	status session.Status
	subs   []func(session.Status)
}

func (f *fakeSession) UserID() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status != session.StatusAuthenticated {
		return 0
	}
	return f.userID
}

func (f *fakeSession) IsAuthenticated() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status == session.StatusAuthenticated
}

func (f *fakeSession) Subscribe(fn func(session.Status)) func() {
	f.mu.Lock()
	f.subs = append(f.subs, fn)
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.subs = nil
		f.mu.Unlock()
	}
}

func (f *fakeSession) set(st session.Status) {
	f.mu.Lock()
	f.status = st
	subs := append([]func(session.Status){}, f.subs...)
	f.mu.Unlock()
	for _, fn := range subs {
		fn(st)
	}
}

type fakeFetcher struct {
	calls int32
	count int32
	err   error
}

func (f *fakeFetcher) FetchUnread(ctx context.Context, userID uint64) (int, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return 0, f.err
	}
	return int(atomic.LoadInt32(&f.count)), nil
}

func TestStartsAndStopsWithSession(t *testing.T) {
	sess := &fakeSession{userID: 7, status: session.StatusUnauthenticated}
	fetcher := &fakeFetcher{count: 3}
	svc := New(fetcher, sess, time.Hour, nil)
	svc.Attach()
	defer svc.Detach()

	ch, cancel := svc.Subscribe()
	defer cancel()
	assert.False(t, svc.Running())

	sess.set(session.StatusAuthenticated)
	select {
	case n := <-ch:
		assert.Equal(t, 3, n)
	case <-time.After(waitFor):
		t.Fatal("no immediate fetch on start")
	}
	assert.True(t, svc.Running())

	sess.set(session.StatusUnauthenticated)
	require.Eventually(t, func() bool { return !svc.Running() }, waitFor, tick)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fetcher.calls))
}

func TestTicksAtInterval(t *testing.T) {
	sess := &fakeSession{userID: 7, status: session.StatusAuthenticated}
	fetcher := &fakeFetcher{count: 1}
	svc := New(fetcher, sess, 10*time.Millisecond, nil)
	svc.Attach()
	defer svc.Detach()

	require.Eventually(t, func() bool { return atomic.LoadInt32(&fetcher.calls) >= 3 }, waitFor, tick)
}

func TestSlowSubscriberGetsLatest(t *testing.T) {
	sess := &fakeSession{userID: 7, status: session.StatusAuthenticated}
	fetcher := &fakeFetcher{}
	svc := New(fetcher, sess, time.Hour, nil)

	ch, cancel := svc.Subscribe()
	defer cancel()

	for i := 1; i <= 3; i++ {
		atomic.StoreInt32(&fetcher.count, int32(i))
		_, err := svc.Refresh(context.Background())
		require.NoError(t, err)
	}

	assert.Equal(t, 3, <-ch)
	select {
	case n := <-ch:
		t.Fatalf("unexpected extra value %d", n)
	default:
	}
	assert.Equal(t, 3, svc.Last())
}

func TestErrorsAreLoggedAndPollingContinues(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	sess := &fakeSession{userID: 7, status: session.StatusAuthenticated}
	fetcher := &fakeFetcher{err: errors.New("boom")}
	svc := New(fetcher, sess, 10*time.Millisecond, zap.New(core))
	svc.Start()
	defer svc.Stop()

	require.Eventually(t, func() bool { return atomic.LoadInt32(&fetcher.calls) >= 2 }, waitFor, tick)
	require.Eventually(t, func() bool { return logs.FilterMessage("notification poll failed").Len() >= 1 }, waitFor, tick)
}

func TestRefreshSignedOut(t *testing.T) {
	fetcher := &fakeFetcher{count: 5}
	svc := New(fetcher, &fakeSession{status: session.StatusUnauthenticated}, 0, nil)

	n, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, atomic.LoadInt32(&fetcher.calls))
}

func TestUnauthorizedPollEndsSession(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.Register(t, "alice", "secret1")

	holder := session.NewHolder()
	api := client.New(client.Config{BaseURL: srv.BaseURL}, holder, nil)
	mgr := session.NewManager(api, holder, session.NewMemoryStorage(), nil)
	notifications := store.NewNotificationSlice(api, nil)

	svc := New(notifications, holder, 10*time.Millisecond, nil)
	svc.Attach()
	defer svc.Detach()

	require.NoError(t, mgr.Login(context.Background(), "alice", "secret1"))
	require.Eventually(t, svc.Running, waitFor, tick)

	require.NoError(t, srv.DB.Exec("DELETE FROM users").Error)
	require.Eventually(t, func() bool { return holder.Status() == session.StatusUnauthenticated }, waitFor, tick)
	require.Eventually(t, func() bool { return !svc.Running() }, waitFor, tick)
}

func TestOverlappingPollsConverge(t *testing.T) {
	srv := apitest.NewServer(t)
	id, _ := srv.Register(t, "alice", "secret1")
	var alice models.User
	require.NoError(t, srv.DB.First(&alice, id).Error)
	testutil.CreateNotification(t, srv.DB, &alice, "one", false)
	testutil.CreateNotification(t, srv.DB, &alice, "two", false)

	holder := session.NewHolder()
	api := client.New(client.Config{BaseURL: srv.BaseURL}, holder, nil)
	mgr := session.NewManager(api, holder, session.NewMemoryStorage(), nil)
	require.NoError(t, mgr.Login(context.Background(), "alice", "secret1"))

	notifications := store.NewNotificationSlice(api, nil)
	svc := New(notifications, holder, time.Hour, nil)

	var wg sync.WaitGroup
	results := make([]int, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			n, err := svc.Refresh(context.Background())
			assert.NoError(t, err)
			results[i] = n
		}(i)
	}
	wg.Wait()

	assert.Equal(t, []int{2, 2, 2, 2}, results)
	assert.Equal(t, 2, notifications.UnreadCount())
	assert.Equal(t, 2, svc.Last())
}
