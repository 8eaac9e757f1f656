package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingPurger struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (p *countingPurger) PurgeExpired(context.Context, time.Time) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return 3, p.err
}

func (p *countingPurger) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func TestAddTokenCleanupRejectsBadSpec(t *testing.T) {
	s := NewScheduler(nil)
	assert.Error(t, s.AddTokenCleanup("every now and then", &countingPurger{}))
	assert.NoError(t, s.AddTokenCleanup("@hourly", &countingPurger{}))
}

func TestPurgeTokensSurvivesErrors(t *testing.T) {
	s := NewScheduler(nil)
	p := &countingPurger{err: errors.New("db down")}
	assert.NotPanics(t, func() { s.PurgeTokens(p) })
	assert.Equal(t, 1, p.count())
}

func TestScheduledCleanupRuns(t *testing.T) {
	s := NewScheduler(nil)
	p := &countingPurger{}
	assert.NoError(t, s.AddTokenCleanup("@every 1s", p))
	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return p.count() > 0 }, 3*time.Second, 50*time.Millisecond)
}
