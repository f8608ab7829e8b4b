package timesync

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedQuery answers per host; hosts missing from answers fail.
type scriptedQuery struct {
	mu      sync.Mutex
	answers map[string]time.Duration
	asked   []string
}

func (s *scriptedQuery) query(host string, _ time.Duration) (time.Duration, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.asked = append(s.asked, host)
	off, ok := s.answers[host]
	if !ok {
		return 0, 0, errors.New("i/o timeout")
	}
	return off, 5 * time.Millisecond, nil
}

func (s *scriptedQuery) setAnswers(a map[string]time.Duration) {
	s.mu.Lock()
	s.answers = a
	s.mu.Unlock()
}

var fixedNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func newTestClient(q *scriptedQuery) *Client {
	c := NewClient(time.Second, nil)
	c.query = q.query
	c.now = func() time.Time { return fixedNow }
	return c
}

func TestSample_ZeroBeforeSync(t *testing.T) {
	c := newTestClient(&scriptedQuery{})

	assert.Equal(t, Sample{}, c.Sample())
	assert.False(t, c.SessionHealthy())
}

func TestInit_Validation(t *testing.T) {
	c := newTestClient(&scriptedQuery{})

	assert.ErrorIs(t, c.Init(nil, time.Hour), ErrNoServers)
	assert.ErrorIs(t, c.Init([]string{"a"}, 0), ErrInvalidInterval)
}

func TestInit_OnlyOnce(t *testing.T) {
	c := newTestClient(&scriptedQuery{})
	t.Cleanup(c.Close)

	require.NoError(t, c.Init([]string{"a"}, time.Hour))
	assert.ErrorIs(t, c.Init([]string{"a"}, time.Hour), ErrAlreadyStarted)
}

func TestPoll_AppliesOffset(t *testing.T) {
	q := &scriptedQuery{answers: map[string]time.Duration{"a": 90 * time.Second}}
	c := newTestClient(q)
	t.Cleanup(c.Close)

	require.NoError(t, c.Init([]string{"a"}, time.Hour))
	require.Eventually(t, c.SessionHealthy, time.Second, 5*time.Millisecond)

	got := c.Sample()
	assert.Equal(t, uint64(fixedNow.Unix()+90), got.EpochSeconds)
	assert.True(t, got.SessionHealthy)
}

func TestPoll_FallsBackToNextServer(t *testing.T) {
	q := &scriptedQuery{answers: map[string]time.Duration{"b": 0}}
	c := newTestClient(q)

	var results []Result
	c.SetObserver(func(r Result) { results = append(results, r) })

	assert.True(t, c.poll([]string{"a", "b", "c"}))
	assert.Equal(t, []string{"a", "b"}, q.asked)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].Server)
	assert.NoError(t, results[0].Err)
}

func TestPoll_FailureKeepsTimeButMarksUnhealthy(t *testing.T) {
	q := &scriptedQuery{answers: map[string]time.Duration{"a": 0}}
	c := newTestClient(q)

	require.True(t, c.poll([]string{"a"}))
	q.setAnswers(nil)

	var last Result
	c.SetObserver(func(r Result) { last = r })
	assert.False(t, c.poll([]string{"a"}))

	got := c.Sample()
	assert.Equal(t, uint64(fixedNow.Unix()), got.EpochSeconds, "time stays valid after a failed poll")
	assert.False(t, got.SessionHealthy)
	assert.Error(t, last.Err)
}

func TestClose_WithoutInit(t *testing.T) {
	c := newTestClient(&scriptedQuery{})
	c.Close()
}
