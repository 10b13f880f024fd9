package tasks

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(start time.Time) (*Registry, *time.Time) {
	r := NewRegistry()
	now := start
	r.SetClock(func() time.Time { return now })
	return r, &now
}

func TestStartRejectsDuplicateSession(t *testing.T) {
	r, _ := newTestRegistry(time.Now())

	first, err := r.Start("session-1")
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, first.Status)

	_, err = r.Start("session-1")
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, first.TaskID, conflict.Existing.TaskID)

	// A different session is unaffected.
	_, err = r.Start("session-2")
	require.NoError(t, err)
}

func TestStartSupersedesStaleTask(t *testing.T) {
	r, now := newTestRegistry(time.Now())

	first, err := r.Start("session-1")
	require.NoError(t, err)

	*now = now.Add(StaleAfter + time.Minute)

	second, err := r.Start("session-1")
	require.NoError(t, err)
	assert.NotEqual(t, first.TaskID, second.TaskID)

	// The stale task was marked failed.
	var found bool
	for _, task := range r.List("session-1") {
		if task.TaskID == first.TaskID {
			found = true
			assert.Equal(t, StatusFailed, task.Status)
			require.NotNil(t, task.CompletedAt)
		}
	}
	assert.True(t, found)
}

func TestHeartbeatKeepsTaskFresh(t *testing.T) {
	r, now := newTestRegistry(time.Now())

	first, err := r.Start("session-1")
	require.NoError(t, err)

	// Beat just inside the stale window, then cross the point where the
	// task would have gone stale counted from its start.
	*now = now.Add(StaleAfter - time.Minute)
	_, err = r.Heartbeat(first.TaskID)
	require.NoError(t, err)

	*now = now.Add(2 * time.Minute)
	_, err = r.Start("session-1")
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, first.TaskID, conflict.Existing.TaskID)

	// Silence past the window does supersede.
	*now = now.Add(StaleAfter)
	second, err := r.Start("session-1")
	require.NoError(t, err)
	assert.NotEqual(t, first.TaskID, second.TaskID)
}

func TestHeartbeatAndFinish(t *testing.T) {
	r, now := newTestRegistry(time.Now())

	task, err := r.Start("session-1")
	require.NoError(t, err)

	*now = now.Add(time.Minute)
	beat, err := r.Heartbeat(task.TaskID)
	require.NoError(t, err)
	assert.Equal(t, *now, beat.LastBeat)

	done, err := r.Finish(task.TaskID, StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)

	_, err = r.Heartbeat(task.TaskID)
	assert.True(t, errors.Is(err, ErrNotRunning))
	_, err = r.Finish(task.TaskID, StatusFailed)
	assert.True(t, errors.Is(err, ErrNotRunning))

	_, err = r.Heartbeat("missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRetentionGarbageCollection(t *testing.T) {
	r, now := newTestRegistry(time.Now())

	task, err := r.Start("session-1")
	require.NoError(t, err)
	_, err = r.Finish(task.TaskID, StatusCompleted)
	require.NoError(t, err)

	*now = now.Add(Retention + time.Minute)
	assert.Empty(t, r.List("session-1"))
}

func TestFinishedTaskDoesNotBlockRestart(t *testing.T) {
	r, _ := newTestRegistry(time.Now())

	task, err := r.Start("session-1")
	require.NoError(t, err)
	_, err = r.Finish(task.TaskID, StatusFailed)
	require.NoError(t, err)

	_, err = r.Start("session-1")
	require.NoError(t, err)
}
