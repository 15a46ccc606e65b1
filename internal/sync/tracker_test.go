package sync

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTrackerLifecycle(t *testing.T) {
	t.Parallel()

	tr := NewTracker[int]()
	require.Equal(t, StatusIdle, tr.Status(7))
	require.False(t, tr.Running(7))

	seq := tr.Start(7)
	require.True(t, tr.Running(7))

	require.True(t, tr.Succeed(7, seq))
	require.Equal(t, StatusSucceeded, tr.Status(7))
	require.False(t, tr.Running(7))
	require.Empty(t, tr.Err(7))
}

func TestTrackerFailRecordsMessage(t *testing.T) {
	t.Parallel()

	tr := NewTracker[string]()
	seq := tr.Start("a")
	require.True(t, tr.Fail("a", seq, "boom"))
	require.Equal(t, StatusFailed, tr.Status("a"))
	require.Equal(t, "boom", tr.Err("a"))

	// The next start clears the recorded failure.
	tr.Start("a")
	require.Empty(t, tr.Err("a"))
	require.True(t, tr.Running("a"))
}

func TestTrackerKeysAreIndependent(t *testing.T) {
	t.Parallel()

	tr := NewTracker[int]()
	seq0 := tr.Start(0)
	seq2 := tr.Start(2)

	require.True(t, tr.Succeed(0, seq0))
	require.Equal(t, StatusSucceeded, tr.Status(0))
	require.Equal(t, StatusRunning, tr.Status(2))
	require.Equal(t, StatusIdle, tr.Status(1))

	require.True(t, tr.Fail(2, seq2, "nope"))
	require.Equal(t, StatusSucceeded, tr.Status(0))
	require.Empty(t, tr.Err(0))
}

func TestTrackerDiscardsStaleCompletion(t *testing.T) {
	t.Parallel()

	tr := NewTracker[int]()
	old := tr.Start(1)
	cur := tr.Start(1)

	// The superseded operation's completion must not win.
	require.False(t, tr.Succeed(1, old))
	require.Equal(t, StatusRunning, tr.Status(1))

	require.True(t, tr.Succeed(1, cur))
	require.Equal(t, StatusSucceeded, tr.Status(1))

	// Late failure from the first operation stays ignored too.
	require.False(t, tr.Fail(1, old, "late"))
	require.Equal(t, StatusSucceeded, tr.Status(1))
}

func TestTrackerResetInvalidatesPendingCompletion(t *testing.T) {
	t.Parallel()

	tr := NewTracker[int]()
	seq := tr.Start(3)
	tr.Reset(3)
	require.Equal(t, StatusIdle, tr.Status(3))

	require.False(t, tr.Succeed(3, seq))
	require.Equal(t, StatusIdle, tr.Status(3))
}

func TestTrackerClearResetsEveryKey(t *testing.T) {
	t.Parallel()

	tr := NewTracker[int]()
	seqA := tr.Start(1)
	seqB := tr.Start(2)
	tr.Clear()

	require.Equal(t, StatusIdle, tr.Status(1))
	require.Equal(t, StatusIdle, tr.Status(2))
	require.False(t, tr.Succeed(1, seqA))
	require.False(t, tr.Fail(2, seqB, "late"))
}
