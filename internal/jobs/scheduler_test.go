package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeMarker struct {
	calls []time.Time
	err   error
}

func (f *fakeMarker) MarkOverdue(_ context.Context, now time.Time) (int, error) {
	f.calls = append(f.calls, now)
	return len(f.calls), f.err
}

func TestOverdueSweep_PassesCurrentTime(t *testing.T) {
	marker := &fakeMarker{}
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	OverdueSweep(marker, func() time.Time { return at })()

	require.Equal(t, []time.Time{at}, marker.calls)
}

func TestOverdueSweep_SwallowsErrors(t *testing.T) {
	marker := &fakeMarker{err: errors.New("db down")}

	require.NotPanics(t, OverdueSweep(marker, time.Now))
	require.Len(t, marker.calls, 1)
}

func TestNewScheduler_RejectsBadSpec(t *testing.T) {
	_, err := NewScheduler("not a schedule", &fakeMarker{})
	require.Error(t, err)
}

func TestScheduler_StartStop(t *testing.T) {
	s, err := NewScheduler("0 * * * *", &fakeMarker{})
	require.NoError(t, err)

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
