package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/farmhub/internal/config"
)

type fakeDigest struct {
	calls int
	at    time.Time
	err   error
}

func (f *fakeDigest) PublishDigest(ctx context.Context, now time.Time) (int, error) {
	f.calls++
	f.at = now
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("missing deadline")
	}
	return 3, f.err
}

func TestNewSchedulerRejectsBadTimezone(t *testing.T) {
	_, err := NewScheduler(config.ReportingConfig{CronSchedule: "0 21 * * *", Timezone: "Nowhere/Land"}, &fakeDigest{}, nil)
	assert.Error(t, err)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s, err := NewScheduler(config.ReportingConfig{CronSchedule: "nightly", Timezone: "UTC"}, &fakeDigest{}, nil)
	require.NoError(t, err)
	assert.Error(t, s.Start())
}

func TestScheduleInLocation(t *testing.T) {
	s, err := NewScheduler(config.ReportingConfig{CronSchedule: "0 21 * * *", Timezone: "Asia/Kolkata"}, &fakeDigest{}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	defer s.Stop()

	entries := s.cron.Entries()
	require.Len(t, entries, 1)
	next := entries[0].Next
	assert.Equal(t, "Asia/Kolkata", next.Location().String())
	assert.Equal(t, 21, next.Hour())
}

func TestPublishDigestRun(t *testing.T) {
	digest := &fakeDigest{}
	s, err := NewScheduler(config.ReportingConfig{CronSchedule: "0 21 * * *", Timezone: "UTC"}, digest, nil)
	require.NoError(t, err)
	fixed := time.Date(2024, 6, 10, 21, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	s.publishDigest()
	assert.Equal(t, 1, digest.calls)
	assert.Equal(t, fixed, digest.at)

	digest.err = errors.New("sheet down")
	s.publishDigest()
	assert.Equal(t, 2, digest.calls)
}
