package probe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNoHistory = errors.New("run history unavailable")

func TestRun_StartupProbes(t *testing.T) {
	probes := []Probe{
		{Name: "Route", Critical: true, Check: func(context.Context) error { return nil }},
		{Name: "Run History", Check: func(context.Context) error { return errNoHistory }},
		{
			Name:    "Route File",
			Timeout: 10 * time.Millisecond,
			Check: func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			},
		},
	}

	results := Run(context.Background(), probes)
	require.Len(t, results, 3)

	assert.True(t, results[0].Passed())
	assert.ErrorIs(t, results[1].Error, errNoHistory)
	assert.ErrorIs(t, results[2].Error, context.DeadlineExceeded, "slow probe must hit its own timeout")
	assert.Less(t, results[2].Duration, DefaultTimeout)
}

func TestAnalyzeResults(t *testing.T) {
	routeErr := errors.New("route has 1 point")

	tests := []struct {
		name    string
		results []Result
		wantErr error
	}{
		{
			name:    "AllPass",
			results: []Result{{Probe: Probe{Name: "Route", Critical: true}}},
		},
		{
			name:    "HistoryFailureIsWarning",
			results: []Result{{Probe: Probe{Name: "Run History"}, Error: errNoHistory}},
		},
		{
			name:    "RouteFailureAborts",
			results: []Result{{Probe: Probe{Name: "Route", Critical: true}, Error: routeErr}},
			wantErr: routeErr,
		},
		{
			name: "Mixed",
			results: []Result{
				{Probe: Probe{Name: "Run History"}, Error: errNoHistory},
				{Probe: Probe{Name: "Route", Critical: true}, Error: routeErr},
			},
			wantErr: routeErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AnalyzeResults(tt.results)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.NotErrorIs(t, err, errNoHistory, "non-critical failures are not returned")
			assert.Contains(t, err.Error(), "Route:")
		})
	}
}
