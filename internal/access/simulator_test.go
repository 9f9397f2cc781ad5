package access

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"aerogate/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type memRecorder struct {
	mu   sync.Mutex
	recs []models.AccessRecord
}

func (r *memRecorder) AppendAccess(_ context.Context, rec models.AccessRecord) (models.AccessRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.Seq = int64(len(r.recs) + 1)
	r.recs = append(r.recs, rec)
	return rec, nil
}

func sequence(vals ...float64) func() float64 {
	i := 0
	return func() float64 {
		v := vals[i%len(vals)]
		i++
		return v
	}
}

func TestSimulator(t *testing.T) {
	ctx := context.Background()

	t.Run("roll under ratio grants", func(t *testing.T) {
		rec := &memRecorder{}
		sim := &Simulator{GrantRatio: 0.7, Recorder: rec, Rand: sequence(0.2, 0.5), Now: func() time.Time { return testNow }}

		res, err := sim.Verify(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, models.StatusGranted, res.Status)
		assert.Equal(t, 95.0, res.Confidence)
		assert.Equal(t, SimulatedName, res.Name)

		require.Len(t, rec.recs, 1)
		assert.Equal(t, DefaultTerminal, rec.recs[0].Terminal)
		assert.True(t, rec.recs[0].Timestamp.Equal(testNow))
	})

	t.Run("roll over ratio denies", func(t *testing.T) {
		rec := &memRecorder{}
		sim := &Simulator{GrantRatio: 0.7, Terminal: "LNG-01", Recorder: rec, Rand: sequence(0.95, 0.5)}

		res, err := sim.Verify(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, models.StatusDenied, res.Status)
		assert.Equal(t, 30.0, res.Confidence)
		assert.Equal(t, ReasonSimulatedDenial, res.Reason)
		assert.Equal(t, "LNG-01", rec.recs[0].Terminal)
	})

	t.Run("waits for the delay", func(t *testing.T) {
		sim := &Simulator{Delay: 30 * time.Millisecond, GrantRatio: 1}
		start := time.Now()
		res, err := sim.Verify(ctx, nil)
		require.NoError(t, err)
		assert.True(t, res.Granted())
		assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	})

	t.Run("cancelled scan records nothing", func(t *testing.T) {
		rec := &memRecorder{}
		sim := &Simulator{Delay: time.Hour, GrantRatio: 1, Recorder: rec}
		cctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()

		_, err := sim.Verify(cctx, nil)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Empty(t, rec.recs)
	})

	t.Run("ratio holds over many scans", func(t *testing.T) {
		sim := &Simulator{GrantRatio: 0.7}
		granted := 0
		const n = 2000
		for i := 0; i < n; i++ {
			res, err := sim.Verify(ctx, nil)
			require.NoError(t, err)
			if res.Granted() {
				granted++
			}
		}
		assert.InDelta(t, 0.7, float64(granted)/n, 0.05)
	})
}
