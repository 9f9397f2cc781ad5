package access

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"aerogate/internal/accesslog"
	"aerogate/internal/models"
)

// SimulatedName is the name recorded for simulated scans.
const SimulatedName = "SIMULATED SCAN"

const (
	DefaultSimulateDelay = 3 * time.Second
	DefaultGrantRatio    = 0.7
)

// Simulator stands in for the matcher on demo terminals: after a fixed delay
// it grants or denies at random.
type Simulator struct {
	Delay      time.Duration
	GrantRatio float64
	Terminal   string
	Recorder   AccessRecorder
	// Rand returns a value in [0, 1). Defaults to math/rand/v2.Float64.
	Rand func() float64
	Now  func() time.Time
	Log  *zap.Logger
}

// Verify implements Verifier. The capture is ignored.
func (s *Simulator) Verify(ctx context.Context, _ []byte) (VerifyResult, error) {
	timer := time.NewTimer(s.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return VerifyResult{}, ctx.Err()
	case <-timer.C:
	}

	rnd := s.Rand
	if rnd == nil {
		rnd = rand.Float64
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	res := VerifyResult{Name: SimulatedName}
	roll := rnd()
	if roll < s.GrantRatio {
		res.Status = models.StatusGranted
		res.Confidence = accesslog.Round2(90 + 10*rnd())
	} else {
		res.Status = models.StatusDenied
		res.Confidence = accesslog.Round2(60 * rnd())
		res.Reason = ReasonSimulatedDenial
	}

	if s.Recorder != nil {
		terminal := s.Terminal
		if terminal == "" {
			terminal = DefaultTerminal
		}
		if _, err := s.Recorder.AppendAccess(ctx, models.AccessRecord{
			Name:       SimulatedName,
			Status:     res.Status,
			Confidence: res.Confidence,
			Terminal:   terminal,
			Timestamp:  now(),
		}); err != nil {
			return VerifyResult{}, err
		}
	}
	if s.Log != nil {
		s.Log.Info("simulated verification", zap.String("status", string(res.Status)), zap.Float64("roll", roll))
	}
	return res, nil
}
