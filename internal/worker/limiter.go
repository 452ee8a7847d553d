package worker

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter gates admission of OCR jobs. Tesseract is CPU-heavy, so batch
// runs meter how fast new documents enter the pool instead of letting a
// large directory saturate the host at once.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter creates a limiter admitting jobsPerSecond with the given
// burst. A non-positive burst falls back to 1.
func NewLimiter(jobsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(jobsPerSecond), burst),
	}
}

// Wait blocks until the next job may start or the context is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Allow reports whether a job may start right now, without waiting.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}
