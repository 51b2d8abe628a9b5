package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"gitlab.com/nevasik7/alerting/logger"

	"github.com/ReqCrypto/sol-meme-scanner/internal/domain"
	"github.com/ReqCrypto/sol-meme-scanner/internal/metrics"
	"github.com/ReqCrypto/sol-meme-scanner/internal/sink"
	"github.com/ReqCrypto/sol-meme-scanner/internal/snapshot"
)

// Pipeline is what the loop drives once per tick. Satisfied by
// *scanner.Service.
type Pipeline interface {
	RunCycle(ctx context.Context) ([]domain.Candidate, error)
}

// Loop drives the pipeline at a fixed interval with at most one cycle in
// flight. A tick that lands while a cycle runs is skipped, never queued.
// No per-cycle failure terminates the loop; the next tick is the retry.
type Loop struct {
	log      logger.Logger
	interval time.Duration
	pipeline Pipeline
	sink     sink.Sink
	store    snapshot.Store
	running  atomic.Bool
	inflight sync.WaitGroup
}

var errCyclePanic = errors.New("cycle panicked")

func New(log logger.Logger, interval time.Duration, p Pipeline, s sink.Sink, store snapshot.Store) *Loop {
	return &Loop{
		log:      log,
		interval: interval,
		pipeline: p,
		sink:     s,
		store:    store,
	}
}

// Run blocks until ctx is cancelled. The first cycle starts immediately,
// matching what an operator expects from a freshly started scanner.
func (l *Loop) Run(ctx context.Context) {
	t := time.NewTicker(l.interval)
	defer t.Stop()

	l.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			l.log.Info("Scheduler stopping")
			return
		case <-t.C:
			l.tick(ctx)
		}
	}
}

// Wait blocks until an in-flight cycle (if any) has finished. Call after
// Run returned to guarantee the sink is quiet before teardown.
func (l *Loop) Wait() {
	l.inflight.Wait()
}

func (l *Loop) tick(ctx context.Context) {
	if !l.running.CompareAndSwap(false, true) {
		l.log.Debug("Tick skipped, cycle still running")
		metrics.TicksSkipped.Inc()
		return
	}

	l.inflight.Add(1)
	go func() {
		defer l.inflight.Done()
		defer l.running.Store(false)
		l.runOnce(ctx)
	}()
}

func (l *Loop) runOnce(ctx context.Context) {
	started := time.Now()
	cands, err := l.safeRun(ctx)

	// Never hand a cancelled cycle to the sink: its state is incomplete.
	if ctx.Err() != nil {
		l.log.Debug("Cycle abandoned on shutdown")
		return
	}

	if err != nil {
		// Degrade to zero candidates, keep the loop alive.
		l.log.Errorf("Cycle failed: %v", err)
		metrics.CyclesTotal.WithLabelValues("failed").Inc()
		cands = nil
	} else {
		metrics.CyclesTotal.WithLabelValues("ok").Inc()
	}
	metrics.CycleDuration.Observe(time.Since(started).Seconds())

	res := &domain.CycleResult{
		GeneratedAt: started.UTC(),
		Candidates:  cands,
	}
	if res.Candidates == nil {
		res.Candidates = []domain.Candidate{}
	}

	if err := l.sink.Deliver(ctx, res); err != nil {
		l.log.Errorf("Sink delivery failed: %v", err)
	}

	if err := l.store.Put(ctx, res); err != nil {
		l.log.Errorf("Snapshot store update failed: %v", err)
	}
}

// safeRun shields the loop from panics anywhere in the pipeline; a panicked
// stage is reported as a failed cycle.
func (l *Loop) safeRun(ctx context.Context) (cands []domain.Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Errorf("Cycle panicked: %v", r)
			cands, err = nil, errCyclePanic
		}
	}()
	return l.pipeline.RunCycle(ctx)
}
