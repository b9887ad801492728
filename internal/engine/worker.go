package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"keyboardai/internal/events"
)

// Request is one immutable generation request.
type Request struct {
	Prompt      string
	MaxTokens   int
	Temperature float32
	TopK        int
	TopP        float32
}

// Result is delivered exactly once per submitted job.
type Result struct {
	Text string
	Err  error
}

type job struct {
	id   string
	ctx  context.Context
	req  Request
	done chan Result
	enq  time.Time
}

// Submit enqueues req on the serial worker and returns a channel that
// receives exactly one Result. If ctx ends before the job is queued the
// channel receives ctx.Err(). Once queued, the job runs even if ctx ends; its
// result is then simply never read.
func (b *Bridge) Submit(ctx context.Context, req Request) <-chan Result {
	done := make(chan Result, 1)
	j := job{id: uuid.NewString(), ctx: context.WithoutCancel(ctx), req: req, done: done, enq: time.Now()}
	// Close cannot close quit while we hold the read lock, so a job sent
	// here is always seen by the worker's final drain.
	b.submitMu.RLock()
	defer b.submitMu.RUnlock()
	select {
	case <-b.quit:
		done <- Result{Err: ErrClosed}
		return done
	default:
	}
	b.queued.Add(1)
	select {
	case b.jobs <- j:
	case <-ctx.Done():
		b.queued.Add(-1)
		done <- Result{Err: ctx.Err()}
	}
	return done
}

// Generate submits req and waits for its result or for ctx to end.
func (b *Bridge) Generate(ctx context.Context, req Request) (string, error) {
	select {
	case r := <-b.Submit(ctx, req):
		return r.Text, r.Err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (b *Bridge) run() {
	defer b.wg.Done()
	for {
		// quit wins over pending work
		select {
		case <-b.quit:
			b.drain()
			return
		default:
		}
		select {
		case <-b.quit:
			b.drain()
			return
		case j := <-b.jobs:
			b.queued.Add(-1)
			j.done <- b.execute(j)
		}
	}
}

func (b *Bridge) drain() {
	for {
		select {
		case j := <-b.jobs:
			b.queued.Add(-1)
			j.done <- Result{Err: ErrClosed}
		default:
			return
		}
	}
}

func (b *Bridge) execute(j job) Result {
	b.nativeMu.Lock()
	defer b.nativeMu.Unlock()
	defer b.total.Add(1)

	if err := b.ensureReadyLocked(j.ctx); err != nil {
		return Result{Err: ErrUnavailable(b.LastError(), err)}
	}
	start := time.Now()
	b.inflight.Add(1)
	ok, out := b.native.Generate(j.req.Prompt, int32(j.req.MaxTokens), j.req.Temperature, int32(j.req.TopK), j.req.TopP)
	b.inflight.Add(-1)

	var text string
	if out != nil {
		text = out.String()
		out.Release()
	}
	fields := map[string]any{"wait_ms": start.Sub(j.enq).Milliseconds(), "dur_ms": time.Since(start).Milliseconds()}
	switch {
	case !ok:
		b.log.Warn().Str("job", j.id).Msg("native generate returned failure")
		b.pub.Publish(events.Event{Name: "generate_failed", Subject: j.id, Fields: fields})
		return Result{Err: ErrGenerationFailed("native generate returned failure")}
	case out == nil:
		b.log.Warn().Str("job", j.id).Msg("native generate returned no output")
		b.pub.Publish(events.Event{Name: "generate_failed", Subject: j.id, Fields: fields})
		return Result{Err: ErrGenerationFailed("native generate returned no output")}
	}
	b.log.Debug().Str("job", j.id).Int64("dur_ms", fields["dur_ms"].(int64)).Msg("generation done")
	b.pub.Publish(events.Event{Name: "generate_done", Subject: j.id, Fields: fields})
	return Result{Text: text}
}
