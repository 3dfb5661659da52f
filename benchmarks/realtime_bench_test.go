// Realtime Actor benchmarks: tick-batched throughput, send-to-apply
// latency, queue capacity before backpressure, and per-tick batch
// processing time.
//
// Grounded on the teacher's benchmarks/realtime_bench_test.go, rebuilt
// against realtime.Actor/interpreter.WithOnTransition instead of the old
// statechartx.Machine's EntryAction/ExitAction closures.
package benchmarks

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/comalice/scxmlgo/builder"
	"github.com/comalice/scxmlgo/internal/document"
	"github.com/comalice/scxmlgo/internal/interpreter"
	"github.com/comalice/scxmlgo/realtime"
)

func createBenchmarkDoc() *document.Document {
	a := builder.Atomic("a", builder.On("tick", []string{"b"}))
	bNode := builder.Atomic("b", builder.On("tick", []string{"a"}))
	doc, res, err := builder.Build("toggle", "a", nil, a, bNode)
	return mustBuild("createBenchmarkDoc", res, err, doc)
}

// BenchmarkRealtimeThroughput measures events actually applied per second,
// verified via an onTransition counter rather than assumed from SendEvent
// returning nil.
func BenchmarkRealtimeThroughput(b *testing.B) {
	var processed int64
	actor, err := realtime.NewActor(createBenchmarkDoc(), realtime.Config{
		TickRate:         1 * time.Millisecond,
		MaxEventsPerTick: 10000,
	}, interpreter.WithOnTransition(func(from, to []string) {
		atomic.AddInt64(&processed, 1)
	}))
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	if err := actor.Start(ctx); err != nil {
		b.Fatal(err)
	}
	defer actor.Stop()

	b.ResetTimer()
	b.ReportAllocs()

	successfulSends := 0
	for i := 0; i < b.N; i++ {
		if err := actor.SendEvent("tick", nil); err != nil {
			b.StopTimer()
			b.Logf("stopped at backpressure after %d events (%.1f%% of b.N)",
				successfulSends, float64(successfulSends)/float64(b.N)*100)
			break
		}
		successfulSends++
	}

	if successfulSends > 0 {
		timeout := time.After(30 * time.Second)
		for {
			if atomic.LoadInt64(&processed) >= int64(successfulSends) {
				break
			}
			select {
			case <-timeout:
				b.Fatalf("timeout waiting for processing, processed: %d / %d successful sends",
					atomic.LoadInt64(&processed), successfulSends)
			default:
				time.Sleep(1 * time.Millisecond)
			}
		}
		b.ReportMetric(float64(successfulSends)/b.Elapsed().Seconds(), "events/sec")
	}
}

// BenchmarkRealtimeLatency measures real end-to-end time from SendEvent to
// the transition actually applying at a tick boundary.
func BenchmarkRealtimeLatency(b *testing.B) {
	transitioned := make(chan time.Time, 100)
	var sendTimes []time.Time
	var sendMu sync.Mutex

	actor, err := realtime.NewActor(createBenchmarkDoc(), realtime.Config{
		TickRate:         1 * time.Millisecond,
		MaxEventsPerTick: 1000,
	}, interpreter.WithOnTransition(func(from, to []string) {
		transitioned <- time.Now()
	}))
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	if err := actor.Start(ctx); err != nil {
		b.Fatal(err)
	}
	defer actor.Stop()

	b.ResetTimer()

	limit := b.N
	if limit > 50 {
		limit = 50
	}
	for i := 0; i < limit; i++ {
		sendMu.Lock()
		sendTimes = append(sendTimes, time.Now())
		sendMu.Unlock()

		if err := actor.SendEvent("tick", nil); err != nil {
			b.Logf("stopped at backpressure after %d sends", len(sendTimes))
			break
		}
	}

	var totalLatency time.Duration
	successfulMeasurements := 0
	timeout := time.After(5 * time.Second)

loop:
	for i := 0; i < len(sendTimes); i++ {
		select {
		case completeTime := <-transitioned:
			latency := completeTime.Sub(sendTimes[i])
			totalLatency += latency
			successfulMeasurements++
		case <-timeout:
			b.Logf("timeout after %d/%d measurements", successfulMeasurements, len(sendTimes))
			break loop
		}
	}

	if successfulMeasurements > 0 {
		avgLatency := totalLatency / time.Duration(successfulMeasurements)
		b.ReportMetric(float64(avgLatency.Nanoseconds()), "ns/latency")
		b.ReportMetric(float64(avgLatency.Microseconds()), "µs/latency")
	}
}

// BenchmarkRealtimeQueueCapacity measures how many events can be queued
// before SendEvent starts returning backpressure errors.
func BenchmarkRealtimeQueueCapacity(b *testing.B) {
	configs := []struct {
		name       string
		tickRate   time.Duration
		maxPerTick int
	}{
		{"60FPS", 16667 * time.Microsecond, 10000},
		{"1000Hz", 1 * time.Millisecond, 10000},
	}

	for _, cfg := range configs {
		b.Run(cfg.name, func(b *testing.B) {
			actor, err := realtime.NewActor(createBenchmarkDoc(), realtime.Config{
				TickRate:         cfg.tickRate,
				MaxEventsPerTick: cfg.maxPerTick,
			})
			if err != nil {
				b.Fatal(err)
			}
			ctx := context.Background()
			if err := actor.Start(ctx); err != nil {
				b.Fatal(err)
			}
			defer actor.Stop()

			b.ResetTimer()

			successfulSends := 0
			for i := 0; i < b.N; i++ {
				if err := actor.SendEvent("tick", nil); err != nil {
					b.StopTimer()
					b.Logf("queue capacity reached: %d events before backpressure", successfulSends)
					b.ReportMetric(float64(successfulSends), "events")
					return
				}
				successfulSends++
			}
			b.ReportMetric(float64(successfulSends), "events")
			b.Logf("sent all %d events without backpressure", successfulSends)
		})
	}
}

// BenchmarkRealtimeTickProcessing measures how long a single tick takes to
// apply a burst of batched events, bracketed by the first and last
// onTransition call within that tick.
func BenchmarkRealtimeTickProcessing(b *testing.B) {
	var tickStartNano, tickEndNano int64
	var tickDurations []time.Duration
	var tickMu sync.Mutex

	actor, err := realtime.NewActor(createBenchmarkDoc(), realtime.Config{
		TickRate:         10 * time.Millisecond,
		MaxEventsPerTick: 1000,
	}, interpreter.WithOnTransition(func(from, to []string) {
		now := time.Now().UnixNano()
		if atomic.LoadInt64(&tickStartNano) == 0 {
			atomic.StoreInt64(&tickStartNano, now)
		}
		atomic.StoreInt64(&tickEndNano, now)
	}))
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	if err := actor.Start(ctx); err != nil {
		b.Fatal(err)
	}
	defer actor.Stop()

	b.ResetTimer()

	batchSize := 100
	for i := 0; i < b.N; i++ {
		atomic.StoreInt64(&tickStartNano, 0)
		atomic.StoreInt64(&tickEndNano, 0)

		backpressure := false
		for j := 0; j < batchSize; j++ {
			if err := actor.SendEvent("tick", nil); err != nil {
				b.Logf("backpressure at iteration %d, event %d", i, j)
				backpressure = true
				break
			}
		}
		if backpressure {
			break
		}

		time.Sleep(15 * time.Millisecond)

		start := atomic.LoadInt64(&tickStartNano)
		end := atomic.LoadInt64(&tickEndNano)
		if start > 0 && end > 0 {
			tickMu.Lock()
			tickDurations = append(tickDurations, time.Duration(end-start))
			tickMu.Unlock()
		}
	}

	if len(tickDurations) > 0 {
		var total time.Duration
		for _, d := range tickDurations {
			total += d
		}
		avg := total / time.Duration(len(tickDurations))
		b.ReportMetric(float64(avg.Nanoseconds()), "ns/tick")
		b.ReportMetric(float64(batchSize), "events/tick")
	}
}
