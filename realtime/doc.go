// Package realtime provides a tick-based deterministic driver for an
// interpreter.Interpreter.
//
// The realtime Actor differs from calling Instance.SendEvent directly only
// in event dispatch: events are batched and applied at fixed tick
// boundaries instead of immediately, with deterministic ordering via
// sequence numbers and optional priority. Each tick's batch still runs
// through the interpreter's ordinary synchronous macrostep loop, so every
// invariant the core interpreter guarantees (exit/entry order, parallel
// regions, eventless-transition drain) holds identically here.
//
// # Example Usage
//
//	actor, _ := realtime.NewActor(doc, realtime.Config{
//		TickRate: 16667 * time.Microsecond, // 60 FPS
//	})
//	actor.Start(ctx)
//	actor.SendEvent("input.jump", nil)
//
// # Use Cases
//
//   - Game engines and physics simulations (fixed time-step)
//   - Robotics and other deterministic control loops
//   - Testing/debugging scenarios that need reproducible tick boundaries
//
// Grounded on the teacher's realtime/runtime.go RealtimeRuntime (embeds the
// core Runtime, replaces only event dispatch with tick-based batching) and
// event.go's EventWithMeta sequencing; adapted to embed
// interpreter.Interpreter instead, which already performs the full
// microstep drain per SendEvent call — so, unlike the teacher's version,
// this package needs no separate post-tick "process parallel regions"
// pass: the core interpreter already processes every active region as part
// of one macrostep.
package realtime
