// Package recognize adapts the camera text-recognition feed. The recognizer
// itself is a black box that emits one detected-text string per analyzed
// frame; this layer drops empty detections and throttles emissions so the
// prompt field isn't rewritten more than once per second.
package recognize

import (
	"context"
	"time"
)

// ThrottleTimeout is the minimum gap between two emissions.
const ThrottleTimeout = 1000 * time.Millisecond

// now is swapped out by tests.
var now = time.Now

// Stream forwards non-empty recognized text from in to the returned
// channel, at most one emission per ThrottleTimeout; text arriving inside
// the throttle window is dropped, not queued. The returned channel closes
// when in closes or ctx is done.
func Stream(ctx context.Context, in <-chan string) <-chan string {
	out := make(chan string, 1)

	go func() {
		defer close(out)
		var last time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case text, ok := <-in:
				if !ok {
					return
				}
				if text == "" {
					continue
				}
				t := now()
				if !last.IsZero() && t.Sub(last) < ThrottleTimeout {
					continue
				}
				select {
				case out <- text:
					last = t
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}
