package llm

import "time"

// TokensPerSecond derives throughput from a token count and an elapsed time
// in milliseconds. A zero (or negative) duration yields 0.
func TokensPerSecond(tokens int, elapsedMs int64) float64 {
	if elapsedMs <= 0 {
		return 0
	}
	return float64(tokens) * 1000 / float64(elapsedMs)
}

// Stopwatch measures a backend round trip in whole milliseconds.
type Stopwatch struct{ start time.Time }

func StartStopwatch() Stopwatch { return Stopwatch{start: time.Now()} }

func (s Stopwatch) ElapsedMs() int64 { return time.Since(s.start).Milliseconds() }
