package collector

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Histogram range: 1 ms to 1 hour, 3 significant figures.
const (
	histMinMillis = 1
	histMaxMillis = 3600000
	histSigFigs   = 3
)

// Collector accepts JourneyResult submissions from all workers and folds them
// into per-step and whole-journey statistics.
//
// Workers only append; they never read aggregate state. Submissions flow
// through a buffered channel into a single folding goroutine, so every result
// is counted exactly once without cross-worker locking on the hot path.
type Collector struct {
	ch   chan JourneyResult
	done chan struct{}

	mu          sync.Mutex
	journeyHist *hdrhistogram.Histogram
	steps       map[string]*stepAccum
	stepOrder   []string
	journeys    int64
	passed      int64
	failed      int64
	startTime   time.Time
	endTime     time.Time
}

type stepAccum struct {
	hist   *hdrhistogram.Histogram
	count  int64
	passed int64
	failed int64
}

// New creates a Collector and starts its folding goroutine.
func New() *Collector {
	c := &Collector{
		ch:          make(chan JourneyResult, 1024),
		done:        make(chan struct{}),
		journeyHist: hdrhistogram.New(histMinMillis, histMaxMillis, histSigFigs),
		steps:       make(map[string]*stepAccum),
		startTime:   time.Now(),
	}
	go c.fold()
	return c
}

func (c *Collector) fold() {
	for result := range c.ch {
		c.mu.Lock()
		c.record(result)
		c.mu.Unlock()
	}
	close(c.done)
}

func (c *Collector) record(result JourneyResult) {
	c.journeys++
	if result.Outcome == Pass {
		c.passed++
	} else {
		c.failed++
	}
	c.journeyHist.RecordValue(clampMillis(result.Duration))

	for _, step := range result.Steps {
		acc, ok := c.steps[step.StepName]
		if !ok {
			acc = &stepAccum{hist: hdrhistogram.New(histMinMillis, histMaxMillis, histSigFigs)}
			c.steps[step.StepName] = acc
			c.stepOrder = append(c.stepOrder, step.StepName)
		}
		acc.count++
		if step.Outcome == Pass {
			acc.passed++
		} else {
			acc.failed++
		}
		acc.hist.RecordValue(clampMillis(step.Duration))
	}
}

func clampMillis(d time.Duration) int64 {
	ms := d.Milliseconds()
	if ms < histMinMillis {
		return histMinMillis
	}
	if ms > histMaxMillis {
		return histMaxMillis
	}
	return ms
}

// Submit hands a completed journey to the collector. Safe for concurrent use;
// blocks if the buffer is full so no result is ever dropped.
func (c *Collector) Submit(result JourneyResult) {
	c.ch <- result
}

// Close stops accepting submissions and waits for buffered results to be
// folded in. Summary is stable after Close returns.
func (c *Collector) Close() {
	close(c.ch)
	<-c.done
	c.mu.Lock()
	c.endTime = time.Now()
	c.mu.Unlock()
}

// StepStats summarizes all executions of one step across the run.
type StepStats struct {
	StepName string
	Count    int64
	Passed   int64
	Failed   int64
	P50      time.Duration
	P95      time.Duration
	Max      time.Duration
}

// Summary is a point-in-time view of everything the collector has folded.
type Summary struct {
	Journeys    int64
	Passed      int64
	Failed      int64
	PassRate    float64
	JourneyP50  time.Duration
	JourneyP95  time.Duration
	JourneyMax  time.Duration
	Steps       []StepStats // first-seen order, which matches step order
	WallClock   time.Duration
}

// Summary returns the current aggregate view.
func (c *Collector) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Summary{
		Journeys:   c.journeys,
		Passed:     c.passed,
		Failed:     c.failed,
		JourneyP50: millis(c.journeyHist.ValueAtQuantile(50)),
		JourneyP95: millis(c.journeyHist.ValueAtQuantile(95)),
		JourneyMax: millis(c.journeyHist.Max()),
	}
	if c.journeys > 0 {
		s.PassRate = float64(c.passed) / float64(c.journeys)
	}
	if c.endTime.IsZero() {
		s.WallClock = time.Since(c.startTime)
	} else {
		s.WallClock = c.endTime.Sub(c.startTime)
	}

	for _, name := range c.stepOrder {
		acc := c.steps[name]
		s.Steps = append(s.Steps, StepStats{
			StepName: name,
			Count:    acc.count,
			Passed:   acc.passed,
			Failed:   acc.failed,
			P50:      millis(acc.hist.ValueAtQuantile(50)),
			P95:      millis(acc.hist.ValueAtQuantile(95)),
			Max:      millis(acc.hist.Max()),
		})
	}

	return s
}

func millis(v int64) time.Duration {
	return time.Duration(v) * time.Millisecond
}
