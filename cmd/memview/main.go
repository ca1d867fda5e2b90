package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/memkit"
	"github.com/wippyai/memkit/buffer"
	"github.com/wippyai/memkit/errors"
	"github.com/wippyai/memkit/guestmem"
	"github.com/wippyai/memkit/resource"
)

func main() {
	var (
		resName  = flag.String("resource", "heap", "Resource to monitor: heap, pool or guest")
		workers  = flag.Int("workers", 4, "Concurrent churn workers")
		count    = flag.Int("count", 4096, "Elements per uint64 buffer")
		interval = flag.Duration("interval", 250*time.Millisecond, "Refresh interval")
		once     = flag.Bool("once", false, "Print a single snapshot and exit")
		verbose  = flag.Bool("v", false, "Log every allocation to stderr (plain mode only)")
	)
	flag.Parse()

	if err := run(*resName, *workers, *count, *interval, *once, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(resName string, workers, count int, interval time.Duration, once, verbose bool) error {
	ctx := context.Background()

	var base memkit.Resource
	switch resName {
	case "heap":
		base = resource.Default
	case "pool":
		base = resource.NewPool(resource.Default)
	case "guest":
		// A fixed 256 KiB linear memory whose free is a no-op: watch the
		// failure row climb once the bump allocator fills up.
		g, err := guestmem.New(ctx)
		if err != nil {
			return err
		}
		defer g.Close(ctx)
		base = g
	default:
		return fmt.Errorf("unknown resource %q (want heap, pool or guest)", resName)
	}

	plain := once || !term.IsTerminal(int(os.Stdout.Fd()))
	if plain && verbose {
		memkit.SetLogger(zap.Must(zap.NewDevelopment()))
	}

	checked := resource.NewChecked(resource.NewTrace(base, nil))

	c := newChurn(checked, count)
	c.start(workers)
	defer c.close()

	if plain {
		time.Sleep(4 * interval)
		printSnapshot(os.Stdout, resName, checked.Stats(), c)
		return nil
	}

	return runTUI(resName, checked, c, interval)
}

// churn allocates and frees buffers through the monitored resource from
// several goroutines, so the stats have something to show.
type churn struct {
	res   memkit.Resource
	count int

	rounds atomic.Uint64
	fails  atomic.Uint64

	stop chan struct{}
	wg   sync.WaitGroup
}

func newChurn(res memkit.Resource, count int) *churn {
	return &churn{res: res, count: count, stop: make(chan struct{})}
}

func (c *churn) start(workers int) {
	for i := 0; i < workers; i++ {
		c.wg.Add(1)
		go c.loop()
	}
}

// loop keeps a small ring of live buffers so the live gauges settle
// around workers*ringDepth instead of hovering at zero.
func (c *churn) loop() {
	defer c.wg.Done()

	const ringDepth = 8
	ring := make([]*buffer.Buffer[uint64, memkit.Resource], ringDepth)
	idx := 0
	for {
		select {
		case <-c.stop:
			for _, b := range ring {
				if b != nil {
					b.Free()
				}
			}
			return
		default:
		}

		round := c.rounds.Add(1)
		n := c.count >> (round % 3)
		b, err := buffer.New[uint64, memkit.Resource](c.res, n)
		if err != nil {
			c.fails.Add(1)
			time.Sleep(10 * time.Millisecond)
			continue
		}
		s := b.Slice()
		if len(s) > 0 {
			s[0] = round
			s[len(s)-1] = ^round
		}
		if old := ring[idx]; old != nil {
			old.Free()
		}
		ring[idx] = b
		idx = (idx + 1) % ringDepth
		time.Sleep(time.Millisecond)
	}
}

func (c *churn) close() {
	close(c.stop)
	c.wg.Wait()
}

func printSnapshot(w io.Writer, resName string, st resource.Stats, c *churn) {
	fmt.Fprintf(w, "resource:  %s\n", resName)
	fmt.Fprintf(w, "allocs:    %d\n", st.Allocs)
	fmt.Fprintf(w, "frees:     %d\n", st.Frees)
	fmt.Fprintf(w, "live:      %d buffers, %s\n", st.Live, errors.FormatBytes(st.LiveBytes))
	fmt.Fprintf(w, "peak:      %s\n", errors.FormatBytes(st.PeakBytes))
	fmt.Fprintf(w, "rounds:    %d\n", c.rounds.Load())
	fmt.Fprintf(w, "failures:  %d\n", c.fails.Load())
}
