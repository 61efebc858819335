// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package batch runs a scan.Scanner over many reads concurrently,
// worker-sharded the way markduplicates shards BAM shards across a
// worker pool: a channel of work handed to a fixed pool of goroutines,
// synchronized with a sync.WaitGroup, errors aggregated with
// errors.Once. Output order always matches input order, since each
// worker writes its result directly into a pre-sized, index-addressed
// slice rather than appending as work completes.
package batch

import (
	"sync"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"

	"github.com/ontresearch/qcat-go/scan"
)

// Opts configures a Coordinator run.
type Opts struct {
	// Parallelism is the number of worker goroutines used for pass 2
	// (per-read calling) and pass 3 (abundance filtering). 0 or
	// negative is treated as 1.
	Parallelism int

	// EnableFilterBarcodes runs the abundance filter (pass 3) after
	// every read has been called.
	EnableFilterBarcodes bool

	// AbundanceMinFraction overrides the default abundance-filter
	// threshold (0.05 of the most abundant barcode's count) when
	// non-zero.
	AbundanceMinFraction float64

	// PinnedKit skips pass 1 (kit auto-detection) entirely and calls
	// every read against this kit. Leave empty to run the vote.
	PinnedKit string
}

// Coordinator calls a batch of reads against one Scanner, sharding the
// per-read work across Opts.Parallelism goroutines. The only state a
// Coordinator keeps across Run calls is the first worker panic it has
// recorded (see Err); the Scanner it wraps is read-only and safe to
// reuse across concurrent Run calls.
type Coordinator struct {
	scanner *scan.Scanner
	opts    Opts
	err     errors.Once
}

// NewCoordinator builds a Coordinator over scanner using opts.
func NewCoordinator(scanner *scan.Scanner, opts Opts) *Coordinator {
	if opts.Parallelism <= 0 {
		opts.Parallelism = 1
	}
	if opts.AbundanceMinFraction <= 0 {
		opts.AbundanceMinFraction = 0.05
	}
	return &Coordinator{scanner: scanner, opts: opts}
}

// Run calls every read in reads and returns one BarcodeResult per read,
// in input order. cfg is shared read-only across every worker.
func (c *Coordinator) Run(reads []string, cfg *scan.Config) []scan.BarcodeResult {
	if len(reads) == 0 {
		return nil
	}

	pinnedKit := c.opts.PinnedKit
	if pinnedKit == "" {
		pinnedKit = c.voteKit(reads, cfg)
	}

	results := make([]scan.BarcodeResult, len(reads))
	c.shard(len(reads), func(i int) {
		results[i] = c.scanner.DetectBarcode(reads[i], cfg, pinnedKit)
	})

	if c.opts.EnableFilterBarcodes {
		c.filterBarcodes(results)
	}
	if err := c.err.Err(); err != nil {
		log.Error.Printf("batch: calling %d read(s): first failure: %v", len(reads), err)
	}
	return results
}

// Err returns the first panic recovered from a worker goroutine in any
// Run since the Coordinator was built, or nil if none occurred; it is
// never cleared between runs. A read that panics
// (e.g. from a corrupt barcode table) is left as its zero
// scan.BarcodeResult rather than taking down the whole batch.
func (c *Coordinator) Err() error {
	return c.err.Err()
}

// voteKit runs pass 1 (kit auto-detection) sharded across workers: each
// read's vote is added to one shared tally under a mutex, and the
// plurality is picked once every worker is done. Reads that cast no
// vote are not counted.
func (c *Coordinator) voteKit(reads []string, cfg *scan.Config) string {
	var mu sync.Mutex
	counts := map[string]int{}

	c.shard(len(reads), func(i int) {
		name := c.scanner.VoteKit(reads[i], cfg)
		if name == "" {
			return
		}
		mu.Lock()
		counts[name]++
		mu.Unlock()
	})

	best, bestCount := "", 0
	for name, count := range counts {
		if count > bestCount {
			best, bestCount = name, count
		}
	}
	log.Debug.Printf("batch: kit vote winner %q (%d/%d reads)", best, bestCount, len(reads))
	return best
}

// filterBarcodes implements the abundance filter (pass 3): barcodes
// whose total call count across the batch falls at or below
// AbundanceMinFraction of the most abundant barcode's count are voided
// in place, discarding sporadic spurious calls. Counting is a
// sequential reduction over results already computed by pass 2;
// only the voiding pass, which touches each result independently, is
// sharded.
func (c *Coordinator) filterBarcodes(results []scan.BarcodeResult) {
	// The no-call bucket ("0") is folded into the tally along with every
	// real barcode id, matching update_barcode_count in the original:
	// when most reads in a batch are unclassified, that bucket can be
	// the max-count bucket, and the 5% threshold must be computed
	// against it too.
	counts := map[string]int{}
	for _, r := range results {
		id := "0"
		if r.Barcode != nil {
			id = r.Barcode.ID
		}
		counts[id]++
	}

	maxCount := 0
	for _, n := range counts {
		if n > maxCount {
			maxCount = n
		}
	}
	threshold := float64(maxCount) * c.opts.AbundanceMinFraction

	c.shard(len(results), func(i int) {
		r := results[i]
		if r.Barcode == nil {
			return
		}
		if float64(counts[r.Barcode.ID]) <= threshold {
			results[i] = scan.BarcodeResult{ExitStatus: scan.StatusNoCall}
		}
	})
}

// shard distributes indices [0,n) across c.opts.Parallelism worker
// goroutines, each pulling indices off a shared channel and calling fn
// on them, and blocks until every worker has drained the channel. A
// panic inside fn is recovered, recorded on c.err (first one wins, the
// rest are dropped, matching errors.Once), and that index is simply
// skipped rather than taking down the other workers.
func (c *Coordinator) shard(n int, fn func(i int)) {
	indices := make(chan int, n)
	for i := 0; i < n; i++ {
		indices <- i
	}
	close(indices)

	var wg sync.WaitGroup
	for w := 0; w < c.opts.Parallelism; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				c.callSafely(i, fn)
			}
		}()
	}
	wg.Wait()
}

func (c *Coordinator) callSafely(i int, fn func(i int)) {
	defer func() {
		if r := recover(); r != nil {
			c.err.Set(errors.Errorf("batch: read %d: %v", i, r))
		}
	}()
	fn(i)
}
