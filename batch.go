package clugen

import (
	"fmt"
	"math/rand/v2"
	"runtime"
	"sync"
)

// GenerateBatch runs Generate for every config and returns the results in
// input order. Configs are split into contiguous chunks handled by up to
// workers goroutines; workers values below one mean one worker per CPU, and
// a single config or a single worker degrades to a plain sequential loop.
//
// Configs must not share a Rand generator: concurrent draws from one
// generator race. Each config should carry its own seeded generator, or nil
// for independent auto-seeded ones. If any generation fails, GenerateBatch
// returns the first error by input order and no results.
func GenerateBatch(cfgs []Config, workers int) ([]*Result, error) {
	if len(cfgs) == 0 {
		return nil, nil
	}
	shared := make(map[*rand.Rand]int, len(cfgs))
	for i := range cfgs {
		if cfgs[i].Rand == nil {
			continue
		}
		if j, dup := shared[cfgs[i].Rand]; dup {
			return nil, fmt.Errorf("clugen: configs %d and %d share a Rand generator; give each config its own", j, i)
		}
		shared[cfgs[i].Rand] = i
	}

	if workers < 1 {
		workers = runtime.NumCPU()
	}
	results := make([]*Result, len(cfgs))
	if workers == 1 || len(cfgs) == 1 {
		for i := range cfgs {
			r, err := Generate(cfgs[i])
			if err != nil {
				return nil, fmt.Errorf("clugen: config %d: %w", i, err)
			}
			results[i] = r
		}
		return results, nil
	}

	errs := make([]error, len(cfgs))
	perWorker := (len(cfgs) + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * perWorker
		if start >= len(cfgs) {
			break
		}
		end := min(start+perWorker, len(cfgs))
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				results[i], errs[i] = Generate(cfgs[i])
			}
		}(start, end)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("clugen: config %d: %w", i, err)
		}
	}
	return results, nil
}
