package worker

import (
	"context"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/gofhir/dxcode"
)

// sequentialThreshold is the batch size below which no goroutines are used.
const sequentialThreshold = 3

// ConvertAll converts codes out of from with up to workers goroutines.
// Results[i] belongs to codes[i]. When ctx is cancelled the remaining codes
// are not converted and their results carry the context error.
func ConvertAll(ctx context.Context, conv Converter, from dxcode.Standard, codes []string, workers int) *BatchResult {
	start := time.Now()
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]*JobResult, len(codes))
	if len(codes) < sequentialThreshold || workers == 1 {
		for i, code := range codes {
			if ctx.Err() != nil {
				break
			}
			results[i] = process(conv, newJob(i, from, code))
		}
	} else {
		convertParallel(ctx, conv, from, codes, min(workers, len(codes)), results)
	}

	return summarize(ctx, from, codes, results, time.Since(start))
}

func convertParallel(ctx context.Context, conv Converter, from dxcode.Standard, codes []string, workers int, results []*JobResult) {
	indexes := make(chan int)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range indexes {
				results[i] = process(conv, newJob(i, from, codes[i]))
			}
		}()
	}

feed:
	for i := range codes {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break feed
		case indexes <- i:
		}
	}
	close(indexes)
	wg.Wait()
}

func summarize(ctx context.Context, from dxcode.Standard, codes []string, results []*JobResult, d time.Duration) *BatchResult {
	br := &BatchResult{
		Results:       results,
		TotalJobs:     len(codes),
		TotalDuration: d,
	}
	for i, r := range results {
		if r == nil {
			results[i] = &JobResult{ID: strconv.Itoa(i), From: from, Code: codes[i], Error: ctx.Err()}
			br.FailedJobs++
			continue
		}
		br.CompletedJobs++
		if r.Error != nil {
			br.FailedJobs++
		}
	}
	return br
}

func newJob(i int, from dxcode.Standard, code string) Job {
	return Job{ID: strconv.Itoa(i), From: from, Code: code}
}
