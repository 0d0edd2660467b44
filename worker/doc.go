// Package worker converts batches of diagnosis codes in parallel.
//
// ConvertAll is the simple entry point: it fans a slice of codes out over a
// fixed number of goroutines and returns the results in input order.
//
//	res := worker.ConvertAll(ctx, m, dxcode.ICD10, codes, 8)
//	for _, r := range res.Results {
//	    if r.Error != nil {
//	        // r.Code could not be converted
//	    }
//	}
//
// Pool is the streaming form for callers that produce codes incrementally.
// Results must be consumed from Results() while jobs are submitted, or
// collected at the end with CloseAndWait.
package worker
