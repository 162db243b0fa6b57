// Package download provides the download orchestration logic for
// materializing radar composites into a local cache.
//
// # Manager
//
// The Manager coordinates the whole process for one range of instants:
//
//  1. Enumerate the instants on the 5 minute grid at the requested step
//  2. Resolve each instant to a remote URL and a cache filename
//  3. Skip instants whose file is already cached
//  4. Fetch the rest concurrently, at most once each
//  5. Commit each body atomically (temp file, fsync, rename)
//
// # Basic Usage
//
//	manager, err := download.NewManager(settings, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	session, err := manager.NewSession("maxz", "/data/chmi")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	outcomes, err := manager.DownloadRange(ctx, session, start, end, 10)
//	if err != nil {
//	    log.Fatal(err) // invalid step
//	}
//	fmt.Println(download.Summarize(outcomes))
//
// # Outcomes
//
// Every requested instant yields exactly one Outcome, ordered by time:
//   - Skipped: already cached, no request made
//   - Fetched: downloaded and written, with its size
//   - Failed: with a *StatusError, *TransportError or *FilesystemError
//
// A failed instant never aborts the range. Running the same range again
// only fetches what is still missing.
//
// # Concurrency
//
// settings.MaxConcurrentDownloads bounds the number of requests in flight;
// 1 gives strictly sequential behavior. The progress callback is invoked
// from worker goroutines and must be safe for concurrent use.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	    Outcome *Outcome      // set for per-instant events
//	}
//
// Front-ends that poll instead can use GetProgress.
package download
