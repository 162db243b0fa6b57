// Package http provides the HTTP client chmirad uses to talk to the radar
// archive.
//
// The Client in this package handles:
//   - User-Agent headers
//   - Per-request timeouts
//   - An optional client-side request rate limit, to stay polite to the
//     public archive during large backfills
//   - Whole-body fetches returning status code and bytes
//
// # Basic Usage
//
//	client := http.NewClient(http.DefaultOptions())
//
//	status, body, err := client.Fetch(ctx, url)
//	if err != nil {
//	    // the request never produced a response (DNS, timeout, reset...)
//	}
//	if status != 200 {
//	    // the archive answered, but not with the file
//	}
//
// A non-2xx status is not an error at this layer: callers decide what a
// missing file means.
package http
