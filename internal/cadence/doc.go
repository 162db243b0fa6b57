// Package cadence enumerates the sample instants of a radar product over a
// time range.
//
// The archive publishes on a 5-minute grid. Both ends of a requested range
// are floored to that grid before stepping, so a 10-minute step still lands
// on :00, :10, :20 and never on :03 or :13.
//
//	seq, err := cadence.Sequence(start, end, 10)
//	if err != nil {
//	    return err // *cadence.InvalidCadenceError for a non-positive step
//	}
//	for t := range seq {
//	    fmt.Println(t.Format(time.RFC3339))
//	}
//
// All instants are UTC. The package never consults the wall clock; callers
// that want "the last hour" compute the bounds themselves.
package cadence
