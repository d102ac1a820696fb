//go:build !windows

package pooltag

// Sample is unavailable off Windows: the pool-tag table is a Windows kernel
// structure. Decoding and analysis still build and test everywhere.
func Sample() (map[Tag]Counters, error) {
	return nil, &SampleError{Reason: "pool tag query requires Windows"}
}
