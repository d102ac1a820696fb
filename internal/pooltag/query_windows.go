//go:build windows

package pooltag

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// systemPoolTagInformation is the SYSTEM_INFORMATION_CLASS value for the
// kernel pool-tag table.
const systemPoolTagInformation = 22

// initialBufferSize fits the pool-tag table on typical systems; the query
// retries once with a doubled buffer when the kernel reports a length
// mismatch.
const initialBufferSize = 2 * 1024 * 1024

// Sample performs one point-in-time query of the pool-tag table and decodes
// it. The query is read-only and has no effect on system state, so a failed
// or retried call is always safe to re-issue.
func Sample() (map[Tag]Counters, error) {
	size := initialBufferSize
	for attempt := 0; ; attempt++ {
		buf := make([]byte, size)
		var retLen uint32
		err := windows.NtQuerySystemInformation(
			systemPoolTagInformation,
			unsafe.Pointer(&buf[0]),
			uint32(len(buf)),
			&retLen,
		)
		if err == nil {
			if int(retLen) > len(buf) {
				retLen = uint32(len(buf))
			}
			return DecodeTagTable(buf[:retLen])
		}

		status, ok := err.(windows.NTStatus)
		if !ok {
			return nil, &SampleError{Reason: err.Error()}
		}
		if status == windows.STATUS_INFO_LENGTH_MISMATCH && attempt == 0 {
			size *= 2
			continue
		}
		if status == windows.STATUS_INFO_LENGTH_MISMATCH {
			return nil, &SampleError{
				Reason: "tag table exceeds buffer after resize",
				Status: uint32(status),
			}
		}
		return nil, &SampleError{
			Reason: "NtQuerySystemInformation failed",
			Status: uint32(status),
		}
	}
}
