package herkulexd

import (
	"encoding/json"
	"io"
)

func ReadSSE(r io.Reader) ([]byte, error) {
	buf := make([]byte, 512<<10) // 512kB is far enough to read a SSE from herkulexd.

	var n int
	var lf uint8
	var err error
	for {
		if n == len(buf) {
			return buf, io.ErrShortBuffer
		}

		_, err = r.Read(buf[n : n+1])
		if err != nil {
			return buf[:n], err
		}

		if buf[n] == '\n' {
			lf++
		} else {
			lf = 0
		}

		if lf == 2 {
			return buf[:n-1], nil
		}

		n++
	}
}

// ReadSnapshots reads the next non-empty monitor event.
func ReadSnapshots(r io.Reader) ([]Snapshot, error) {
	var payload []byte
	var err error
	for len(payload) == 0 {
		payload, err = ReadSSE(r)
		if err != nil {
			return nil, err
		}
	}

	var snapshots []Snapshot
	err = json.Unmarshal(payload, &snapshots)
	return snapshots, err
}
