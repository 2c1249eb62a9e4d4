package pipeline

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// Job ids are ULIDs: 26 Crockford base32 characters, a 48-bit millisecond
// timestamp followed by 80 bits where the first 16 count ids issued within
// the same millisecond. Ids from one process sort in issue order.

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

var ids struct {
	sync.Mutex
	ms  uint64
	seq uint16
}

// NewJobID returns a fresh, time-ordered job id.
func NewJobID() string {
	ids.Lock()
	ms := uint64(time.Now().UnixMilli())
	if ms <= ids.ms {
		// Same millisecond, or the clock stepped back: stay monotonic.
		ms = ids.ms
		ids.seq++
		if ids.seq == 0 {
			ms++
		}
	} else {
		ids.seq = 0
	}
	ids.ms = ms
	seq := ids.seq
	ids.Unlock()

	var b [16]byte
	binary.BigEndian.PutUint64(b[:8], ms<<16)
	rand.Read(b[8:])
	binary.BigEndian.PutUint16(b[6:8], seq)
	return encodeCrockford(b)
}

// encodeCrockford writes the 128 bits of b as 26 base32 digits, padding two
// zero bits at the front.
func encodeCrockford(b [16]byte) string {
	var out [26]byte
	for i := range out {
		var v byte
		for j := range 5 {
			v <<= 1
			bit := i*5 + j - 2
			if bit >= 0 && b[bit/8]&(0x80>>(bit%8)) != 0 {
				v |= 1
			}
		}
		out[i] = crockford[v]
	}
	return string(out[:])
}
