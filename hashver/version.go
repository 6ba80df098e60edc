package hashver

import (
	"encoding/base64"
	"encoding/binary"
	"strconv"
	"strings"
	"sync"
	"time"
)

// versionCounter is the process-wide (last_t, seq) pair used to break ties
// within the same millisecond. Protected by verMu; a cooperative
// single-threaded runtime wouldn't need the lock, but a threaded Go
// program does.
var (
	verMu   sync.Mutex
	lastT   int64
	lastSeq int
)

// nowMillis is overridable in tests.
var nowMillis = func() int64 { return time.Now().UnixMilli() }

// NextVersion produces a unique, lexicographically sortable string per
// call: base64url of the truncated big-endian millisecond timestamp, with
// a ".N" suffix when more than one version is generated within the same
// millisecond. An N of two or more digits is preceded by one '~' per extra
// digit (".9", ".~10", ".~~100"), so versions from one millisecond sort in
// call order. Safe for concurrent use within one process; uniqueness is
// not claimed across processes.
func NextVersion() string {
	verMu.Lock()
	t := nowMillis()
	var seq int
	if t == lastT {
		lastSeq++
		seq = lastSeq
	} else {
		lastT = t
		lastSeq = 0
		seq = 0
	}
	verMu.Unlock()

	return encodeVersion(t, seq)
}

func encodeVersion(t int64, seq int) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(t))

	i := 0
	for i < 7 && buf[i] == 0 {
		i++
	}
	token := base64.RawURLEncoding.EncodeToString(buf[i:])

	if seq > 0 {
		// One '~' per digit beyond the first keeps the suffix ordered as a
		// string: '~' sorts after every digit, so ".9" < ".~10" < ".~~100".
		digits := strconv.Itoa(seq)
		return token + "." + strings.Repeat("~", len(digits)-1) + digits
	}
	return token
}
