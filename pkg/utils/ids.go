package utils

import (
	"crypto/rand"
	"fmt"
	"time"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

func randSuffix(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	for i := range b {
		b[i] = idAlphabet[int(b[i])%len(idAlphabet)]
	}
	return string(b)
}

// GenMessageID returns a new opaque message id. The millisecond prefix keeps
// ids roughly sortable; the random suffix makes reuse practically impossible.
func GenMessageID() string {
	return fmt.Sprintf("msg_%d_%s", time.Now().UTC().UnixMilli(), randSuffix(7))
}

// GenPollID returns a new opaque poll id.
func GenPollID() string {
	return fmt.Sprintf("poll_%d_%s", time.Now().UTC().UnixMilli(), randSuffix(7))
}

// GenOptionID returns a new poll option id. The index keeps option ids
// unique within a poll even when generated in the same millisecond.
func GenOptionID(index int) string {
	return fmt.Sprintf("opt_%d_%d_%s", time.Now().UTC().UnixMilli(), index, randSuffix(3))
}

// NowISO returns the current time as the ISO-8601 string persisted in the
// JSON files. UTC with sub-second precision so newest-first sorting can
// fall back to a plain string compare.
func NowISO() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
