// Package xid mints sortable opaque identifiers for persisted records.
package xid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// New returns an identifier of the form prefix-<base36 unix nanos>-<random>.
// IDs minted on the same process sort roughly by creation time.
func New(prefix string) string {
	ts := strconv.FormatInt(time.Now().UTC().UnixNano(), 36)
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%s-%s", prefix, ts)
	}
	return fmt.Sprintf("%s-%s-%s", prefix, ts, hex.EncodeToString(buf))
}
