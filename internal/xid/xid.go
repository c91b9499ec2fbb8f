// Package xid builds human readable document numbers.
package xid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Invoice returns PREFIX-<branch>-<yyyymmdd>-<8 hex>, for example
// INV-1-20260314-3f9a1c2b. The date is taken in UTC.
func Invoice(prefix string, branchID int64, at time.Time) string {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		prefix = "INV"
	}
	return fmt.Sprintf("%s-%d-%s-%s", prefix, branchID, at.UTC().Format("20060102"), suffix())
}

func suffix() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%08x", uint32(time.Now().UnixNano()))
	}
	return hex.EncodeToString(buf)
}
