package model

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// NewID generates a unique conversation ID using a timestamp prefix and random
// suffix. Format: YYYYMMDD-HHMMSS-RANDOM (e.g., "20240115-143052-a1b2c3").
// IDs sort chronologically and always start with a digit, so they can never
// collide with the reserved settings key.
func NewID() string {
	now := time.Now()
	random := make([]byte, 3) // 6 hex chars
	rand.Read(random)
	return fmt.Sprintf("%s-%s",
		now.Format("20060102-150405"),
		hex.EncodeToString(random),
	)
}

// ShortID returns a shortened version of a conversation ID for display.
// Example: "20240115-143052-a1b2c3" -> "240115-1430"
func ShortID(id string) string {
	if len(id) < 15 {
		return id
	}
	return id[2:8] + "-" + id[9:13]
}
