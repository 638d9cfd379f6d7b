package integration

import (
	"fmt"
	"time"
)

// TestAccount generates a unique test account email using timestamp
func TestAccount(suffix string) string {
	return fmt.Sprintf("test-%d-%s@example.com", time.Now().UnixNano(), suffix)
}
