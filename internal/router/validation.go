package router

import (
	"fmt"
	"strings"
)

const (
	maxBucketLen  = 63
	maxKeyBytes   = 1024
	maxValueBytes = 5 * 1024 * 1024
)

// validateBucket enforces the bucket-name rules: 1-63 characters, each
// alphanumeric or '-'.
func validateBucket(bucket string) error {
	if len(bucket) == 0 {
		return fmt.Errorf("bucket must not be empty")
	}
	if len(bucket) > maxBucketLen {
		return fmt.Errorf("bucket exceeds %d characters", maxBucketLen)
	}
	for _, r := range bucket {
		if !isAlnum(r) && r != '-' {
			return fmt.Errorf("bucket contains invalid character %q", r)
		}
	}
	return nil
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// validateKey enforces the 1-1024 byte key rule.
func validateKey(key []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("key must not be empty")
	}
	if len(key) > maxKeyBytes {
		return fmt.Errorf("key exceeds %d bytes", maxKeyBytes)
	}
	return nil
}

// validateValue enforces the 5 MiB value cap.
func validateValue(value []byte) error {
	if len(value) > maxValueBytes {
		return fmt.Errorf("value exceeds %d bytes", maxValueBytes)
	}
	return nil
}

// validateAddress enforces the http(s):// prefix rule for JOIN/LEAVE.
func validateAddress(addr string) error {
	if addr == "" {
		return fmt.Errorf("address must not be empty")
	}
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		return fmt.Errorf("address must start with http:// or https://")
	}
	return nil
}
