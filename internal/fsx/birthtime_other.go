//go:build !linux && !darwin

package fsx

import "time"

func birthTime(string) (time.Time, bool) {
	return time.Time{}, false
}
