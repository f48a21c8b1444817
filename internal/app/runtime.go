package app

import (
	"os"
	"strconv"
	"sync/atomic"
)

const testModeEnv = "APP_TEST_MODE"

var testMode atomic.Pointer[bool]

// InTestMode reports whether binaries should exit before dialling any
// backend. The flag is read from APP_TEST_MODE on first use.
func InTestMode() bool {
	if v := testMode.Load(); v != nil {
		return *v
	}
	return RefreshTestMode()
}

// RefreshTestMode re-reads APP_TEST_MODE and returns the new value.
func RefreshTestMode() bool {
	on, _ := strconv.ParseBool(os.Getenv(testModeEnv))
	testMode.Store(&on)
	return on
}
