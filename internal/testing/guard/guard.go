// Package guard switches binaries into test mode when imported for side
// effects, so entrypoints under test never dial Redis, Postgres or Gotenberg.
package guard

import "os"

var defaults = map[string]string{
	"APP_TEST_MODE": "1",
	"LOG_LEVEL":     "warn",
}

func init() {
	for key, value := range defaults {
		if _, set := os.LookupEnv(key); !set {
			_ = os.Setenv(key, value)
		}
	}
}
