package helper

import (
	"os"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

// GivenCleanEnvironment unsets every variable named by an envconfig tag of the given structs.
// The previous values are restored when the test ends.
func GivenCleanEnvironment(t testing.TB, specs ...any) {
	t.Helper()

	for _, spec := range specs {
		typ := reflect.TypeOf(spec)

		for i := 0; i < typ.NumField(); i++ {
			key := typ.Field(i).Tag.Get("envconfig")
			if key == "" {
				continue
			}

			t.Setenv(key, "")
			require.NoError(t, os.Unsetenv(key), "error in arranging test data")
		}
	}
}
