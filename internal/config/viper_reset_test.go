package config

import (
	"testing"

	"github.com/spf13/viper"
)

// viperReset clears the package-level viper instance between tests,
// since Manager deliberately reuses viper's global singleton the way
// the teacher's config manager does.
func viperReset(t *testing.T) {
	t.Helper()
	viper.Reset()
}
