package logging

import (
	"github.com/rs/zerolog"
)

// Component derives a logger tagged with a component name under the "cmp" key.
func Component(parent zerolog.Logger, name string) zerolog.Logger {
	return parent.With().Str("cmp", name).Logger()
}
