package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook copies op and item_id from the event context onto the event.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == nil || ctx == context.Background() {
		return
	}

	if op := GetOperation(ctx); op != "" {
		e.Str("op", op)
	}

	if id := GetItemID(ctx); id != "" {
		e.Str("item_id", id)
	}
}
