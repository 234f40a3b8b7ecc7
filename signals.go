package cloak

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Operation names carried on every signal.
const (
	opEncrypt = "encrypt"
	opDecrypt = "decrypt"
	opHash    = "hash"
)

// Signals for cloak events.
var (
	SignalCodecCreated      = capitan.NewSignal("cloak.codec.created", "Encrypter, Decrypter, or Hasher instantiated")
	SignalTransformStart    = capitan.NewSignal("cloak.transform.start", "Object transform beginning")
	SignalTransformComplete = capitan.NewSignal("cloak.transform.complete", "Object transform finished")
)

// Keys for typed event data.
var (
	KeyOperation = capitan.NewStringKey("operation")
	KeyPathCount = capitan.NewIntKey("path_count")
	KeyDuration  = capitan.NewDurationKey("duration")
	KeyError     = capitan.NewErrorKey("error")
)

// emitCodecCreated emits an event when a transform codec is created.
func emitCodecCreated(ctx context.Context, op string) {
	capitan.Emit(ctx, SignalCodecCreated,
		KeyOperation.Field(op),
	)
}

// emitTransformStart emits an event when an object transform begins.
// pathCount is the explicit selection size; zero means default selection.
func emitTransformStart(ctx context.Context, op string, pathCount int) {
	capitan.Emit(ctx, SignalTransformStart,
		KeyOperation.Field(op),
		KeyPathCount.Field(pathCount),
	)
}

// emitTransformComplete emits an event when an object transform finishes.
func emitTransformComplete(ctx context.Context, op string, pathCount int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyOperation.Field(op),
		KeyPathCount.Field(pathCount),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalTransformComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalTransformComplete, fields...)
	}
}
