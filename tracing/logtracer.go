package tracing

import (
	"log"

	"github.com/sarchlab/vstim/hooking"
	"github.com/sarchlab/vstim/port"
	"github.com/sarchlab/vstim/queueing"
	"github.com/sarchlab/vstim/stimulus"
	"github.com/sarchlab/vstim/uart"
)

// LogTracer prints the categories enabled in its verbosity.
type LogTracer struct {
	logger    *log.Logger
	verbosity Verbosity
}

// NewLogTracer creates a tracer that prints to logger.
func NewLogTracer(logger *log.Logger, v Verbosity) *LogTracer {
	return &LogTracer{logger: logger, verbosity: v}
}

// Verbosity returns the enabled categories.
func (t *LogTracer) Verbosity() Verbosity {
	return t.verbosity
}

// TracePorts prints the port map of an instance.
func (t *LogTracer) TracePorts(instance string, m *port.Map) {
	if !t.verbosity.Has(VerbosePorts) {
		return
	}

	for _, p := range m.Ports() {
		t.logger.Printf("%s: port %d %s, %d bytes, %s",
			instance, p.Index, p.Name, p.WidthBytes, p.Dir)
	}
}

// Func prints the event that invoked the hook.
func (t *LogTracer) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case stimulus.HookPosOpEmit:
		if t.verbosity.Has(VerboseOps) {
			t.logger.Printf("%s: op %d %s",
				domainName(ctx), ctx.Detail, ctx.Item.(stimulus.Operation))
		}
	case stimulus.HookPosOpSuppressed:
		if t.verbosity.Has(VerboseOps) {
			t.logger.Printf("%s: clock write %d dropped, %s",
				domainName(ctx), ctx.Detail, ctx.Item.(stimulus.Operation))
		}
	case uart.HookPosFrameDriven:
		if t.verbosity.Has(VerboseFrames) {
			f := ctx.Item.(uart.Frame)
			t.logger.Printf("%s: drive frame %#x/%d @%d",
				domainName(ctx), f.Payload, f.Width, ctx.Detail)
		}
	case uart.HookPosFrameExpected:
		if t.verbosity.Has(VerboseFrames) {
			f := ctx.Item.(uart.Frame)
			t.logger.Printf("%s: expect frame %#x/%d @%d",
				domainName(ctx), f.Payload, f.Width, ctx.Detail)
		}
	case queueing.HookPosEnqueue:
		if t.verbosity.Has(VerboseQueue) {
			t.logger.Printf("%s: enqueue %v, %d pending",
				domainName(ctx), ctx.Item, ctx.Detail)
		}
	case queueing.HookPosDequeue:
		if t.verbosity.Has(VerboseQueue) {
			t.logger.Printf("%s: dequeue %v, %d pending",
				domainName(ctx), ctx.Item, ctx.Detail)
		}
	}
}
