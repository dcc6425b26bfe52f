package tracing

import (
	"strconv"
	"strings"

	"github.com/sarchlab/vstim/datarecording"
	"github.com/sarchlab/vstim/hooking"
	"github.com/sarchlab/vstim/stimulus"
)

// OpTable is the table that DBTracer writes to.
const OpTable = "stimulus_ops"

// OpEntry is one row of OpTable. Values are stored as text, with limbs
// separated by colons, since SQLite integers are signed.
type OpEntry struct {
	Instance string
	Seq      int
	Port     string
	Action   string
	Value    string
	Tick     int64
}

// DBTracer records every emitted operation.
type DBTracer struct {
	backend datarecording.DataRecorder
	count   int
}

// NewDBTracer creates a tracer and the table it writes to.
func NewDBTracer(backend datarecording.DataRecorder) *DBTracer {
	backend.CreateTable(OpTable, OpEntry{})

	return &DBTracer{backend: backend}
}

// Count returns the number of operations recorded.
func (t *DBTracer) Count() int {
	return t.count
}

// Func records emitted operations and ignores other events.
func (t *DBTracer) Func(ctx hooking.HookCtx) {
	if ctx.Pos != stimulus.HookPosOpEmit {
		return
	}

	op := ctx.Item.(stimulus.Operation)

	values := op.Values()
	fields := make([]string, len(values))
	for i, v := range values {
		fields[i] = strconv.FormatUint(v, 10)
	}

	t.backend.InsertData(OpTable, OpEntry{
		Instance: domainName(ctx),
		Seq:      ctx.Detail.(int),
		Port:     op.Port,
		Action:   op.Action.String(),
		Value:    strings.Join(fields, ":"),
		Tick:     int64(op.Tick),
	})

	t.count++
}
