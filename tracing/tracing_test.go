package tracing

import (
	"bytes"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/vstim/hooking"
	"github.com/sarchlab/vstim/port"
	"github.com/sarchlab/vstim/queueing"
	"github.com/sarchlab/vstim/stimulus"
)

var _ = Describe("Verbosity", func() {
	It("should parse category lists", func() {
		v, err := ParseVerbosity("ops, frames")
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(VerboseOps | VerboseFrames))
		Expect(v.Has(VerboseOps)).To(BeTrue())
		Expect(v.Has(VerboseQueue)).To(BeFalse())
		Expect(v.String()).To(Equal("frames,ops"))
	})

	It("should accept all and none", func() {
		Expect(ParseVerbosity("all")).To(Equal(VerboseAll))
		Expect(ParseVerbosity("none")).To(Equal(VerboseNone))
		Expect(ParseVerbosity("")).To(Equal(VerboseNone))
		Expect(VerboseNone.String()).To(Equal("none"))
	})

	It("should reject unknown categories", func() {
		_, err := ParseVerbosity("ops,colors")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Attach", func() {
	var (
		mockCtrl *gomock.Controller
		domain   *MockNamedHookable
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		domain = NewMockNamedHookable(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should attach a new tracer", func() {
		tracer := NewLogTracer(log.New(&bytes.Buffer{}, "", 0), VerboseAll)

		domain.EXPECT().Hooks().Return(nil)
		domain.EXPECT().AcceptHook(tracer)

		Attach(domain, tracer)
	})

	It("should panic when the tracer is already attached", func() {
		tracer := NewLogTracer(log.New(&bytes.Buffer{}, "", 0), VerboseAll)

		domain.EXPECT().Hooks().Return([]hooking.Hook{tracer})
		domain.EXPECT().Name().Return("Counter")

		Expect(func() { Attach(domain, tracer) }).To(Panic())
	})
})

var _ = Describe("LogTracer", func() {
	var (
		buf *bytes.Buffer
		seq *stimulus.Sequence
	)

	BeforeEach(func() {
		buf = &bytes.Buffer{}
		seq = stimulus.NewSequence("Counter").WithDirectMode("clk")
	})

	It("should print ops and dropped clock writes", func() {
		Attach(seq, NewLogTracer(log.New(buf, "", 0), VerboseOps))

		Expect(seq.AddTestOp("done", stimulus.ActionRead, 1, 4)).To(Succeed())
		Expect(seq.AddTestOp("clk", stimulus.ActionWrite, 1, 4)).To(Succeed())

		Expect(buf.String()).To(ContainSubstring("Counter: op 0 done read 1 @4"))
		Expect(buf.String()).To(ContainSubstring("Counter: clock write 1 dropped"))
	})

	It("should stay quiet for disabled categories", func() {
		Attach(seq, NewLogTracer(log.New(buf, "", 0), VerboseFrames))

		Expect(seq.AddTestOp("done", stimulus.ActionRead, 1, 4)).To(Succeed())

		Expect(buf.Len()).To(Equal(0))
	})

	It("should print queue traffic", func() {
		q := queueing.PendingQueueBuilder{}.Build("Scratchpad.Pending")
		Attach(q, NewLogTracer(log.New(buf, "", 0), VerboseQueue))

		Expect(q.Enqueue(uint64(7))).To(Succeed())

		Expect(buf.String()).To(ContainSubstring("Scratchpad.Pending: enqueue 7, 1 pending"))
	})

	It("should print ports", func() {
		m := port.MapBuilder{}.AddPort("clk", 1, port.DirWrite).MustBuild()

		NewLogTracer(log.New(buf, "", 0), VerbosePorts).TracePorts("Counter", m)

		Expect(buf.String()).To(ContainSubstring("Counter: port 0 clk, 1 bytes, write"))
	})
})

var _ = Describe("DBTracer", func() {
	var (
		mockCtrl *gomock.Controller
		backend  *MockDataRecorder
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		backend = NewMockDataRecorder(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should record every emitted op", func() {
		backend.EXPECT().CreateTable(OpTable, OpEntry{})
		tracer := NewDBTracer(backend)

		seq := stimulus.NewSequence("Acc")
		Attach(seq, tracer)

		gomock.InOrder(
			backend.EXPECT().InsertData(OpTable, OpEntry{
				Instance: "Acc", Seq: 0, Port: "done",
				Action: "read", Value: "1", Tick: 3,
			}),
			backend.EXPECT().InsertData(OpTable, OpEntry{
				Instance: "Acc", Seq: 1, Port: "accum",
				Action: "read", Value: "18446744073709551615:2", Tick: 4,
			}),
		)

		Expect(seq.AddTestOp("done", stimulus.ActionRead, 1, 3)).To(Succeed())
		Expect(seq.AddBigTestOp("accum", stimulus.ActionRead,
			[]uint64{^uint64(0), 2}, 4)).To(Succeed())

		Expect(tracer.Count()).To(Equal(2))
	})

	It("should ignore dropped clock writes", func() {
		backend.EXPECT().CreateTable(OpTable, OpEntry{})
		tracer := NewDBTracer(backend)

		seq := stimulus.NewSequence("Acc").WithDirectMode("clk")
		Attach(seq, tracer)

		Expect(seq.AddTestOp("clk", stimulus.ActionWrite, 1, 0)).To(Succeed())
		Expect(tracer.Count()).To(Equal(0))
	})
})
