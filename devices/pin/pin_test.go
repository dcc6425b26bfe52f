package pin

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"

	"github.com/sarchlab/vstim/devices"
	"github.com/sarchlab/vstim/port"
	"github.com/sarchlab/vstim/stimulus"
)

var _ = Describe("Pin", func() {
	It("should alternate between output and input checks", func() {
		g, err := MakeBuilder().Build("Pin")
		Expect(err).NotTo(HaveOccurred())

		seq, err := g.Generate(8)
		Expect(err).NotTo(HaveOccurred())
		Expect(stimulus.Validate(seq.Ops(), g.Ports())).To(Succeed())

		var body []stimulus.Operation
		for _, op := range seq.Ops() {
			if op.Port != "clk" {
				body = append(body, op)
			}
		}

		Expect(body[:6]).To(Equal([]stimulus.Operation{
			{Port: "dir", Action: stimulus.ActionWrite, Value: DirOut, Tick: 0},
			{Port: "pin_out", Action: stimulus.ActionWrite, Value: 0xa5, Tick: 0},
			{Port: "pin", Action: stimulus.ActionRead, Value: 0xa5, Tick: 1},
			{Port: "dir", Action: stimulus.ActionWrite, Value: DirIn, Tick: 2},
			{Port: "pin", Action: stimulus.ActionWrite, Value: 0x5a, Tick: 2},
			{Port: "pin_in", Action: stimulus.ActionRead, Value: 0x5a, Tick: 3},
		}))
		Expect(body[6:]).To(HaveLen(6))
		Expect(body[6].Tick).To(Equal(uint64(4)))
	})

	It("should declare the shared pin as inout", func() {
		g, err := MakeBuilder().Build("Pin")
		Expect(err).NotTo(HaveOccurred())

		p, ok := g.Ports().Lookup("pin")
		Expect(ok).To(BeTrue())
		Expect(p.Dir).To(Equal(port.DirInOut))
		Expect(g.Ports().HasInOut()).To(BeTrue())
	})

	It("should mask patterns to the pin width", func() {
		g, err := MakeBuilder().
			WithWidth(4).
			WithPatterns(0xf3, 0x1c).
			Build("Pin")
		Expect(err).NotTo(HaveOccurred())

		out, in := g.Patterns()
		Expect(out).To(Equal(uint64(0x3)))
		Expect(in).To(Equal(uint64(0xc)))
	})

	It("should reject patterns that cannot be told apart", func() {
		_, err := MakeBuilder().
			WithWidth(4).
			WithPatterns(0x15, 0x25).
			Build("Pin")
		Expect(errors.Is(err, devices.ErrInvalidConfig)).To(BeTrue())

		_, err = New("Pin", devices.Params{MacroPinWidth: "65"}, devices.Options{})
		Expect(errors.Is(err, devices.ErrInvalidConfig)).To(BeTrue())
	})
})
