package wide

import (
	"math/big"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = Describe("Value", func() {
	It("should size limbs and masks from the width", func() {
		gomega.Expect(LimbsFor(64)).To(gomega.Equal(1))
		gomega.Expect(LimbsFor(65)).To(gomega.Equal(2))
		gomega.Expect(LimbsFor(128)).To(gomega.Equal(2))
		gomega.Expect(LimbsFor(88)).To(gomega.Equal(2))
		gomega.Expect(TopMask(128)).To(gomega.Equal(^uint64(0)))
		gomega.Expect(TopMask(88)).To(gomega.Equal(uint64(0xffffff)))
	})

	It("should carry across the 64-bit boundary", func() {
		a, _ := FromLimbs([]uint64{^uint64(0), 0}, 128)
		b, _ := FromLimbs([]uint64{1, 0}, 128)

		sum, err := Add(a, b)

		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(sum.Limbs).To(gomega.Equal([]uint64{0, 1}))
	})

	It("should discard the carry out of the top limb", func() {
		a, _ := FromLimbs([]uint64{^uint64(0), ^uint64(0)}, 128)
		b, _ := FromLimbs([]uint64{1, 0}, 128)

		sum, err := Add(a, b)

		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(sum.Limbs).To(gomega.Equal([]uint64{0, 0}))
	})

	It("should mask the top limb to the declared width", func() {
		a, _ := FromLimbs([]uint64{^uint64(0), 0xffffff}, 88)
		b, _ := FromLimbs([]uint64{1, 0}, 88)

		sum, err := Add(a, b)

		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(sum.Limbs).To(gomega.Equal([]uint64{0, 0}))
	})

	It("should refuse values of different widths", func() {
		_, err := Add(NewValue(128), NewValue(88))
		gomega.Expect(err).To(gomega.HaveOccurred())
	})

	It("should refuse a limb count that does not match the width", func() {
		_, err := FromLimbs([]uint64{1}, 128)
		gomega.Expect(err).To(gomega.HaveOccurred())

		_, err = FromLimbs([]uint64{1}, 0)
		gomega.Expect(err).To(gomega.HaveOccurred())
	})

	It("should match big.Int addition modulo 2^128", func() {
		r := rand.New(rand.NewSource(1))
		mod := new(big.Int).Lsh(big.NewInt(1), 128)
		acc := NewValue(128)
		ref := new(big.Int)

		for i := 0; i < 200; i++ {
			addend := Value{Limbs: []uint64{r.Uint64(), r.Uint64()}, Bits: 128}

			var err error
			acc, err = Add(acc, addend)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			ref.Add(ref, Combine(addend))
			ref.Mod(ref, mod)

			gomega.Expect(Combine(acc).Cmp(ref)).To(gomega.Equal(0))
		}
	})

	It("should round trip limbs through Combine and Decompose", func() {
		r := rand.New(rand.NewSource(2))

		for n := 1; n <= 4; n++ {
			limbs := make([]uint64, n)
			for i := range limbs {
				limbs[i] = r.Uint64()
			}

			v, err := FromLimbs(limbs, uint(64*n))
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			back := Decompose(Combine(v), uint(64*n))
			gomega.Expect(back.Limbs).To(gomega.Equal(limbs))
			gomega.Expect(Equal(back, v)).To(gomega.BeTrue())
		}
	})

	It("should reduce integers modulo 2^(64n) when decomposing", func() {
		x, _ := new(big.Int).SetString("1234567890abcdef1122334455667788ff", 16)

		v := Decompose(x, 128)
		mod := new(big.Int).Lsh(big.NewInt(1), 128)

		gomega.Expect(Combine(v).Cmp(new(big.Int).Mod(x, mod))).To(gomega.Equal(0))
		gomega.Expect(v.Limbs).To(gomega.Equal([]uint64{0x22334455667788ff, 0x34567890abcdef11}))
	})

	It("should wrap negative integers", func() {
		v := Decompose(big.NewInt(-1), 128)
		gomega.Expect(v.Limbs).To(gomega.Equal([]uint64{^uint64(0), ^uint64(0)}))
	})

	It("should clone without sharing limbs", func() {
		v := Value{Limbs: []uint64{1, 2}, Bits: 128}
		c := v.Clone()
		c.Limbs[0] = 5

		gomega.Expect(v.Limbs[0]).To(gomega.Equal(uint64(1)))
	})
})

var _ = Describe("Lanes", func() {
	It("should add lanes without crossing carries", func() {
		a := uint64(0x0001_ffff_0002_8000)
		b := uint64(0x0001_0001_0003_8000)

		sum, err := AddLanes(a, b, 16)

		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(sum).To(gomega.Equal(uint64(0x0002_0000_0005_0000)))
		gomega.Expect(Lane(sum, 3, 16)).To(gomega.Equal(uint64(2)))
		gomega.Expect(Lane(sum, 1, 16)).To(gomega.Equal(uint64(5)))
	})

	It("should behave as a plain add for a single lane", func() {
		sum, err := AddLanes(^uint64(0), 2, 64)

		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(sum).To(gomega.Equal(uint64(1)))
	})

	It("should refuse lane widths that do not divide 64", func() {
		_, err := AddLanes(1, 1, 24)
		gomega.Expect(err).To(gomega.HaveOccurred())
	})
})
