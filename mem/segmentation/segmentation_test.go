package segmentation

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/memsim/mem"
)

var _ = Describe("Segmentation Space", func() {
	var space mem.Space

	BeforeEach(func() {
		space = NewSpace(mem.Config{
			Technique:  mem.TechniqueSegmentation,
			MemorySize: 1024,
			PageSize:   64,
			Algorithm:  mem.AlgorithmFIFO,
		})
	})

	Context("when allocating", func() {
		It("should place segments first fit from the bottom", func() {
			first, err := space.Allocate(100)
			Expect(err).ToNot(HaveOccurred())
			Expect(first.PID).To(Equal(mem.PID(1)))
			Expect(*first.Segment).To(Equal(mem.Segment{
				PID: 1, Base: 0, Length: 100,
			}))

			second, err := space.Allocate(200)
			Expect(err).ToNot(HaveOccurred())
			Expect(*second.Segment).To(Equal(mem.Segment{
				PID: 2, Base: 100, Length: 200,
			}))

			state := space.State()
			Expect(state.FreeRanges).To(Equal([]mem.Range{
				{Base: 300, Length: 724},
			}))
		})

		It("should reject a non-positive size", func() {
			_, err := space.Allocate(-5)

			Expect(err).To(MatchError(mem.ErrInvalidSize))
		})

		It("should fail when no single free range fits", func() {
			_, err := space.Allocate(500)
			Expect(err).ToNot(HaveOccurred())

			_, err = space.Allocate(400)
			Expect(err).ToNot(HaveOccurred())

			// 124 bytes remain, in one range.
			_, err = space.Allocate(200)

			Expect(err).To(MatchError(mem.ErrInsufficientMemory))
		})

		It("should not satisfy a request from fragmented free space", func() {
			first, err := space.Allocate(300)
			Expect(err).ToNot(HaveOccurred())

			_, err = space.Allocate(100)
			Expect(err).ToNot(HaveOccurred())

			third, err := space.Allocate(300)
			Expect(err).ToNot(HaveOccurred())

			_, err = space.Allocate(324)
			Expect(err).ToNot(HaveOccurred())

			_, err = space.DeallocateAt(first.Segment.Base)
			Expect(err).ToNot(HaveOccurred())

			_, err = space.DeallocateAt(third.Segment.Base)
			Expect(err).ToNot(HaveOccurred())

			// 600 bytes are free, but the largest hole is 300.
			_, err = space.Allocate(400)

			Expect(err).To(MatchError(mem.ErrInsufficientMemory))
		})

		It("should reuse a freed hole that fits", func() {
			first, err := space.Allocate(300)
			Expect(err).ToNot(HaveOccurred())

			_, err = space.Allocate(300)
			Expect(err).ToNot(HaveOccurred())

			_, err = space.DeallocateAt(first.Segment.Base)
			Expect(err).ToNot(HaveOccurred())

			third, err := space.Allocate(250)

			Expect(err).ToNot(HaveOccurred())
			Expect(third.Segment.Base).To(Equal(0))

			state := space.State()
			Expect(state.FreeRanges).To(Equal([]mem.Range{
				{Base: 250, Length: 50},
				{Base: 600, Length: 424},
			}))
		})
	})

	Context("when deallocating", func() {
		It("should free the segment that contains the address", func() {
			_, err := space.Allocate(100)
			Expect(err).ToNot(HaveOccurred())

			_, err = space.Allocate(100)
			Expect(err).ToNot(HaveOccurred())

			result, err := space.DeallocateAt(150)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.PID).To(Equal(mem.PID(2)))
			Expect(result.Segments).To(Equal([]mem.Segment{
				{PID: 2, Base: 100, Length: 100},
			}))
		})

		It("should coalesce adjacent free ranges", func() {
			first, err := space.Allocate(100)
			Expect(err).ToNot(HaveOccurred())

			second, err := space.Allocate(100)
			Expect(err).ToNot(HaveOccurred())

			_, err = space.Allocate(100)
			Expect(err).ToNot(HaveOccurred())

			_, err = space.DeallocateAt(first.Segment.Base)
			Expect(err).ToNot(HaveOccurred())

			_, err = space.DeallocateAt(second.Segment.Base)
			Expect(err).ToNot(HaveOccurred())

			state := space.State()
			Expect(state.FreeRanges).To(Equal([]mem.Range{
				{Base: 0, Length: 200},
				{Base: 300, Length: 724},
			}))
		})

		It("should restore one full range when everything is freed", func() {
			first, err := space.Allocate(512)
			Expect(err).ToNot(HaveOccurred())

			second, err := space.Allocate(512)
			Expect(err).ToNot(HaveOccurred())

			_, err = space.DeallocateAt(second.Segment.Base)
			Expect(err).ToNot(HaveOccurred())

			_, err = space.DeallocateAt(first.Segment.Base)
			Expect(err).ToNot(HaveOccurred())

			state := space.State()
			Expect(state.Segments).To(BeEmpty())
			Expect(state.FreeRanges).To(Equal([]mem.Range{
				{Base: 0, Length: 1024},
			}))
		})

		It("should reject an address outside memory", func() {
			_, err := space.DeallocateAt(1024)

			Expect(err).To(MatchError(mem.ErrOutOfRange))
		})

		It("should reject an address in free space", func() {
			_, err := space.DeallocateAt(500)

			Expect(err).To(MatchError(mem.ErrProcessNotFound))
		})
	})

	Context("when accessing", func() {
		BeforeEach(func() {
			_, err := space.Allocate(100)
			Expect(err).ToNot(HaveOccurred())
		})

		It("should hit inside a mapped segment", func() {
			result, err := space.Access(0, 99)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Outcome).To(Equal(mem.AccessHit))
			Expect(result.PID).To(Equal(mem.PID(1)))
			Expect(result.Frame).To(Equal(mem.NoFrame))
		})

		It("should fault outside any segment without evicting", func() {
			result, err := space.Access(0, 100)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Outcome).To(Equal(mem.AccessFault))
			Expect(result.Frame).To(Equal(mem.NoFrame))
			Expect(result.EvictedFrame).To(Equal(mem.NoFrame))

			// Faults do not change the mapping.
			Expect(space.State().Segments).To(HaveLen(1))
		})

		It("should reject an address outside memory", func() {
			_, err := space.Access(0, -1)

			Expect(err).To(MatchError(mem.ErrOutOfRange))
		})
	})
})
