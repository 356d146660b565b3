package engine

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/memsim/mem"
)

var _ = Describe("Engine", func() {
	var (
		engine *Engine
		cfg    mem.Config
	)

	BeforeEach(func() {
		logger := logrus.New()
		logger.SetOutput(GinkgoWriter)

		engine = MakeBuilder().
			WithLogger(logger).
			Build()

		cfg = mem.Config{
			Technique:  mem.TechniquePaging,
			MemorySize: 256,
			PageSize:   64,
			Algorithm:  mem.AlgorithmFIFO,
		}
	})

	Context("before a simulation is started", func() {
		It("should refuse to execute operations", func() {
			_, err := engine.Execute(mem.OperationRequest{
				Operation: mem.OpAllocate,
				Size:      64,
			})

			Expect(err).To(MatchError(mem.ErrNotStarted))
		})

		It("should refuse to snapshot", func() {
			_, err := engine.Snapshot()

			Expect(err).To(MatchError(mem.ErrNotStarted))
		})

		It("should refuse to report results", func() {
			_, err := engine.Results()

			Expect(err).To(MatchError(mem.ErrNotStarted))
		})

		It("should report an empty ID", func() {
			Expect(engine.ID()).To(Equal(""))
		})
	})

	Context("when starting", func() {
		It("should begin with all memory free and zero counters", func() {
			snapshot, err := engine.Start(cfg)

			Expect(err).ToNot(HaveOccurred())
			Expect(snapshot.ID).ToNot(BeEmpty())
			Expect(snapshot.Config).To(Equal(cfg))
			Expect(snapshot.TotalFrames).To(Equal(4))
			Expect(snapshot.Frames).To(HaveLen(4))
			Expect(snapshot.PageFaults).To(Equal(0))
			Expect(snapshot.PageHits).To(Equal(0))
			Expect(snapshot.MemoryAccesses).To(Equal(0))
			Expect(snapshot.Operations).To(BeEmpty())

			for _, f := range snapshot.Frames {
				Expect(f.Status).To(Equal(mem.FrameFree))
			}
		})

		It("should reject an invalid configuration", func() {
			cfg.PageSize = 0

			_, err := engine.Start(cfg)

			Expect(err).To(MatchError(mem.ErrInvalidConfig))
			Expect(engine.ID()).To(Equal(""))
		})

		It("should refuse to start twice", func() {
			_, err := engine.Start(cfg)
			Expect(err).ToNot(HaveOccurred())

			_, err = engine.Start(cfg)

			Expect(err).To(MatchError(mem.ErrAlreadyStarted))
		})

		It("should start segmentation simulations", func() {
			cfg.Technique = mem.TechniqueSegmentation

			snapshot, err := engine.Start(cfg)

			Expect(err).ToNot(HaveOccurred())
			Expect(snapshot.Frames).To(BeEmpty())
			Expect(snapshot.FreeRanges).To(Equal([]mem.Range{
				{Base: 0, Length: 256},
			}))
		})
	})

	Context("when executing operations", func() {
		BeforeEach(func() {
			_, err := engine.Start(cfg)
			Expect(err).ToNot(HaveOccurred())
		})

		It("should log operations in request order", func() {
			snapshot, err := engine.Execute(mem.OperationRequest{
				Operation: mem.OpAllocate,
				Size:      100,
			})
			Expect(err).ToNot(HaveOccurred())

			snapshot, err = engine.Execute(mem.OperationRequest{
				Operation: mem.OpAccess,
				Address:   0,
			})
			Expect(err).ToNot(HaveOccurred())

			Expect(snapshot.Operations).To(HaveLen(2))
			Expect(snapshot.Operations[0].Seq).To(Equal(1))
			Expect(snapshot.Operations[0].Kind).To(Equal(mem.OpAllocate))
			Expect(snapshot.Operations[1].Seq).To(Equal(2))
			Expect(snapshot.Operations[1].Kind).To(Equal(mem.OpAccess))
		})

		It("should reject an unknown operation", func() {
			_, err := engine.Execute(mem.OperationRequest{
				Operation: "defragment",
			})

			Expect(err).To(MatchError(mem.ErrInvalidOperation))
		})

		It("should not log failed operations", func() {
			_, err := engine.Execute(mem.OperationRequest{
				Operation: mem.OpAllocate,
				Size:      0,
			})
			Expect(err).To(MatchError(mem.ErrInvalidSize))

			snapshot, err := engine.Snapshot()
			Expect(err).ToNot(HaveOccurred())
			Expect(snapshot.Operations).To(BeEmpty())
			Expect(snapshot.PageFaults).To(Equal(0))
		})

		It("should reject an access outside memory without counting it",
			func() {
				_, err := engine.Execute(mem.OperationRequest{
					Operation: mem.OpAccess,
					Address:   256,
				})
				Expect(err).To(MatchError(mem.ErrOutOfRange))

				snapshot, err := engine.Snapshot()
				Expect(err).ToNot(HaveOccurred())
				Expect(snapshot.MemoryAccesses).To(Equal(0))
			})

		It("should count hits and faults", func() {
			_, err := engine.Execute(mem.OperationRequest{
				Operation: mem.OpAllocate,
				Size:      128,
			})
			Expect(err).ToNot(HaveOccurred())

			snapshot, err := engine.Execute(mem.OperationRequest{
				Operation: mem.OpAccess,
				Address:   0,
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(snapshot.PageHits).To(Equal(1))
			Expect(snapshot.PageFaults).To(Equal(0))

			snapshot, err = engine.Execute(mem.OperationRequest{
				Operation: mem.OpAccess,
				Address:   200,
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(snapshot.PageHits).To(Equal(1))
			Expect(snapshot.PageFaults).To(Equal(1))
			Expect(snapshot.MemoryAccesses).To(Equal(2))

			op := snapshot.Operations[2]
			Expect(op.Result).To(Equal(mem.AccessFault))
			Expect(op.LoadedFrame).To(Equal(3))
			Expect(op.EvictedFrame).To(Equal(mem.NoFrame))
		})

		It("should hit when re-accessing a faulted address", func() {
			snapshot, err := engine.Execute(mem.OperationRequest{
				Operation: mem.OpAccess,
				Address:   128,
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(snapshot.Operations[0].Result).To(Equal(mem.AccessFault))

			snapshot, err = engine.Execute(mem.OperationRequest{
				Operation: mem.OpAccess,
				Address:   128,
			})
			Expect(err).ToNot(HaveOccurred())

			op := snapshot.Operations[1]
			Expect(op.Result).To(Equal(mem.AccessHit))
			Expect(op.PID).To(Equal(snapshot.Operations[0].PID))
			Expect(snapshot.PageFaults).To(Equal(1))
			Expect(snapshot.PageHits).To(Equal(1))
		})

		It("should count pages displaced by an allocation as faults", func() {
			_, err := engine.Execute(mem.OperationRequest{
				Operation: mem.OpAllocate,
				Size:      256,
			})
			Expect(err).ToNot(HaveOccurred())

			snapshot, err := engine.Execute(mem.OperationRequest{
				Operation: mem.OpAllocate,
				Size:      128,
			})
			Expect(err).ToNot(HaveOccurred())

			Expect(snapshot.PageFaults).To(Equal(2))
			Expect(snapshot.MemoryAccesses).To(Equal(0))
		})

		It("should evict under pressure with a full memory", func() {
			_, err := engine.Execute(mem.OperationRequest{
				Operation: mem.OpAllocate,
				Size:      256,
			})
			Expect(err).ToNot(HaveOccurred())

			snapshot, err := engine.Execute(mem.OperationRequest{
				Operation: mem.OpAccess,
				Address:   0,
				PID:       2,
			})
			Expect(err).ToNot(HaveOccurred())

			op := snapshot.Operations[1]
			Expect(op.Result).To(Equal(mem.AccessFault))
			Expect(op.EvictedFrame).To(Equal(0))
			Expect(op.LoadedFrame).To(Equal(0))
			Expect(snapshot.PageFaults).To(Equal(1))
			Expect(snapshot.PageHits).To(Equal(0))
		})

		It("should deallocate by any owned address", func() {
			_, err := engine.Execute(mem.OperationRequest{
				Operation: mem.OpAllocate,
				Size:      128,
			})
			Expect(err).ToNot(HaveOccurred())

			snapshot, err := engine.Execute(mem.OperationRequest{
				Operation: mem.OpDeallocate,
				Address:   100,
			})
			Expect(err).ToNot(HaveOccurred())

			op := snapshot.Operations[1]
			Expect(op.PID).To(Equal(mem.PID(1)))
			Expect(op.Frames).To(Equal([]int{0, 1}))
			Expect(snapshot.PageTables).To(BeEmpty())
		})
	})

	Context("when resetting", func() {
		It("should return to the uninitialized state", func() {
			_, err := engine.Start(cfg)
			Expect(err).ToNot(HaveOccurred())

			engine.Reset()

			Expect(engine.ID()).To(Equal(""))
			_, err = engine.Snapshot()
			Expect(err).To(MatchError(mem.ErrNotStarted))
		})

		It("should be idempotent", func() {
			engine.Reset()
			engine.Reset()

			Expect(engine.ID()).To(Equal(""))
		})

		It("should allow a fresh start afterwards", func() {
			_, err := engine.Start(cfg)
			Expect(err).ToNot(HaveOccurred())

			_, err = engine.Execute(mem.OperationRequest{
				Operation: mem.OpAllocate,
				Size:      64,
			})
			Expect(err).ToNot(HaveOccurred())

			firstID := engine.ID()
			engine.Reset()

			snapshot, err := engine.Start(cfg)
			Expect(err).ToNot(HaveOccurred())
			Expect(snapshot.ID).ToNot(Equal(firstID))
			Expect(snapshot.Operations).To(BeEmpty())
			Expect(snapshot.Frames[0].Status).To(Equal(mem.FrameFree))
		})
	})

	Context("when reporting results", func() {
		BeforeEach(func() {
			_, err := engine.Start(cfg)
			Expect(err).ToNot(HaveOccurred())
		})

		It("should derive ratios and utilization", func() {
			_, err := engine.Execute(mem.OperationRequest{
				Operation: mem.OpAllocate,
				Size:      128,
			})
			Expect(err).ToNot(HaveOccurred())

			for _, address := range []int{0, 64, 128, 0} {
				_, err = engine.Execute(mem.OperationRequest{
					Operation: mem.OpAccess,
					Address:   address,
				})
				Expect(err).ToNot(HaveOccurred())
			}

			results, err := engine.Results()

			Expect(err).ToNot(HaveOccurred())
			Expect(results.MemoryAccesses).To(Equal(4))
			Expect(results.PageHits).To(Equal(3))
			Expect(results.PageFaults).To(Equal(1))
			Expect(results.HitRatio).To(BeNumerically("~", 0.75))
			Expect(results.MissRatio).To(BeNumerically("~", 0.25))
			Expect(results.AllocatedFrames).To(Equal(3))
			Expect(results.TotalFrames).To(Equal(4))
			Expect(results.MemoryUtilization).To(BeNumerically("~", 0.75))
		})

		It("should report zero ratios before any access", func() {
			results, err := engine.Results()

			Expect(err).ToNot(HaveOccurred())
			Expect(results.HitRatio).To(BeZero())
			Expect(results.MissRatio).To(BeZero())
			Expect(results.MemoryUtilization).To(BeZero())
		})

		It("should derive utilization from free ranges in segmentation mode",
			func() {
				engine.Reset()
				cfg.Technique = mem.TechniqueSegmentation

				_, err := engine.Start(cfg)
				Expect(err).ToNot(HaveOccurred())

				_, err = engine.Execute(mem.OperationRequest{
					Operation: mem.OpAllocate,
					Size:      64,
				})
				Expect(err).ToNot(HaveOccurred())

				results, err := engine.Results()

				Expect(err).ToNot(HaveOccurred())
				Expect(results.MemoryUtilization).
					To(BeNumerically("~", 0.25))
			})
	})
})
