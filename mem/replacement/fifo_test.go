package replacement

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/memsim/mem"
)

var _ = Describe("FIFO Policy", func() {
	var policy Policy

	BeforeEach(func() {
		policy = NewPolicy(mem.AlgorithmFIFO)
	})

	It("should evict in admission order", func() {
		policy.OnAdmit(0)
		policy.OnAdmit(1)
		policy.OnAdmit(2)

		Expect(policy.SelectVictim()).To(Equal(0))

		policy.OnEvict(0)
		Expect(policy.SelectVictim()).To(Equal(1))

		policy.OnEvict(1)
		Expect(policy.SelectVictim()).To(Equal(2))
	})

	It("should ignore accesses", func() {
		policy.OnAdmit(3)
		policy.OnAdmit(1)
		policy.OnAdmit(2)

		policy.OnAccess(1)
		policy.OnAccess(2)
		policy.OnAccess(1)

		Expect(policy.SelectVictim()).To(Equal(3))
	})

	It("should track size across admits and evicts", func() {
		Expect(policy.Size()).To(Equal(0))

		policy.OnAdmit(3)
		policy.OnAdmit(1)
		Expect(policy.Size()).To(Equal(2))

		policy.OnEvict(3)
		Expect(policy.Size()).To(Equal(1))
	})

	It("should allow evicting from the middle of the order", func() {
		policy.OnAdmit(0)
		policy.OnAdmit(1)
		policy.OnAdmit(2)

		policy.OnEvict(1)

		Expect(policy.SelectVictim()).To(Equal(0))
		policy.OnEvict(0)
		Expect(policy.SelectVictim()).To(Equal(2))
	})

	It("should panic when selecting a victim from an empty order", func() {
		Expect(func() {
			policy.SelectVictim()
		}).To(Panic())
	})

	It("should panic when admitting the same frame twice", func() {
		policy.OnAdmit(0)

		Expect(func() {
			policy.OnAdmit(0)
		}).To(Panic())
	})

	It("should panic when evicting an untracked frame", func() {
		Expect(func() {
			policy.OnEvict(7)
		}).To(Panic())
	})
})

var _ = Describe("NewPolicy", func() {
	It("should panic on an unknown algorithm", func() {
		Expect(func() {
			NewPolicy(mem.Algorithm("OPT"))
		}).To(Panic())
	})
})
