package replacement

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/memsim/mem"
)

var _ = Describe("LRU Policy", func() {
	var policy Policy

	BeforeEach(func() {
		policy = NewPolicy(mem.AlgorithmLRU)
	})

	It("should evict in admission order when nothing is accessed", func() {
		policy.OnAdmit(0)
		policy.OnAdmit(1)
		policy.OnAdmit(2)

		Expect(policy.SelectVictim()).To(Equal(0))
	})

	It("should move an accessed frame to the back of the order", func() {
		policy.OnAdmit(1)
		policy.OnAdmit(2)
		policy.OnAdmit(3)

		policy.OnAccess(1)

		Expect(policy.SelectVictim()).To(Equal(2))
	})

	It("should evict the first admitted frame after a later hit", func() {
		policy.OnAdmit(3)
		policy.OnAdmit(1)
		policy.OnAdmit(2)

		policy.OnAccess(3)

		Expect(policy.SelectVictim()).To(Equal(1))
	})

	It("should follow the full access history", func() {
		policy.OnAdmit(0)
		policy.OnAdmit(1)
		policy.OnAdmit(2)

		policy.OnAccess(0)
		policy.OnAccess(1)
		policy.OnAccess(2)
		policy.OnAccess(0)

		Expect(policy.SelectVictim()).To(Equal(1))

		policy.OnEvict(1)
		Expect(policy.SelectVictim()).To(Equal(2))
	})

	It("should panic when accessing an untracked frame", func() {
		Expect(func() {
			policy.OnAccess(5)
		}).To(Panic())
	})
})
