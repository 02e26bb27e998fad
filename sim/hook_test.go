package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("HookableBase", func() {
	var (
		base *HookableBase
		pos  = &HookPos{Name: "Test"}
	)

	BeforeEach(func() {
		base = NewHookableBase()
	})

	It("should register hooks", func() {
		base.AcceptHook(HookFunc(func(HookCtx) {}))
		base.AcceptHook(HookFunc(func(HookCtx) {}))

		Expect(base.NumHooks()).To(Equal(2))
	})

	It("should invoke hooks in registration order", func() {
		var order []int
		base.AcceptHook(HookFunc(func(ctx HookCtx) {
			Expect(ctx.Pos).To(BeIdenticalTo(pos))
			order = append(order, 1)
		}))
		base.AcceptHook(HookFunc(func(ctx HookCtx) {
			order = append(order, 2)
		}))

		base.InvokeHook(HookCtx{Pos: pos, Item: 42})

		Expect(order).To(Equal([]int{1, 2}))
	})

	It("should do nothing without hooks", func() {
		Expect(func() { base.InvokeHook(HookCtx{Pos: pos}) }).NotTo(Panic())
	})
})
