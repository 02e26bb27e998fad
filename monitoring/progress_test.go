package monitoring

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ProgressBar", func() {
	It("should count concurrent updates", func() {
		bar := &ProgressBar{Total: 1000}

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					bar.IncrementFinished(1)
				}
			}()
		}
		wg.Wait()

		Expect(bar.snapshot().Finished).To(Equal(uint64(1000)))
	})

	It("should change the total", func() {
		bar := &ProgressBar{}

		bar.SetTotal(42)

		Expect(bar.snapshot().Total).To(Equal(uint64(42)))
	})
})
