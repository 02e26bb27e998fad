package cmd

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/sarchlab/vmsim/mem/vm"
)

func newTableCmd(table string) (*cobra.Command, *bytes.Buffer) {
	stderr := new(bytes.Buffer)

	c := &cobra.Command{}
	c.Flags().String("table", table, "")
	c.SetErr(stderr)

	return c, stderr
}

func unsetTableKindEnv() {
	old, had := os.LookupEnv(TableKindEnv)
	Expect(os.Unsetenv(TableKindEnv)).To(Succeed())

	DeferCleanup(func() {
		if had {
			os.Setenv(TableKindEnv, old)
		} else {
			os.Unsetenv(TableKindEnv)
		}
	})
}

var _ = Describe("Table kind selection", func() {
	BeforeEach(func() {
		unsetTableKindEnv()
	})

	It("should prefer the flag", func() {
		os.Setenv(TableKindEnv, "invertida")
		c, stderr := newTableCmd("flat")

		Expect(tableKind(c)).To(Equal("flat"))
		Expect(stderr.String()).To(BeEmpty())
	})

	It("should use the environment", func() {
		os.Setenv(TableKindEnv, "invertida")
		c, stderr := newTableCmd("")

		Expect(tableKind(c)).To(Equal("invertida"))
		Expect(stderr.String()).To(BeEmpty())
	})

	It("should warn and use the default", func() {
		c, stderr := newTableCmd("")

		Expect(tableKind(c)).To(Equal(string(vm.DefaultKind)))
		Expect(stderr.String()).To(ContainSubstring(TableKindEnv))
	})
})

var _ = Describe("Commands", func() {
	var (
		dir    string
		stdout *bytes.Buffer
	)

	execute := func(args ...string) error {
		rootCmd.SetArgs(args)
		return rootCmd.Execute()
	}

	BeforeEach(func() {
		unsetTableKindEnv()

		dir = GinkgoT().TempDir()
		stdout = new(bytes.Buffer)
		rootCmd.SetOut(stdout)
		rootCmd.SetErr(new(bytes.Buffer))
	})

	AfterEach(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	It("should generate and simulate a trace", func() {
		path := filepath.Join(dir, "trace.log")

		Expect(execute("generate", "sequential",
			"--count", "2048", "--seed", "1", "-o", path)).To(Succeed())
		Expect(stdout.String()).To(ContainSubstring("Done!"))

		stdout.Reset()
		Expect(execute("run", "fifo", path, "4", "8",
			"--table", "flat")).To(Succeed())

		out := stdout.String()
		Expect(out).To(ContainSubstring("Running the simulator..."))
		Expect(out).To(ContainSubstring("Total memory accesses: 2048"))
		Expect(out).To(ContainSubstring("Total page faults (pages read): 2"))
		Expect(out).To(ContainSubstring("Page table structure: flat"))
	})

	It("should print debug lines", func() {
		path := filepath.Join(dir, "trace.log")
		Expect(os.WriteFile(path, []byte("00001000 R\n00001000 W\n"), 0o600)).
			To(Succeed())

		Expect(execute("run", "lru", path, "4", "8",
			"--table", "inverted", "debug")).To(Succeed())

		Expect(stdout.String()).To(ContainSubstring("Page fault on page 1\n"))
		Expect(stdout.String()).To(ContainSubstring("Hit on page 1 (frame 0)\n"))
	})

	It("should reject unknown algorithms", func() {
		path := filepath.Join(dir, "trace.log")
		Expect(os.WriteFile(path, nil, 0o600)).To(Succeed())

		Expect(execute("run", "mru", path, "4", "8",
			"--table", "flat")).NotTo(Succeed())
	})

	It("should reject sizes that are not numbers", func() {
		Expect(execute("run", "lru", "trace.log", "four", "8",
			"--table", "flat")).NotTo(Succeed())
	})

	It("should fail on missing traces", func() {
		Expect(execute("run", "lru", filepath.Join(dir, "none.log"), "4", "8",
			"--table", "flat")).NotTo(Succeed())
	})

	It("should reject unknown patterns", func() {
		Expect(execute("generate", "zigzag",
			"-o", filepath.Join(dir, "out.log"))).NotTo(Succeed())
	})
})
