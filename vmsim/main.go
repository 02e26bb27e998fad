// Command vmsim simulates virtual memory address translation and page
// replacement over memory access traces.
package main

import (
	"github.com/sarchlab/vmsim/vmsim/cmd"
	"github.com/tebeka/atexit"
)

func main() {
	cmd.Execute()
	atexit.Exit(0)
}
