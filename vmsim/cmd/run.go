package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/simulation"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// TableKindEnv is the environment variable that selects the page table when
// --table is not given.
const TableKindEnv = "PAGE_TABLE_TYPE"

var runCmd = &cobra.Command{
	Use:   "run <algorithm> <trace> <page_kb> <memory_kb> [debug]",
	Short: "Simulate a trace.",
	Long: "Replays the trace with the replacement algorithm (lru, lfu, fifo, " +
		"random). The page table is selected with --table or the " +
		TableKindEnv + " environment variable. A trailing `debug` prints " +
		"every hit, fault and replacement.",
	Args: cobra.RangeArgs(4, 5),
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := configFromArgs(cmd, args)
		if err != nil {
			return err
		}

		return runSimulation(cmd, config, args[1])
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("table", "",
		"Page table structure: flat, multilevel-2, multilevel-3, inverted")
	runCmd.Flags().Int64("seed", 0,
		"Seed of the random replacement algorithm (default: current time)")
	runCmd.Flags().String("record", "",
		"Record the run into the given SQLite file (without extension)")
	runCmd.Flags().Bool("monitor", false, "Serve the progress over HTTP")
	runCmd.Flags().Int("monitor-port", 0,
		"Port of the monitoring server (default: random)")
	runCmd.Flags().Bool("open-browser", false,
		"Open the monitoring page in a browser")
}

func configFromArgs(cmd *cobra.Command, args []string) (simulation.Config, error) {
	pageSizeKB, err := strconv.Atoi(args[2])
	if err != nil {
		return simulation.Config{}, fmt.Errorf("invalid page size %q", args[2])
	}

	memorySizeKB, err := strconv.Atoi(args[3])
	if err != nil {
		return simulation.Config{}, fmt.Errorf("invalid memory size %q", args[3])
	}

	flags := cmd.Flags()
	config := simulation.Config{
		Algorithm:    args[0],
		TableKind:    tableKind(cmd),
		PageSizeKB:   pageSizeKB,
		MemorySizeKB: memorySizeKB,
		Seed:         time.Now().UnixNano(),
		Debug:        len(args) == 5 && args[4] == "debug",
	}

	if flags.Changed("seed") {
		config.Seed, _ = flags.GetInt64("seed")
	}

	config.RecordPath, _ = flags.GetString("record")
	config.Monitor, _ = flags.GetBool("monitor")
	config.MonitorPort, _ = flags.GetInt("monitor-port")
	config.OpenBrowser, _ = flags.GetBool("open-browser")

	return config, nil
}

// tableKind picks the page table from the flag, then the environment, then
// the default.
func tableKind(cmd *cobra.Command) string {
	if kind, _ := cmd.Flags().GetString("table"); kind != "" {
		return kind
	}

	if kind, ok := os.LookupEnv(TableKindEnv); ok && kind != "" {
		return kind
	}

	fmt.Fprintf(cmd.ErrOrStderr(),
		"Warning: %s is not set. Using '%s' by default.\n",
		TableKindEnv, vm.DefaultKind)

	return string(vm.DefaultKind)
}

func runSimulation(
	cmd *cobra.Command,
	config simulation.Config,
	tracePath string,
) error {
	s, err := simulation.MakeBuilder().
		WithConfig(config).
		WithDebugOutput(cmd.OutOrStdout()).
		Build()
	if err != nil {
		return err
	}

	atexit.Register(s.Terminate)

	fmt.Fprintln(cmd.OutOrStdout(), "Running the simulator...")

	err = s.RunFile(tracePath)
	if err != nil {
		s.Terminate()
		return err
	}

	s.Terminate()

	_, err = s.Report().WriteTo(cmd.OutOrStdout())

	return err
}
