package cmd

import (
	"fmt"
	"time"

	"github.com/sarchlab/vmsim/mem/trace"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate <pattern>",
	Short: "Generate a synthetic trace.",
	Long: "Writes a trace following one of the patterns: sequential (1), " +
		"random (2), temporal (3) or spatial (4). Files ending in .lz4, .sz " +
		"or .snappy are compressed.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pattern, err := trace.ParsePattern(args[0])
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		count, _ := flags.GetInt("count")
		output, _ := flags.GetString("output")
		seed := time.Now().UnixNano()
		if flags.Changed("seed") {
			seed, _ = flags.GetInt64("seed")
		}

		if count <= 0 {
			return fmt.Errorf("invalid number of accesses %d", count)
		}

		if output == "" {
			output = trace.DefaultFileName(pattern)
		}

		return generateTrace(cmd, pattern, count, seed, output)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().Int("count", trace.DefaultNumAccesses,
		"Number of accesses to generate")
	generateCmd.Flags().Int64("seed", 0,
		"Seed of the generator (default: current time)")
	generateCmd.Flags().StringP("output", "o", "",
		"Output file (default: <pattern>_log.log)")
}

func generateTrace(
	cmd *cobra.Command,
	pattern trace.Pattern,
	count int,
	seed int64,
	output string,
) (err error) {
	w, err := trace.Create(output)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := w.Close(); err == nil {
			err = closeErr
		}
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Generating %s pattern in '%s'...\n",
		pattern, output)

	err = trace.NewGenerator(seed).Generate(w, pattern, count)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Done!")

	return nil
}
