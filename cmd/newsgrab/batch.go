package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/use-agent/newsgrab/batch"
)

var batchCmd = &cobra.Command{
	Use:   "batch <url-file>",
	Short: "Capture every URL listed in a file, one per line",
	Long: `Capture every URL listed in a file, one per line. Blank lines and lines
starting with # are ignored. URLs are captured one after another; a failed
URL is reported and the batch moves on. The command fails only when no URL
could be captured.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		urls, err := batch.ReadURLList(f)
		f.Close()
		if err != nil {
			return err
		}
		if len(urls) == 0 {
			return fmt.Errorf("%s lists no URLs", args[0])
		}

		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		runner := batch.NewRunner(a.capturer, cfg.Capture.SessionGap)
		results := runner.Run(cmd.Context(), urls, func(i int, r *batch.Result) {
			switch {
			case !r.OK():
				fmt.Fprintf(out, "[%d/%d] FAIL %s: %v\n", i+1, len(urls), r.URL, r.Err)
			case r.HasImage:
				fmt.Fprintf(out, "[%d/%d] ok   %s -> %s (photo)\n", i+1, len(urls), r.URL, r.Dir)
			default:
				fmt.Fprintf(out, "[%d/%d] ok   %s -> %s\n", i+1, len(urls), r.URL, r.Dir)
			}
		})

		s := batch.Summarize(results)
		fmt.Fprintf(out, "%d captured (%d with photo), %d failed, %d total\n", s.Succeeded, s.WithImage, s.Failed, s.Total)
		if s.AllFailed() {
			return errors.New("no URL could be captured")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)
}
