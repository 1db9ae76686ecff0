package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/use-agent/newsgrab/models"
)

var captureCmd = &cobra.Command{
	Use:   "capture <url>",
	Short: "Capture one article into the output directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.capturer.Capture(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		sum := models.Summarize(res.Record, res.Dir)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "title: %s\n", sum.Title)
		fmt.Fprintf(out, "date:  %s\n", sum.PublishedDate)
		fmt.Fprintf(out, "dir:   %s\n", sum.Directory)
		if sum.HasImage {
			fmt.Fprintf(out, "photo: %d bytes\n", sum.ImageBytes)
		} else {
			fmt.Fprintln(out, "photo: none")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(captureCmd)
}
