package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/use-agent/newsgrab/capture"
	"github.com/use-agent/newsgrab/extract"
	"github.com/use-agent/newsgrab/scraper"
)

var probeCmd = &cobra.Command{
	Use:   "probe <url>",
	Short: "Fetch a page without a browser to check that the cookie still works",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cookieHeader, err := capture.ReadCookieFile(cfg.Input.CookieFile)
		if err != nil {
			return fmt.Errorf("read cookie file: %w", err)
		}

		sel := extract.Selectors{Title: cfg.Capture.TitleSelector, Date: cfg.Capture.DateSelector}
		p := scraper.NewProber(cfg.Browser.Proxy, cfg.Browser.UserAgent)
		res, err := p.Probe(cmd.Context(), args[0], cookieHeader, cfg.Capture.ContentSelector, sel)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "status:     %d\n", res.StatusCode)
		fmt.Fprintf(out, "final url:  %s\n", res.FinalURL)
		fmt.Fprintf(out, "page title: %s\n", res.PageTitle)
		if res.ContainerFound {
			fmt.Fprintf(out, "container:  found (title %q, date %q)\n", res.Story.Title, res.Story.Date)
		} else {
			fmt.Fprintln(out, "container:  missing (cookie expired or page needs a browser)")
		}
		if res.NeedsBrowser {
			fmt.Fprintln(out, "rendering:  page looks script-rendered")
		}
		if res.Excerpt != "" {
			fmt.Fprintf(out, "excerpt:    %s\n", res.Excerpt)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
}
