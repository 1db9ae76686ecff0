package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/use-agent/newsgrab/coder"
)

var (
	codePromptFile string
	codeModel      string
)

var codeCmd = &cobra.Command{
	Use:   "code",
	Short: "Code every stored article with an LLM and write result.csv",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.LLM.APIKey == "" {
			return errors.New("no LLM API key: set NEWSGRAB_LLM_API_KEY or GEMINI_KEY")
		}
		if cmd.Flags().Changed("prompt-file") {
			cfg.LLM.PromptFile = codePromptFile
		}
		prompt, err := coder.LoadPrompt(cfg.LLM.PromptFile)
		if err != nil {
			return err
		}
		st, err := newStore(cfg)
		if err != nil {
			return err
		}

		runner := coder.NewRunner(modelFactory(cfg.LLM)(codeModel), prompt)
		rows, usage, err := runner.Run(cmd.Context(), st)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return fmt.Errorf("no articles stored under %s", st.Root)
		}

		path, err := coder.WriteCSVFile(st.Root, rows)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d articles coded (%d tokens) -> %s\n", len(rows), usage.TotalTokens, path)
		return nil
	},
}

func init() {
	codeCmd.Flags().StringVar(&codePromptFile, "prompt-file", "", "file holding the coding prompt (default: built-in prompt)")
	codeCmd.Flags().StringVar(&codeModel, "model", "", "override the configured model")
	rootCmd.AddCommand(codeCmd)
}
