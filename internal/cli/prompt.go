package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"boardroom-backend/internal/di"
)

func newPromptCmd(opts *rootOptions) *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the system prompt a provider would receive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.load()
			if err != nil {
				return err
			}
			container, err := di.New(cmd.Context(), cfg, nil)
			if err != nil {
				return err
			}
			defer container.Shutdown(cmd.Context())

			p, ok := container.Responder.Lookup(provider)
			if !ok {
				return fmt.Errorf("unknown provider %q", provider)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), container.MemoryService.SystemPrompt(cmd.Context(), p.Persona()))
			return err
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", "", "Provider: claude, gpt or chatgpt")
	_ = cmd.MarkFlagRequired("provider")
	return cmd
}
