// Package cli implements the boardroom command line.
package cli

import (
	"github.com/spf13/cobra"

	"boardroom-backend/internal/config"
)

type rootOptions struct {
	configDir string
	env       string
	envFiles  []string
}

// NewRootCmd builds the boardroom command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "boardroom",
		Short:         "Talk to Claude and ChatGPT in one conversation",
		Long:          "Runs the boardroom API and offers one-shot access to the dispatcher, the memory profile and the rendered system prompts.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.configDir, "config-dir", "c", "", "Configuration directory (default: $CONFIG_DIR or ./config)")
	root.PersistentFlags().StringVarP(&opts.env, "env", "e", "", "Environment: development, staging or production (default: $ENVIRONMENT)")
	root.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", []string{".env"}, "Dotenv files to load; variables already set win")

	root.AddCommand(
		newServeCmd(opts),
		newAskCmd(opts),
		newMemoryCmd(opts),
		newSeedMemoryCmd(opts),
		newPromptCmd(opts),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// load reads .env files, then the layered configuration.
func (o *rootOptions) load() (*config.Config, *config.Loader, error) {
	if err := config.LoadDotEnv(o.envFiles...); err != nil {
		return nil, nil, err
	}

	env := config.CurrentEnvironment()
	if o.env != "" {
		parsed, err := config.ParseEnvironment(o.env)
		if err != nil {
			return nil, nil, err
		}
		env = parsed
	}

	dir := o.configDir
	if dir == "" {
		dir = config.ConfigDir()
	}

	loader := config.NewLoader(dir, env)
	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, loader, nil
}
