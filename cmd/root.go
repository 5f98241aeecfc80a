// Package cmd is the command line front end. Every command drives a
// session.Session; none of them keep state of their own.
package cmd

import (
	"fmt"

	"github.com/SaiNageswarS/heywrite/config"
	"github.com/SaiNageswarS/heywrite/logging"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	tone       string
	language   string
	logLevel   string

	cfg *config.AppConfig
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "heywrite",
		Short:         "Draft workplace writing, optionally grounded in your PDFs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(opts.configPath)
			if err != nil {
				return err
			}
			if opts.tone != "" {
				cfg.Defaults.Tone = opts.tone
			}
			if opts.language != "" {
				cfg.Defaults.Language = opts.language
			}
			if opts.logLevel != "" {
				cfg.Log.Level = opts.logLevel
			}
			if err := logging.Init(logging.Options{
				Level: cfg.Log.Level,
				File:  cfg.Log.File,
				JSON:  cfg.Log.JSON,
			}); err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logging.Sync()
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default is ./config.toml)")
	root.PersistentFlags().StringVarP(&opts.tone, "tone", "t", "", "writing tone, e.g. Formal or \"Polite Push\"")
	root.PersistentFlags().StringVarP(&opts.language, "lang", "l", "", "output language: English, Danish or Chinese")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(
		askCMD(opts, false),
		askCMD(opts, true),
		uploadCMD(opts),
		summarizeCMD(opts),
		removeCMD(opts),
		chatCMD(opts),
		watchCMD(opts),
	)
	return root
}

// Execute runs the root command and prints any error once.
func Execute() error {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}
