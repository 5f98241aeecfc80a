package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func uploadCMD(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "upload [pdf...]",
		Short: "Index PDFs on the backend",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(opts.cfg, nil, nil)
			if err != nil {
				return err
			}
			if err := selectAndUpload(commandContext(cmd), cmd, s, args); err != nil {
				return err
			}
			printDocuments(cmd.OutOrStdout(), s.Documents())
			return nil
		},
	}
}

func summarizeCMD(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summarize [pdf...]",
		Short: "Index PDFs and summarize them as one corpus",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(opts.cfg, nil, nil)
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			if err := selectAndUpload(ctx, cmd, s, args); err != nil {
				return err
			}
			summary, err := s.Summarize(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), summary)
			return nil
		},
	}
}

// removeCMD deletes files indexed by earlier runs. It talks to the backend
// directly because a fresh session does not know about them.
func removeCMD(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove [file name...]",
		Short: "Delete indexed documents from the backend by file name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, _, err := newBackend(opts.cfg, nil)
			if err != nil {
				return err
			}
			resp, err := backend.Delete(commandContext(cmd), args)
			if err != nil {
				return err
			}
			if resp.Deleted != len(args) {
				return fmt.Errorf("backend deleted %d of %d documents", resp.Deleted, len(args))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d documents\n", resp.Deleted)
			return nil
		},
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
