package cmd

import (
	"context"
	"strings"

	"github.com/SaiNageswarS/heywrite/answer"
	"github.com/SaiNageswarS/heywrite/session"
	"github.com/spf13/cobra"
)

func askCMD(opts *rootOptions, withTemplate bool) *cobra.Command {
	var docs []string

	use, short := "ask [intent]", "Draft a reply for an intent"
	if withTemplate {
		use, short = "template [intent]", "Draft a reply shaped by the standard workplace template"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(opts.cfg, nil, nil)
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)

			if len(docs) > 0 {
				if err := selectAndUpload(ctx, cmd, s, docs); err != nil {
					return err
				}
			}

			intent := strings.Join(args, " ")
			var a answer.Answer
			if withTemplate {
				a, err = s.GenerateWithTemplate(ctx, intent)
			} else {
				a, err = s.Generate(ctx, intent)
			}
			if err != nil {
				return err
			}
			printAnswer(cmd.OutOrStdout(), a)
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&docs, "doc", "d", nil, "PDF to upload and ground the answer in (repeatable)")
	return cmd
}

func selectAndUpload(ctx context.Context, cmd *cobra.Command, s *session.Session, paths []string) error {
	files, err := readFiles(paths)
	if err != nil {
		return err
	}
	res, err := s.Select(files)
	if err != nil {
		return err
	}
	printSelection(cmd.ErrOrStderr(), res)

	uploaded, err := s.Upload(ctx)
	if err != nil {
		return err
	}
	cmd.PrintErrln("Indexed:", uploaded.Summary())
	return nil
}
