package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/heywrite/corpus"
	"github.com/SaiNageswarS/heywrite/gateway"
	"github.com/SaiNageswarS/heywrite/lifecycle"
	"github.com/SaiNageswarS/heywrite/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const chatHelp = `Type an intent to draft a reply. Commands:
  /template <intent>   draft with the workplace template
  /undo                show the previous reply again
  /reset               clear the conversation
  /add <pdf...>        select PDFs for upload
  /upload              index the selected PDFs
  /remove <n|name>     remove a document
  /clear-docs          remove every document
  /summarize           summarize the indexed documents
  /docs                list documents
  /sources             show citations for the current reply
  /tone [tone]         show or set the tone
  /lang [language]     show or set the language
  /history             show the conversation
  /quit                leave`

func chatCMD(opts *rootOptions) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive drafting session with document grounding",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			if metricsAddr == "" {
				metricsAddr = opts.cfg.Metrics.Addr
			}

			var reg prometheus.Registerer
			if metricsAddr != "" {
				registry := prometheus.NewRegistry()
				defer serveMetrics(metricsAddr, registry)()
				reg = registry
			}

			out := cmd.OutOrStdout()
			reporter := session.ReporterFunc(func(e *session.Event) error {
				if e.Stage == session.StageStarted {
					_, err := fmt.Fprintf(out, "... %s\n", e.Op)
					return err
				}
				return nil
			})

			s, err := newSession(opts.cfg, reg, reporter)
			if err != nil {
				return err
			}

			return runChat(ctx, s, cmd.InOrStdin(), out)
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	return cmd
}

func serveMetrics(addr string, reg *prometheus.Registry) (stop func()) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server stopped", zap.String("addr", addr), zap.Error(err))
		}
	}()
	logger.Info("Serving metrics", zap.String("addr", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func runChat(ctx context.Context, s *session.Session, in io.Reader, out io.Writer) error {
	snap := s.Snapshot()
	fmt.Fprintf(out, "heywrite session %s (%s, %s). /help for commands.\n", snap.ID, snap.Tone, snap.Language)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if quit := handleChatLine(ctx, s, line, out); quit {
			return nil
		}
	}
}

// handleChatLine runs one line of input and reports whether to leave.
// Errors are printed, never returned; the session stays usable after them.
func handleChatLine(ctx context.Context, s *session.Session, line string, out io.Writer) bool {
	if !strings.HasPrefix(line, "/") {
		a, err := s.Generate(ctx, line)
		if err != nil {
			printError(out, err)
			return false
		}
		printAnswer(out, a)
		return false
	}

	command, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	var err error
	switch command {
	case "/quit", "/exit":
		return true

	case "/help":
		fmt.Fprintln(out, chatHelp)

	case "/template":
		a, genErr := s.GenerateWithTemplate(ctx, rest)
		if err = genErr; err == nil {
			printAnswer(out, a)
		}

	case "/undo":
		text, ok, undoErr := s.Undo()
		switch {
		case undoErr != nil:
			err = undoErr
		case !ok:
			fmt.Fprintln(out, "Nothing to undo.")
		default:
			fmt.Fprintln(out, text)
		}

	case "/reset":
		if err = s.Reset(); err == nil {
			fmt.Fprintln(out, "Conversation cleared.")
		}

	case "/add":
		var files []gateway.File
		if files, err = readFiles(strings.Fields(rest)); err == nil {
			var res corpus.SelectResult
			if res, err = s.Select(files); err == nil {
				printSelection(out, res)
			}
		}

	case "/upload":
		var res *corpus.UploadResult
		if res, err = s.Upload(ctx); err == nil {
			fmt.Fprintln(out, "Indexed:", res.Summary())
			if len(res.Returned) > 0 {
				fmt.Fprintln(out, "Not confirmed, still selected:", strings.Join(res.Returned, ", "))
			}
		}

	case "/remove":
		var doc corpus.Document
		if doc, err = removeDocument(ctx, s, rest); err == nil {
			fmt.Fprintf(out, "Removed %s\n", doc.Name)
		}

	case "/clear-docs":
		var removed []corpus.Document
		if removed, err = s.RemoveAll(ctx); err == nil {
			fmt.Fprintf(out, "Removed %d documents\n", len(removed))
		}

	case "/summarize":
		var summary string
		if summary, err = s.Summarize(ctx); err == nil {
			fmt.Fprintln(out, summary)
		}

	case "/docs":
		printDocuments(out, s.Documents())

	case "/sources":
		sources := s.Answer().Sources
		if len(sources) == 0 {
			fmt.Fprintln(out, "No sources for the current reply.")
		}
		for _, c := range sources {
			fmt.Fprintln(out, c.Label())
		}

	case "/tone":
		if rest == "" {
			fmt.Fprintf(out, "Tone: %s (choices: %s)\n", s.Snapshot().Tone, joinTones())
		} else if err = s.SetTone(rest); err == nil {
			fmt.Fprintf(out, "Tone: %s\n", s.Snapshot().Tone)
		}

	case "/lang":
		if rest == "" {
			fmt.Fprintf(out, "Language: %s (choices: %s)\n", s.Snapshot().Language, joinLanguages())
		} else if err = s.SetLanguage(rest); err == nil {
			fmt.Fprintf(out, "Language: %s\n", s.Snapshot().Language)
		}

	case "/history":
		for _, m := range s.History() {
			fmt.Fprintf(out, "%s: %s\n", m.Role, m.Content)
		}

	default:
		fmt.Fprintf(out, "Unknown command %s. /help lists commands.\n", command)
	}

	if err != nil {
		printError(out, err)
	}
	return false
}

// removeDocument accepts a 1-based position from /docs or a file name.
func removeDocument(ctx context.Context, s *session.Session, ref string) (corpus.Document, error) {
	if ref == "" {
		return corpus.Document{}, fmt.Errorf("%w: which document? see /docs", gateway.ErrValidation)
	}
	if n, err := strconv.Atoi(ref); err == nil {
		docs := s.Documents()
		if n < 1 || n > len(docs) {
			return corpus.Document{}, fmt.Errorf("%w: no document %d", corpus.ErrUnknownDocument, n)
		}
		return s.Remove(ctx, docs[n-1].ID)
	}
	doc, ok := s.DocumentByName(ref)
	if !ok {
		return corpus.Document{}, fmt.Errorf("%w: %s", corpus.ErrUnknownDocument, ref)
	}
	return s.Remove(ctx, doc.ID)
}

func printError(out io.Writer, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrBusy):
		fmt.Fprintln(out, "Busy, try again when the current request finishes.")
	default:
		fmt.Fprintln(out, "Error:", err)
	}
}

func joinTones() string {
	names := make([]string, 0, len(gateway.Tones()))
	for _, t := range gateway.Tones() {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}

func joinLanguages() string {
	names := make([]string, 0, len(gateway.Languages()))
	for _, l := range gateway.Languages() {
		names = append(names, string(l))
	}
	return strings.Join(names, ", ")
}
