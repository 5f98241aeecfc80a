package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/heywrite/corpus"
	"github.com/SaiNageswarS/heywrite/session"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// folderEvent is a settled change to one PDF in the watched folder.
type folderEvent struct {
	path    string
	removed bool
}

func watchCMD(opts *rootOptions) *cobra.Command {
	var settle time.Duration
	var skipExisting bool

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Keep the indexed corpus in sync with the PDFs in a folder",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := newSession(opts.cfg, nil, nil)
			if err != nil {
				return err
			}

			events, closeWatcher, err := watchPDFs(ctx, dir)
			if err != nil {
				return err
			}
			defer closeWatcher()

			var initial []string
			if !skipExisting {
				if initial, err = filepath.Glob(filepath.Join(dir, "*.pdf")); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for PDFs (Ctrl+C to stop)\n", dir)
			return syncFolder(ctx, s, events, initial, settle, cmd.OutOrStdout())
		},
	}
	cmd.Flags().DurationVar(&settle, "settle", 2*time.Second, "wait this long after the last change before uploading")
	cmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "only react to PDFs that change after startup")
	return cmd
}

// watchPDFs reports create, write, rename and remove events for *.pdf
// files directly inside dir.
func watchPDFs(ctx context.Context, dir string) (<-chan folderEvent, func() error, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, nil, fmt.Errorf("error watching %s: %w", dir, err)
	}

	events := make(chan folderEvent, 100)
	go func() {
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if !strings.EqualFold(filepath.Ext(event.Name), ".pdf") {
					continue
				}

				var fe folderEvent
				switch {
				case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
					fe = folderEvent{path: event.Name}
				case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
					fe = folderEvent{path: event.Name, removed: true}
				default:
					continue
				}

				select {
				case events <- fe:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("Folder watcher error", zap.String("dir", dir), zap.Error(err))
			}
		}
	}()

	return events, w.Close, nil
}

// syncFolder debounces folder events and applies them to the session once
// the folder has been quiet for settle. Files in initial are treated as
// freshly created.
func syncFolder(ctx context.Context, s *session.Session, events <-chan folderEvent, initial []string, settle time.Duration, out io.Writer) error {
	pending := make(map[string]bool)
	for _, p := range initial {
		pending[p] = false
	}

	timer := time.NewTimer(settle)
	if len(pending) == 0 {
		timer.Stop()
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case fe, ok := <-events:
			if !ok {
				if len(pending) > 0 {
					applyFolderChanges(ctx, s, pending, out)
				}
				return nil
			}
			pending[fe.path] = fe.removed
			timer.Reset(settle)
		case <-timer.C:
			applyFolderChanges(ctx, s, pending, out)
			clear(pending)
		}
	}
}

// applyFolderChanges removes deleted files first so their slots are free for
// the new batch. Failures are printed and the watcher keeps going.
func applyFolderChanges(ctx context.Context, s *session.Session, pending map[string]bool, out io.Writer) {
	var added []string
	for p, removed := range pending {
		if !removed {
			added = append(added, p)
			continue
		}
		doc, ok := s.DocumentByName(filepath.Base(p))
		if !ok {
			continue
		}
		if _, err := s.Remove(ctx, doc.ID); err != nil {
			fmt.Fprintf(out, "Could not remove %s: %v\n", doc.Name, err)
			continue
		}
		fmt.Fprintf(out, "Removed %s\n", doc.Name)
	}
	if len(added) == 0 {
		return
	}
	sort.Strings(added)

	files, err := readFiles(added)
	if err != nil {
		fmt.Fprintln(out, "Error:", err)
		return
	}
	// refreshed contents of an already indexed file are re-uploaded
	for _, f := range files {
		if doc, ok := s.DocumentByName(f.Name); ok && doc.State == corpus.Indexed {
			if _, err := s.Remove(ctx, doc.ID); err != nil {
				fmt.Fprintf(out, "Could not replace %s: %v\n", f.Name, err)
			}
		}
	}

	res, err := s.Select(files)
	if err != nil {
		fmt.Fprintln(out, "Error:", err)
		return
	}
	printSelection(out, res)

	uploaded, err := s.Upload(ctx)
	switch {
	case errors.Is(err, corpus.ErrNoDocuments):
	case err != nil:
		fmt.Fprintln(out, "Upload failed:", err)
	default:
		fmt.Fprintln(out, "Indexed:", uploaded.Summary())
	}
}
