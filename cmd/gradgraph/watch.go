package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/born-ml/gradgraph/internal/config"
)

func newWatchCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run a file every time it changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			reg := prometheus.NewRegistry()
			s, err := loadSession(opts.file, cmd.ErrOrStderr(), reg)
			if err != nil {
				return err
			}
			p := newPrinter(out, styled(out, opts.plain))

			return watch(ctx, opts.file, func() {
				p.runAll(s)
				if opts.metrics {
					if err := writeMetrics(out, reg); err != nil {
						s.logger.Error("metrics", "error", err)
					}
				}
			}, func() {
				cfg, err := config.Load(opts.file)
				if err != nil {
					s.logger.Error("reload failed", "error", err)
					return
				}
				rebuilt, err := s.apply(cfg)
				if err != nil {
					s.logger.Error("reload failed", "error", err)
					return
				}
				s.logger.Debug("reloaded", "rebuilt", rebuilt)
				fmt.Fprintln(out)
				p.runAll(s)
			})
		},
	}
	addRunFlags(cmd, opts)
	return cmd
}

func (p *printer) runAll(s *session) {
	for ev := range s.alg.Steps() {
		p.event(ev)
	}
}

// watch calls initial once and then changed after each write to path, until
// ctx is done. The parent directory is watched so that editors replacing the
// file are noticed.
func watch(ctx context.Context, path string, initial, changed func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer closeQuietly(w)

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	initial()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				changed()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch: %w", err)
		}
	}
}

func closeQuietly(c io.Closer) {
	_ = c.Close()
}
