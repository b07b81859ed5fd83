package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nhle/toastcenter/internal/app"
	"github.com/nhle/toastcenter/internal/capture"
	"github.com/nhle/toastcenter/internal/credential"
	"github.com/nhle/toastcenter/internal/iconcache"
	"github.com/nhle/toastcenter/internal/listener/mail"
	"github.com/nhle/toastcenter/internal/listener/replay"
	"github.com/nhle/toastcenter/internal/model"
	"github.com/nhle/toastcenter/internal/priority"
	appsync "github.com/nhle/toastcenter/internal/sync"
)

// runOptions selects the listener feeding the pipeline.
type runOptions struct {
	replayPath string
	iconDir    string
	useMail    bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the notification center and capture while it runs",
	Long: `Open the notification center and capture while it runs.

Notifications come from a replay file (--replay, "-" for stdin) or, when
mail.enabled is set in the config, from the configured IMAP mailbox.
Without a listener the stored notifications are browsed read-only.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, readRunOptions(cmd))
	},
}

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture notifications without the UI",
	Long: `Capture notifications without the UI, printing each one as it is stored.

Examples:
  toastcenter capture --replay testdata/session.jsonl --icons testdata/icons
  tail -f events.jsonl | toastcenter capture --replay -
  toastcenter capture --mail`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCapture(cmd, readRunOptions(cmd))
	},
}

func init() {
	for _, c := range []*cobra.Command{runCmd, captureCmd} {
		c.Flags().String("replay", "", `JSON-lines file of notification events ("-" for stdin)`)
		c.Flags().String("icons", "", "directory of app icons for replayed notifications")
		c.Flags().Bool("mail", false, "watch the configured IMAP mailbox")
	}
}

func readRunOptions(cmd *cobra.Command) runOptions {
	replayPath, _ := cmd.Flags().GetString("replay")
	iconDir, _ := cmd.Flags().GetString("icons")
	useMail, _ := cmd.Flags().GetBool("mail")
	return runOptions{replayPath: replayPath, iconDir: iconDir, useMail: useMail}
}

// openListener builds the listener selected by opts. It returns a nil
// listener when none is configured.
func openListener(cfg *model.AppConfig, opts runOptions, stdin io.Reader, logger *slog.Logger) (capture.Listener, capture.IconSource, io.Closer, error) {
	switch {
	case opts.replayPath != "":
		var (
			r      io.Reader = stdin
			closer io.Closer = io.NopCloser(stdin)
		)
		if opts.replayPath != "-" {
			f, err := os.Open(opts.replayPath)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("opening replay file: %w", err)
			}
			r, closer = f, f
		}
		l := replay.New(r, replay.Options{Buffer: cfg.Capture.Buffer, Logger: logger})
		var icons capture.IconSource
		if opts.iconDir != "" {
			icons = replay.IconDir{Dir: opts.iconDir}
		}
		return l, icons, multiCloser{l, closer}, nil

	case opts.useMail || cfg.Mail.Enabled:
		vault, err := credential.Open()
		if err != nil {
			return nil, nil, nil, err
		}
		w, err := mail.Open(mailConfig(cfg.Mail), vault, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		return w, nil, w, nil
	}
	return nil, nil, nil, nil
}

func mailConfig(c model.MailConfig) mail.Config {
	return mail.Config{
		Host:         c.Host,
		Port:         c.Port,
		Username:     c.Username,
		TLS:          c.TLS,
		Mailbox:      c.Mailbox,
		PollInterval: time.Duration(c.PollIntervalSec) * time.Second,
	}
}

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var errs []error
	for _, c := range m {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func newPipeline(e *env, l capture.Listener, icons capture.IconSource) *capture.Pipeline {
	opts := capture.Options{
		Store:       e.store,
		Listener:    l,
		UserID:      e.cfg.User.ID,
		DND:         priority.NewDND(e.cfg.DND.Enabled, e.cfg.DND.Threshold),
		MaxInFlight: e.cfg.Capture.MaxInFlight,
		Buffer:      e.cfg.Capture.Buffer,
		Logger:      e.logger,
	}
	if icons != nil {
		opts.Icons = icons
		opts.Cache = iconcache.New(e.cfg.Icons.CacheDir, e.cfg.Icons.Size)
	}
	return capture.New(opts)
}

func runTUI(cmd *cobra.Command, opts runOptions) error {
	if opts.replayPath == "-" {
		return fmt.Errorf("the UI cannot replay from stdin; use capture instead")
	}

	logFile, err := openLogFile(cfg.Storage.DataDir)
	if err != nil {
		return err
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e, err := openEnv(ctx, cfg, logFile)
	if err != nil {
		return err
	}
	defer e.Close()

	l, icons, closer, err := openListener(cfg, opts, cmd.InOrStdin(), e.logger)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	var (
		pipeline *capture.Pipeline
		feed     *appsync.Feed
	)
	if l != nil {
		pipeline = newPipeline(e, l, icons)
		feed = appsync.ForPipeline(pipeline)
	}

	root := app.New(e.svc, feed, app.Options{
		GroupBy:      cfg.Display.GroupBy,
		SaveDND:      saveDND,
		Config:       *cfg,
		SaveSettings: saveSettings,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	prog := tea.NewProgram(root, tea.WithAltScreen(), tea.WithContext(ctx))

	g, gctx := errgroup.WithContext(ctx)
	if pipeline != nil {
		g.Go(func() error {
			err := pipeline.Run(gctx)
			if err != nil {
				e.logger.Warn("capture ended", "error", err)
			}
			// The UI reports the outcome; capture ending is not fatal.
			prog.Send(feed.MarkStopped(err))
			return nil
		})
	}
	g.Go(func() error {
		defer cancel()
		_, err := prog.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})
	return g.Wait()
}

// cfgMu guards cfg while the UI saves from its command goroutines.
var cfgMu sync.Mutex

func saveDND(d priority.DND) error {
	cfgMu.Lock()
	defer cfgMu.Unlock()
	cfg.DND.Enabled = d.Enabled
	cfg.DND.Threshold = string(d.Threshold)
	return model.SaveConfig(configPath, cfg)
}

// saveSettings writes the settings screen back to the config file and, when
// a new password was typed, to the keyring.
func saveSettings(c model.AppConfig, password string) error {
	if password != "" {
		vault, err := credential.Open()
		if err != nil {
			return err
		}
		if err := vault.Set(credential.MailKey(c.Mail.Username), password); err != nil {
			return fmt.Errorf("storing mail password: %w", err)
		}
	}
	cfgMu.Lock()
	defer cfgMu.Unlock()
	*cfg = c
	return model.SaveConfig(configPath, cfg)
}

func runCapture(cmd *cobra.Command, opts runOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e, err := openEnv(ctx, cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()

	l, icons, closer, err := openListener(cfg, opts, cmd.InOrStdin(), e.logger)
	if err != nil {
		return err
	}
	if l == nil {
		return fmt.Errorf("no listener: pass --replay or --mail, or enable mail in %s", configPath)
	}
	defer closer.Close()

	pipeline := newPipeline(e, l, icons)
	out := cmd.OutOrStdout()
	done := make(chan struct{})

	var g errgroup.Group
	g.Go(func() error {
		defer close(done)
		return pipeline.Run(ctx)
	})
	g.Go(func() error {
		for {
			select {
			case c := <-pipeline.Captures():
				printCaptured(out, c)
			case <-done:
				for {
					select {
					case c := <-pipeline.Captures():
						printCaptured(out, c)
					default:
						return nil
					}
				}
			}
		}
	})

	printStep("capturing as %s", cfg.User.ID)
	if err := g.Wait(); err != nil {
		return err
	}
	printSuccess("capture finished")
	return nil
}

func printCaptured(w io.Writer, c capture.Captured) {
	marker := " "
	if c.Alert {
		marker = colorize(colorYellow, "!")
	}
	n := c.Notification
	fmt.Fprintf(w, "%s %s  %-8s %s: %s\n",
		marker,
		n.CreatedTime.Local().Format(time.DateTime),
		c.Priority.Label(),
		c.Package.Name(),
		n.NotificationTitle,
	)
}
