package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/robert-clayton/audiobook/src/configure"
	"github.com/robert-clayton/audiobook/src/errs"
	"github.com/robert-clayton/audiobook/src/global"
	"github.com/robert-clayton/audiobook/src/manager"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	defaultConfig = "config.yml"
	devConfig     = "config_dev.yml"
)

type flags struct {
	config string
	dev    bool
	speed  float64
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if errs.Is(err, errs.ErrInterrupted) {
			color.Yellow("interrupted, progress saved")
			os.Exit(130)
		}
		color.Red("%v", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:           "audiobook",
		Short:         "Scrape web fiction and narrate it into audiobooks",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(f, manager.Options{Scrape: true, Generate: true})
		},
	}
	root.PersistentFlags().StringVarP(&f.config, "config", "c", defaultConfig, "Configuration file path")
	root.PersistentFlags().BoolVar(&f.dev, "dev", false, "Use "+devConfig)
	root.PersistentFlags().Float64Var(&f.speed, "speed", 0, "Playback speed, overrides the configured speed")

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Scrape new chapters then generate their audio",
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(f, manager.Options{Scrape: true, Generate: true})
			},
		},
		&cobra.Command{
			Use:   "scrape",
			Short: "Only scrape new chapters",
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(f, manager.Options{Scrape: true})
			},
		},
		&cobra.Command{
			Use:   "generate",
			Short: "Only generate audio for chapters on disk",
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(f, manager.Options{Generate: true})
			},
		},
		&cobra.Command{
			Use:   "clean",
			Short: "Remove chunk intermediates from the tmp dir",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := load(f)
				if err != nil {
					return err
				}
				return clean(cfg.Settings.TmpDir)
			},
		},
	)

	return root
}

func load(f *flags) (*configure.Config, error) {
	path := f.config
	if f.dev {
		path = devConfig
	}
	cfg, err := configure.Load(path)
	if err != nil {
		return nil, err
	}
	configure.InitLog(cfg.Settings)
	return cfg, nil
}

func run(f *flags, opts manager.Options) error {
	cfg, err := load(f)
	if err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := global.WithCancel(global.NewCtx(sigCtx, cfg))
	defer cancel()
	defer func() {
		if r := ctx.Inst().Redis; r != nil {
			_ = r.Close()
		}
	}()

	bars := newProgress(os.Stderr)
	defer bars.finish()

	opts.Speed = f.speed
	opts.Progress = bars.update

	color.New(color.FgMagenta, color.Bold).Printf("audiobook: %d series configured\n", len(cfg.Series))
	sum, err := manager.Run(ctx, opts)
	bars.finish()

	if opts.Scrape {
		if sum.NewChapters == 0 {
			color.Yellow("No new chapters")
		} else {
			color.Green("%d new chapters", sum.NewChapters)
		}
	}
	if opts.Generate {
		if sum.Generated == 0 {
			color.Yellow("No new audio")
		} else {
			color.Green("%d chapters narrated", sum.Generated)
		}
		if sum.Failed > 0 {
			color.Red("%d chapters failed, see the log", sum.Failed)
		}
	}
	return err
}

func clean(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	logrus.WithField("dir", dir).Infof("removed %d entries", len(entries))
	return nil
}
