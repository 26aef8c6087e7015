package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/spf13/pflag"

	"github.com/discordtext/backend/internal/cli"
	"github.com/discordtext/backend/internal/clipboard"
	"github.com/discordtext/backend/internal/config"
	"github.com/discordtext/backend/internal/controller"
	"github.com/discordtext/backend/internal/message"
)

type generateOptions struct {
	URL    string
	APIKey string
	Style  string
	Copy   bool
	Save   bool
	Plain  bool
}

func parseGenerateFlags(args []string) (generateOptions, error) {
	var opts generateOptions
	flags := pflag.NewFlagSet("generate", pflag.ContinueOnError)
	flags.StringVarP(&opts.URL, "url", "u", "", "YouTube video URL")
	flags.StringVarP(&opts.APIKey, "api-key", "k", "", "YouTube Data API key (defaults to the last key used)")
	flags.StringVarP(&opts.Style, "style", "s", string(message.DefaultStyle), "message style: blue, red, green or yellow")
	flags.BoolVar(&opts.Copy, "copy", false, "copy the message to the clipboard")
	flags.BoolVar(&opts.Save, "save", false, "save the thumbnail on the server")
	flags.BoolVar(&opts.Plain, "plain", false, "print the message without markdown rendering")
	if err := flags.Parse(args); err != nil {
		return generateOptions{}, err
	}
	if opts.URL == "" && flags.NArg() > 0 {
		opts.URL = flags.Arg(0)
	}

	if _, ok := message.ParseStyle(opts.Style); !ok {
		return generateOptions{}, fmt.Errorf("unknown style %q", opts.Style)
	}
	return opts, nil
}

// runController runs ctrl until the returned stop function is called.
func runController(ctx context.Context, ctrl *controller.Controller) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = ctrl.Run(ctx)
	}()
	return ctx, func() {
		cancel()
		wg.Wait()
	}
}

func generate(ctx context.Context, args []string, out io.Writer) error {
	opts, err := parseGenerateFlags(args)
	if err != nil {
		return err
	}
	return runGenerate(ctx, opts, out, nil)
}

func runGenerate(ctx context.Context, opts generateOptions, out io.Writer, clip controller.Clipboard) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, cfg.LogLevel, false)

	deps, err := buildClientDependencies(ctx, cfg, out, os.Stderr, !opts.Plain, clip, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = deps.APIKey
	}
	style, _ := message.ParseStyle(opts.Style)

	ctx, stop := runController(ctx, deps.Controller)
	defer stop()

	session := deps.Session
	if err := session.Select(ctx, style); err != nil {
		return err
	}
	ok, err := session.Fetch(ctx, opts.URL, apiKey)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("fetch failed")
	}

	if opts.Copy {
		if err := session.Copy(ctx); err != nil {
			return err
		}
	}
	if opts.Save {
		ok, err := session.Save(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("save failed")
		}
	}
	return nil
}

func interactive(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("interactive", pflag.ContinueOnError)
	plain := flags.Bool("plain", false, "print messages without markdown rendering")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, cfg.LogLevel, false)

	deps, err := buildClientDependencies(ctx, cfg, os.Stdout, os.Stderr, !*plain, clipboard.System{}, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	ctx, stop := runController(ctx, deps.Controller)
	defer stop()

	ui := &cli.Interactive{Session: deps.Session, APIKey: deps.APIKey}
	return ui.Run(ctx)
}
