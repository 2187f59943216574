package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/pflag"

	"io.winapps.snapquip/internal/logging"
	"io.winapps.snapquip/internal/uploader"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("upload", pflag.ContinueOnError)
	relayURL := flags.String("relay-url", "http://localhost:3001", "Base URL of the analysis relay")
	model := flags.String("model", uploader.DefaultModel, "Model identifier sent with the request")
	maxTokens := flags.Int("max-tokens", uploader.DefaultMaxTokens, "Token budget for the reply")
	mediaType := flags.String("type", "", "Declare the file's media type instead of sniffing it")
	timeout := flags.Duration("timeout", 0, "Overall request timeout (0 means no timeout)")
	keepPreview := flags.Bool("keep-preview", false, "Leave the preview file in place after the run")
	verbose := flags.BoolP("verbose", "v", false, "Log request details to stderr")
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: upload [flags] <image>")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return 2
	}

	level := "error"
	if *verbose {
		level = "debug"
	}
	logger, err := logging.New(level, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	u := uploader.New(uploader.Config{
		RelayURL:   *relayURL,
		HTTPClient: &http.Client{},
		Logger:     logger,
		Request: uploader.RequestOptions{
			Model:     *model,
			MaxTokens: *maxTokens,
		},
	})
	if !*keepPreview {
		defer u.Clear()
	}

	file, err := uploader.LoadFile(flags.Arg(0), *mediaType)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := u.Select(file); err != nil {
		logger.Debugw("selection rejected", "file", file.Name, "media_type", file.MediaType, "size", file.Size, "error", err)
		_ = uploader.Render(os.Stdout, u.View())
		return 1
	}

	start := time.Now()
	_, err = u.Submit(ctx)
	logger.Debugw("submission finished", "file", file.Name, "duration", time.Since(start), "error", err)

	_ = uploader.Render(os.Stdout, u.View())
	if err != nil {
		return 1
	}
	return 0
}
