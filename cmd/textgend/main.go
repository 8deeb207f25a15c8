package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"textgend/internal/config"
	"textgend/internal/httpapi"
	"textgend/internal/pipeline"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		flags   config.Config
		cfgPath string
	)
	cmd := &cobra.Command{
		Use:          "textgend",
		Short:        "Serve a text generation model over HTTP",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := resolveConfig(cmd.Flags(), flags, cfgPath, os.LookupEnv)
			if err != nil {
				return err
			}
			logger, err := newLogger(c.LogLevel, c.LogFormat, os.Stderr)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, c, logger)
		},
	}
	bindFlags(cmd.Flags(), &flags, &cfgPath)
	return cmd
}

// newLogger builds the root logger. format is json or console; level accepts
// zerolog level names plus "off".
func newLogger(level, format string, w io.Writer) (zerolog.Logger, error) {
	name := strings.ToLower(strings.TrimSpace(level))
	if name == "off" {
		name = "disabled"
	}
	lvl, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level %q: %w", level, err)
	}
	out := w
	switch strings.ToLower(format) {
	case "", "json":
	case "console":
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", format)
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Str("service", "textgend").Logger(), nil
}

func pipelineConfig(c config.Config) pipeline.Config {
	return pipeline.Config{
		Backend:        c.Backend,
		Model:          c.Model,
		Tokenizer:      c.Tokenizer,
		PadTokenID:     c.PadTokenID,
		ModelPath:      c.ModelPath,
		ModelsDir:      c.ModelsDir,
		ModelFile:      c.ModelFile,
		HFCacheDir:     c.HFCacheDir,
		HFToken:        c.HFToken,
		CtxSize:        c.CtxSize,
		Threads:        c.Threads,
		GPULayers:      c.GPULayers,
		ServerURL:      c.ServerURL,
		ServerAPIKey:   c.ServerAPIKey,
		RequestTimeout: time.Duration(c.RequestTimeoutSeconds) * time.Second,
	}
}

// configureHTTP applies c to the httpapi package settings.
func configureHTTP(c config.Config, logger zerolog.Logger) {
	httpapi.SetLogger(logger)
	httpapi.SetRequestLogLevel(c.LogLevel)
	httpapi.SetMaxBodyBytes(c.MaxBodyBytes)
	httpapi.SetGenerateTimeout(time.Duration(c.GenerateTimeoutSeconds) * time.Second)
	httpapi.SetCORSOptions(c.CORSEnabled, c.CORSOrigins, c.CORSMethods, c.CORSHeaders)
}

// loadGenerator makes the single model load attempt. A failure is logged and
// yields a nil Generator; the server still starts and /generate reports 500.
func loadGenerator(ctx context.Context, c config.Config, logger zerolog.Logger) (httpapi.Generator, func()) {
	p, err := pipeline.Load(ctx, pipelineConfig(c))
	if err != nil {
		logger.Error().Err(err).Str("model", c.Model).Str("backend", c.Backend).Msg("model load failed")
		return nil, func() {}
	}
	return p, func() {
		if err := p.Close(); err != nil {
			logger.Warn().Err(err).Msg("close pipeline")
		}
	}
}

func run(ctx context.Context, c config.Config, logger zerolog.Logger) error {
	pipeline.SetLogger(logger)
	configureHTTP(c, logger)
	httpapi.SetBaseContext(ctx)

	gen, closeGen := loadGenerator(ctx, c, logger)
	defer closeGen()

	srv := &http.Server{
		Addr:              c.Addr,
		Handler:           httpapi.NewMux(gen),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", c.Addr).Msg("textgend listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen %s: %w", c.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			logger.Warn().Err(err).Msg("graceful shutdown error")
			return err
		}
		logger.Info().Msg("server stopped")
		return nil
	})
	return g.Wait()
}
