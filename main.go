package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"storybot_eli5/config"
	"storybot_eli5/generator"
	"storybot_eli5/render"
	"storybot_eli5/server"
)

func main() {
	configPath := flag.String("config", "", "path to optional config.json")
	envFile := flag.String("env", "", "path to .env file (default ./.env)")
	topic := flag.String("topic", "", "topic to explain")
	age := flag.Int("age", 0, "target age (default from DEFAULT_AGE)")
	simpler := flag.Bool("simpler", false, "use even simpler, jargon-free language")
	out := flag.String("out", "", "write the final story as an HTML page to this path")
	serve := flag.Bool("serve", false, "start web server")
	addr := flag.String("addr", "", "http listen address when --serve (overrides SERVER_ADDR)")
	verbose := flag.Bool("v", false, "enable debug logs")
	agents := flag.Bool("agents", false, "list the pipeline agents and exit")
	flag.Parse()

	var envFiles []string
	if *envFile != "" {
		envFiles = append(envFiles, *envFile)
	}
	cfg, err := config.Load(*configPath, envFiles...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := newLogger(cfg, *verbose)
	slog.SetDefault(logger)

	opts := []generator.Option{generator.WithLogger(logger)}
	if !*serve {
		opts = append(opts, generator.WithProgress(func(_ string, s generator.State) {
			if !s.Terminal() && s != generator.StateValidating {
				fmt.Fprintf(os.Stderr, "… %s\n", s)
			}
		}))
	}
	bot, err := generator.NewStoryBotFromConfig(cfg, opts...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *agents {
		for _, a := range bot.AgentInfo() {
			fmt.Printf("%s %-12s %-13s %s\n", a.Emoji, a.Name, a.Stage, a.Description)
		}
		return
	}

	// Web server mode
	if *serve {
		listen := cfg.ServerAddr
		if *addr != "" {
			listen = *addr
		}
		if err := runServer(bot, cfg, listen, logger); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if *topic == "" {
		fmt.Fprintln(os.Stderr, "--topic is required (or use --serve)")
		os.Exit(1)
	}
	req := bot.NewRequest(*topic)
	if *age != 0 {
		req.Age = *age
	}
	req.SimplerLanguage = *simpler

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancelTimeout()

	res, err := bot.CreateStory(ctx, req)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *out != "" {
		if err := render.WriteFile(*out, res); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		logger.Info("story page written", "path", *out)
	}
	fmt.Println(res.FinalStory)
}

func newLogger(cfg *config.Config, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func runServer(bot *generator.StoryBot, cfg *config.Config, listen string, logger *slog.Logger) error {
	srv, err := server.New(bot, cfg.RequestTimeout, logger)
	if err != nil {
		return err
	}
	httpSrv := &http.Server{
		Addr:              listen,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting web server", "address", listen, "model", cfg.LLM.Model, "provider", cfg.LLM.Provider)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
