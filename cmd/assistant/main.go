package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"

	"scene-assistant/internal/assistant"
	"scene-assistant/internal/cli"
	"scene-assistant/internal/config"
	"scene-assistant/internal/env"
	"scene-assistant/internal/llm"
	"scene-assistant/internal/rules"
	"scene-assistant/internal/server"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "assistant:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if err := env.Load(".env"); err != nil {
		return err
	}
	cfg, err := config.Parse()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.LogLevel, len(args) > 0 && args[0] != "serve")
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	tables, err := rules.Load(cfg.RulesPath)
	if err != nil {
		return err
	}
	svc := newService(cfg, tables, log)

	reg := cli.NewRegistry()
	reg.SetDefault("serve")

	serveFlags := flag.NewFlagSet("serve", flag.ContinueOnError)
	reg.Register("serve", "run the HTTP service", serveFlags, func() error {
		srv := server.New(svc, tables, log)
		log.Info("assistant listening", zap.String("addr", cfg.Addr()))
		return http.ListenAndServe(cfg.Addr(), srv.Handler())
	})

	parseFlags := flag.NewFlagSet("parse", flag.ContinueOnError)
	parseCommand := parseFlags.String("c", "", "command to interpret")
	reg.Register("parse", "interpret one command and print the actions as JSON", parseFlags, func() error {
		if *parseCommand == "" {
			return fmt.Errorf("parse: -c <command> is required")
		}
		result, err := svc.Interpret(context.Background(), *parseCommand, nil)
		if err != nil {
			return err
		}
		return printJSON(result)
	})

	suggestFlags := flag.NewFlagSet("suggest", flag.ContinueOnError)
	suggestPartial := suggestFlags.String("p", "", "partial command to complete")
	reg.Register("suggest", "print suggestions and completions for a partial command", suggestFlags, func() error {
		return printJSON(svc.Suggest(context.Background(), *suggestPartial))
	})

	return reg.Execute(args)
}

// newService builds the assistant with whatever provider backends the config
// enables. A failed startup probe demotes the service to rule-based parsing,
// matching the "provider unavailable" contract.
func newService(cfg config.Config, tables *rules.Tables, log *zap.Logger) *assistant.Service {
	var clients []llm.Client
	if cfg.OllamaHost != "" {
		clients = append(clients, llm.NewOllama(cfg.OllamaHost))
	}
	if cfg.OpenAIKey != "" {
		clients = append(clients, llm.NewOpenAI(cfg.OpenAIKey))
	}
	if cfg.GroqKey != "" {
		clients = append(clients, llm.NewGroq(cfg.GroqKey))
	}

	var provider assistant.Provider
	if len(clients) > 0 {
		p := llm.NewProvider(&llm.Fallback{Clients: clients}, cfg.OllamaModel)
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ProviderTimeout)
		defer cancel()
		if err := p.Probe(ctx); err != nil {
			log.Warn("LLM provider unavailable, using rule-based parser", zap.Error(err))
		} else {
			log.Info("LLM provider ready", zap.String("model", p.Model()))
			provider = p
		}
	}

	return assistant.New(tables, assistant.Options{
		Provider:        provider,
		ProviderTimeout: cfg.ProviderTimeout,
		Logger:          log,
	})
}

// newLogger builds a production logger for the server and a development one
// for the one-shot subcommands, where human-readable output matters more.
func newLogger(level string, oneShot bool) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	zcfg := zap.NewProductionConfig()
	if oneShot {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = lvl
	return zcfg.Build()
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
