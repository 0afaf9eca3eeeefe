package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"workflowx/internal/api"
	"workflowx/src/assistant"
	"workflowx/src/logger"
	"workflowx/src/model"
	"workflowx/src/nlp/datetime"
	"workflowx/src/nlp/intent"
	"workflowx/src/nlp/normalize"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:          "workflowx",
		Short:        "Chat assistant for meetings, email, Slack and CRM",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "optional YAML config file")

	root.AddCommand(
		newServeCmd(&configPath),
		newChatCmd(&configPath),
		newClassifyCmd(&configPath),
		newResolveTimeCmd(&configPath),
	)
	return root
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newAssistant(ctx, cfg)
			if err != nil {
				return err
			}
			st, err := buildStores(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			opts := []api.Option{
				api.WithDialogStore(st.dialogs),
				api.WithHistory(st.history),
				api.WithAllowedOrigins(cfg.ServerConfig.AllowedOrigins),
			}
			if st.redis != nil {
				opts = append(opts, api.WithRedis(st.redis))
			}

			srv := &http.Server{
				Addr:              cfg.ServerConfig.Addr,
				Handler:           api.NewServer(a, opts...).Router(),
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       cfg.ServerConfig.ReadTimeout,
				WriteTimeout:      cfg.ServerConfig.WriteTimeout,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("workflowx server started")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("http server error: %w", err)
				}
			case <-ctx.Done():
				logger.Info().Msg("received shutdown signal")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerConfig.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("http shutdown failed: %w", err)
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}
}

func newChatCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Talk to the assistant from the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := newAssistant(ctx, cfg)
			if err != nil {
				return err
			}
			st, err := buildStores(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			const session = "terminal"
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "WorkflowX chat. Type 'exit' to quit.")

			var dialogCtx map[string]any
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					break
				}

				var opts []assistant.CallOption
				if msgs, err := st.history.History(ctx, session); err == nil && len(msgs) > 0 {
					opts = append(opts, assistant.WithHistory(msgs))
				}
				reply, err := a.HandleMessage(ctx, line, dialogCtx, opts...)
				if err != nil {
					return err
				}
				dialogCtx = reply.DialogContext
				if reply.Intent == model.IntentGeneral {
					if err := st.history.Record(ctx, session, line, reply.Text); err != nil {
						logger.Warn().Err(err).Msg("failed to record chat history")
					}
				}
				fmt.Fprintf(out, "[%s] %s\n", reply.Intent, reply.Text)
			}
			return scanner.Err()
		},
	}
}

func newClassifyCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <text>",
		Short: "Print the normalized text and detected intent",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			deps, err := buildDeps(ctx, cfg)
			if err != nil {
				return err
			}

			opts := []intent.Option{
				intent.WithThreshold(cfg.ClassifierConfig.ZeroShotThreshold),
				intent.WithMaxTokens(cfg.ClassifierConfig.MaxTokens),
				intent.WithLabels(cfg.ClassifierConfig.Labels),
			}
			if deps.ZeroShot != nil {
				opts = append(opts, intent.WithZeroShot(deps.ZeroShot))
			}
			if deps.Completer != nil && cfg.ClassifierConfig.GenerativeEnabled {
				opts = append(opts, intent.WithCompleter(deps.Completer))
			}

			normalized := normalize.Normalize(strings.Join(args, " "))
			d := intent.New(opts...).Classify(ctx, normalized)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "normalized: %s\n", normalized)
			fmt.Fprintf(out, "intent:     %s (tier=%s confidence=%.2f)\n", d.Intent, d.Tier, d.Confidence)
			return nil
		},
	}
}

func newResolveTimeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve-time <text>",
		Short: "Resolve a date/time phrase into a meeting window",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			loc, err := time.LoadLocation(cfg.ResolverConfig.TimeZone)
			if err != nil {
				return fmt.Errorf("load time zone %q: %w", cfg.ResolverConfig.TimeZone, err)
			}

			r := datetime.NewResolver(loc, datetime.WithDefaultHour(cfg.ResolverConfig.DefaultHour))
			text := normalize.Normalize(strings.Join(args, " "))
			res, ok := r.Resolve(cmd.Context(), text, time.Now().In(loc))

			out := cmd.OutOrStdout()
			if !ok {
				fmt.Fprintln(out, "NOT_FOUND")
				return nil
			}
			fmt.Fprintf(out, "start:    %s\n", res.Window.Start.Format(time.RFC3339))
			fmt.Fprintf(out, "end:      %s\n", res.Window.End.Format(time.RFC3339))
			fmt.Fprintf(out, "duration: %dh (source=%s)\n", res.DurationHours, res.Source)
			return nil
		},
	}
}
