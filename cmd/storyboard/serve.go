/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"storyboardstudio/internal/config"
	"storyboardstudio/internal/crash"
	"storyboardstudio/internal/gemini"
	applog "storyboardstudio/internal/log"
	"storyboardstudio/internal/server"
	"storyboardstudio/internal/store"
	"storyboardstudio/internal/studio"
)

func newServeCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the studio API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, apiKey, err := config.Load()
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Server.Listen = listen
			}

			applog.Init(applog.Options{
				Level:     cfg.Logging.Level,
				Format:    cfg.Logging.Format,
				AddSource: cfg.Logging.Source,
				File:      cfg.Logging.File,
			})
			log := applog.WithComponent("serve")

			storePath := cfg.Store.Path
			if storePath == "" {
				dir, err := config.DataDir()
				if err != nil {
					return err
				}
				storePath = filepath.Join(dir, store.DefaultFileName)
			}
			db, err := store.Open(storePath)
			if err != nil {
				return fmt.Errorf("open state store: %w", err)
			}
			defer db.Close()

			gen := gemini.New(apiKey,
				gemini.WithModel(cfg.Gemini.Model),
				gemini.WithBaseURL(cfg.Gemini.BaseURL),
				gemini.WithTimeout(time.Duration(cfg.Gemini.TimeoutMs)*time.Millisecond),
			)
			if !gen.Configured() {
				log.Warn("no Gemini API key set; generation is disabled",
					"hint", "storyboard config set-key, or "+config.EnvGeminiAPIKey)
			}

			st, err := studio.New(gen, db)
			if err != nil {
				return err
			}
			defer crash.Recover(filepath.Dir(storePath), st)

			srv := &http.Server{
				Addr:              cfg.Server.Listen,
				Handler:           server.New(st).Router(cfg.Server.AllowedOrigins),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() {
				log.Info("listening", "addr", cfg.Server.Listen, "store", storePath)
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			case <-ctx.Done():
				log.Info("shutting down")
				shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutCtx); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides config)")
	return cmd
}
