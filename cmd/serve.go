// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/canonical/directory-sync/internal/config"
	"github.com/canonical/directory-sync/internal/db"
	"github.com/canonical/directory-sync/internal/logging"
	"github.com/canonical/directory-sync/internal/mapping"
	"github.com/canonical/directory-sync/internal/monitoring/prometheus"
	"github.com/canonical/directory-sync/internal/storage"
	"github.com/canonical/directory-sync/internal/tracing"
	"github.com/canonical/directory-sync/pkg/authentication"
	"github.com/canonical/directory-sync/pkg/sync"
	"github.com/canonical/directory-sync/pkg/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve starts the web server",
	Long:  `Launch the web application, list of environment variables is available in the readme`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := serve(); err != nil {
			fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve() error {
	specs := new(config.EnvSpec)
	if err := envconfig.Process("", specs); err != nil {
		panic(fmt.Errorf("issues with environment sourcing: %s", err))
	}

	logger := logging.NewLogger(specs.LogLevel)
	logger.Debugf("env vars: %v", specs)
	defer logger.Sync()

	monitor := prometheus.NewMonitor("directory-sync", logger)
	tracer := tracing.NewTracer(tracing.NewConfig(specs.TracingEnabled, specs.OtelGRPCEndpoint, specs.OtelHTTPEndpoint, logger))

	dbConfig := db.Config{
		DSN:             specs.DSN,
		MaxConns:        specs.DBMaxConns,
		MinConns:        specs.DBMinConns,
		MaxConnLifetime: specs.DBMaxConnLifetime,
		MaxConnIdleTime: specs.DBMaxConnIdleTime,
		TracingEnabled:  specs.TracingEnabled,
	}
	dbClient, err := db.NewDBClient(dbConfig, tracer, monitor, logger)
	if err != nil {
		return fmt.Errorf("failed to create database client: %v", err)
	}
	defer dbClient.Close()
	s := storage.NewStorage(dbClient, tracer, monitor, logger)

	authorizer := buildAuthorizer(specs, tracer, monitor, logger)

	dir, err := buildDirectory(specs.DirectoryDriver, specs, tracer, monitor, logger)
	if err != nil {
		return err
	}

	if specs.MappingsPath == "" {
		return fmt.Errorf("a mapping table is required (MAPPINGS_PATH env var)")
	}
	loader := mapping.NewLoader(mapping.NewCSVReader(specs.MappingsPath), tracer, logger)

	var writer sync.TableWriterInterface
	if specs.LogOutputPath != "" {
		writer = sync.NewCSVWriter(specs.LogOutputPath)
	}

	syncService := sync.NewService(dir, s, authorizer, writer, specs.RequestTimeout, specs.FlagSimulate, tracer, monitor, logger)
	if specs.FlagSimulate {
		logger.Info("FLAG_SIMULATE is set, every run is forced into simulate mode")
	}

	var jwtVerifier authentication.TokenVerifierInterface
	if specs.AuthenticationEnabled {
		if specs.AuthenticationIssuer == "" {
			return fmt.Errorf("AUTHENTICATION_ENABLED is true but AUTHENTICATION_ISSUER is not configured")
		}

		provider, err := authentication.NewProvider(context.Background(), specs.AuthenticationIssuer)
		if err != nil {
			return fmt.Errorf("failed to create OIDC provider: %v", err)
		}
		jwtVerifier = authentication.NewJWTVerifier(provider, tracer, monitor, logger)
		logger.Info("JWT authentication is enabled with OIDC discovery")
	} else {
		logger.Info("JWT authentication is disabled")
		jwtVerifier = authentication.NewNoopVerifier()
	}

	router := web.NewRouter(
		specs.AuthenticationEnabled,
		jwtVerifier,
		syncService,
		loader,
		tracer,
		monitor,
		logger,
	)
	logger.Infof("Starting server on port %v", specs.Port)

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%v", specs.Port),
		WriteTimeout: time.Second * 60,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      router,
	}

	var serverError error
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError = fmt.Errorf("server error: %w", err)
			c <- os.Interrupt
		}
	}()

	<-c

	// Create a deadline to wait for.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		serverError = fmt.Errorf("server shutdown error: %w", err)
	}

	return serverError
}
