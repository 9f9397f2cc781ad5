package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"aerogate/internal/access"
	"aerogate/internal/api"
	"aerogate/internal/biometric"
	"aerogate/internal/certs"
	"aerogate/internal/crypto"
	"aerogate/internal/registry"
	"aerogate/internal/utils"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "aerogate-server",
	Short: "Lounge access API",
	Long: `aerogate-server serves member registration, face verification and the
access log for a lounge entrance terminal.

Settings come from aerogate.yaml (or --config) and AEROGATE_* environment
variables.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := utils.LoadConfig(configPath)
		if err != nil {
			return err
		}
		logger, err := utils.NewLogger(cfg.Log)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return run(ctx, cfg, logger)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the config file (default: aerogate.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *utils.Config, logger *zap.Logger) error {
	master, err := crypto.ReadMasterKey(cfg.Crypto.MasterKeyHex, cfg.Crypto.MasterKeyFile)
	if errors.Is(err, crypto.ErrNoMasterKey) {
		logger.Warn("no master key configured, using an ephemeral key for this run",
			zap.String("master_key_file", cfg.Crypto.MasterKeyFile))
		master, err = crypto.GenerateMasterKey()
	}
	if err != nil {
		return fmt.Errorf("master key: %w", err)
	}
	templateKey, err := crypto.DeriveTemplateKey(master)
	if err != nil {
		return err
	}
	sealer, err := crypto.NewSealer(templateKey)
	if err != nil {
		return err
	}

	reg, err := registry.New(sealer, logger)
	if err != nil {
		return fmt.Errorf("open registry: %w", err)
	}
	defer reg.Close()

	embedder := biometric.NewPixelEmbedder()
	embedder.MaxPixels = cfg.Upload.MaxPixels
	svc := access.NewService(reg, embedder, logger, access.Options{
		Threshold: cfg.Verify.Threshold,
		Terminal:  cfg.Terminal,
	})
	var verifier access.Verifier = svc
	if cfg.Verify.Mode == utils.VerifyModeSimulate {
		verifier = &access.Simulator{
			Delay:      cfg.Verify.SimulateDelay,
			GrantRatio: cfg.Verify.GrantRatio,
			Terminal:   cfg.Terminal,
			Recorder:   reg,
			Log:        logger.Named("simulator"),
		}
	}

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: api.NewRouter(api.Deps{
			Registrar:      svc,
			Verifier:       verifier,
			Log:            reg,
			Logger:         logger,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			MaxUploadBytes: cfg.Upload.MaxBytes,
		}),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ErrorLog:          zap.NewStdLog(logger.Named("http")),
	}
	useTLS := cfg.Server.TLSCertFile != ""
	if useTLS {
		cm := certs.NewCertManager(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		if srv.TLSConfig, err = cm.TLSConfig(); err != nil {
			return err
		}
		cert, err := cm.LoadCertificate()
		if err != nil {
			return err
		}
		now := time.Now()
		switch {
		case certs.IsExpired(cert, now):
			logger.Warn("TLS certificate has expired", zap.Time("not_after", cert.NotAfter))
		case certs.ExpiresWithin(cert, now, 30*24*time.Hour):
			logger.Warn("TLS certificate expires soon", zap.Time("not_after", cert.NotAfter))
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server running",
			zap.String("addr", cfg.Server.Addr),
			zap.String("verify_mode", cfg.Verify.Mode),
			zap.String("terminal", cfg.Terminal),
			zap.Bool("tls", useTLS))
		var err error
		if useTLS {
			err = srv.ListenAndServeTLS("", "")
		} else {
			err = srv.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
