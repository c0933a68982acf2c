package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/druglike/internal/config"
	"github.com/turtacn/druglike/internal/infrastructure/monitoring/logging"
	grpcserver "github.com/turtacn/druglike/internal/interfaces/grpc"
	"github.com/turtacn/druglike/internal/interfaces/grpc/services"
	httpserver "github.com/turtacn/druglike/internal/interfaces/http"
	"github.com/turtacn/druglike/internal/interfaces/http/handlers"
	"github.com/turtacn/druglike/internal/interfaces/http/middleware"
)

type serveOptions struct {
	httpPort int
	grpcPort int
	noWarm   bool
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard, the JSON API and the gRPC API",
		Long: "serve starts the HTML dashboard and the JSON API on the HTTP port and the\n" +
			"screening service on the gRPC port.  The dataset is loaded in the background\n" +
			"unless --no-warm is set; /readyz reports 503 until it is available.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if opts.httpPort > 0 {
				cc.Config.Server.Port = opts.httpPort
			}
			if cmd.Flags().Changed("grpc-port") {
				cc.Config.Server.GRPCPort = opts.grpcPort
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cc, opts)
		},
	}
	cmd.Flags().IntVar(&opts.httpPort, "http-port", 0, "HTTP port (overrides server.port)")
	cmd.Flags().IntVar(&opts.grpcPort, "grpc-port", 0, "gRPC port, 0 disables gRPC (overrides server.grpc_port)")
	cmd.Flags().BoolVar(&opts.noWarm, "no-warm", false, "load the dataset on first request instead of at startup")
	return cmd
}

func runServe(ctx context.Context, cc *CLIContext, opts *serveOptions) error {
	cfg, logger := cc.Config, cc.Logger
	app, err := newApp(cc)
	if err != nil {
		return err
	}
	defer app.Close()

	tmpl := cfg.Screening.ImageTemplate
	dashboard, err := handlers.NewDashboardHandler(app.Service, tmpl, logger.Named("dashboard"))
	if err != nil {
		return err
	}
	cors := middleware.DefaultCORSConfig()
	if len(cfg.Server.CORSOrigins) > 0 {
		cors.AllowedOrigins = cfg.Server.CORSOrigins
	}
	router := httpserver.NewRouter(httpserver.RouterConfig{
		Mode:             cfg.Server.Mode,
		ScreeningHandler: handlers.NewScreeningHandler(app.Service, tmpl),
		DashboardHandler: dashboard,
		HealthHandler:    handlers.NewHealthHandler(Version, app.Metrics, app.HealthCheckers()...),
		CORS:             &cors,
		Logging:          middleware.DefaultLoggingConfig(),
		Logger:           logger.Named("http"),
		Metrics:          app.Metrics,
		MetricsCollector: app.Collector,
	})
	httpSrv := httpserver.NewServer(httpserver.ServerOptions{
		Addr:            cfg.Server.Addr(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, router, logger.Named("http"))

	var grpcSrv *grpcserver.Server
	if cfg.Server.GRPCPort != 0 {
		grpcSrv, err = grpcserver.NewServer(cfg.Server.GRPCAddr(),
			grpcserver.WithLogger(logger.Named("grpc")),
			grpcserver.WithMetrics(app.Metrics),
			grpcserver.WithReflection(cfg.Server.Mode != "release"),
			grpcserver.WithGracefulTimeout(cfg.Server.ShutdownTimeout),
		)
		if err != nil {
			return err
		}
		grpcSrv.RegisterService(&services.ScreeningServiceDesc,
			services.NewScreeningService(app.Service, tmpl, logger.Named("grpc")))
		grpcSrv.SetServing(opts.noWarm)
	}

	if cc.ConfigPath != "" {
		watchConfig(cc.ConfigPath, logger)
	}

	logger.Info("druglike starting",
		logging.String("version", Version),
		logging.String("http_addr", cfg.Server.Addr()),
		logging.Int("grpc_port", cfg.Server.GRPCPort),
		logging.String("dataset_source", string(cfg.Dataset.Source)))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(httpSrv.Start)
	if grpcSrv != nil {
		g.Go(grpcSrv.Start)
	}
	if !opts.noWarm {
		g.Go(func() error {
			warm(gctx, app, grpcSrv)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx := context.Background()
		if grpcSrv != nil {
			if err := grpcSrv.Stop(shutdownCtx); err != nil {
				logger.Error("grpc shutdown failed", logging.Err(err))
			}
		}
		return httpSrv.Stop(shutdownCtx)
	})

	err = g.Wait()
	logger.Info("druglike stopped")
	return err
}

// warm loads and annotates the dataset once so the first request does not
// pay for it.  Failure is logged and requests retry the load.  gRPC health
// reports serving afterwards either way.
func warm(ctx context.Context, app *App, grpcSrv *grpcserver.Server) {
	if grpcSrv != nil {
		defer grpcSrv.SetServing(true)
	}
	ds, err := app.Service.Annotated(ctx)
	if err != nil {
		if ctx.Err() == nil {
			app.Logger.Warn("dataset warm-up failed, will retry on first request", logging.Err(err))
		}
		return
	}
	app.Logger.Info("dataset ready", logging.Int("rows", ds.Len()))
}

// watchConfig applies log level edits to the running process.  Other
// settings need a restart.
func watchConfig(path string, logger logging.Logger) {
	err := config.Watch(path, func(c *config.Config) {
		if logging.SetLevel(logger, c.Log.Level) {
			logger.Info("log level updated", logging.String("level", c.Log.Level))
		}
	}, func(err error) {
		logger.Warn("ignoring invalid config change", logging.Err(err))
	})
	if err != nil {
		logger.Warn("config watch disabled", logging.Err(err))
	}
}
