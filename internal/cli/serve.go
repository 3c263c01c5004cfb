package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/segmentio/kafka-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/davicafu/hexaspec/internal/config"
	infraEvents "github.com/davicafu/hexaspec/internal/shared/infra/events"
	sharedBus "github.com/davicafu/hexaspec/internal/shared/infra/platform/bus"
	"github.com/davicafu/hexaspec/internal/shared/infra/relayer"
	showDomain "github.com/davicafu/hexaspec/internal/show/domain"
	showEvents "github.com/davicafu/hexaspec/internal/show/infra/inbound/events"
	showGrpc "github.com/davicafu/hexaspec/internal/show/infra/inbound/grpc"
	showHttp "github.com/davicafu/hexaspec/internal/show/infra/inbound/http"
)

const shutdownTimeout = 10 * time.Second

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Port string
}

// NewServeCommand crea el comando serve.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the outbox relayer and the event consumers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Port != "" {
				opts.cfg.HTTPPort = opts.Port
			}
			return runServe(cmd.Context(), opts.cfg, opts.log)
		},
	}
	cmd.Flags().StringVarP(&opts.Port, "port", "p", "", "HTTP port (overrides http_port)")
	return cmd
}

func runServe(parent context.Context, cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(ctx, cfg, log, true)
	if err != nil {
		return err
	}
	defer app.Close()

	// ---------------- Events ---------------
	consumer := showEvents.NewShowConsumer(app.Analytics, app.Cache, log)
	publisher, closeBus := startEventBus(ctx, cfg, consumer, log)
	defer closeBus()

	// ------------ Outbox Worker ------------
	worker := relayer.NewOutboxWorker(app.Outbox, publisher, showDomain.NewEventRegistry(), cfg.OutboxPeriod, cfg.OutboxLimit, log)
	go worker.Start(ctx)

	// ---------------- gRPC ----------------
	if cfg.GRPCPort != "" {
		stopGrpc, err := startHealthServer(ctx, app, log)
		if err != nil {
			return err
		}
		defer stopGrpc()
	}

	// ---------------- HTTP ----------------
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      corsHandler(cfg, NewRouter(app, log)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server running", zap.String("url", "http://localhost:"+cfg.HTTPPort), zap.String("backend", cfg.Backend))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// startHealthServer publica grpc.health.v1 con el estado del repositorio.
func startHealthServer(ctx context.Context, app *App, log *zap.Logger) (func(), error) {
	lis, err := net.Listen("tcp", ":"+app.Config.GRPCPort)
	if err != nil {
		return nil, err
	}
	probe := func(ctx context.Context) error {
		_, err := app.Service.CountShows(ctx, nil)
		return err
	}
	reporter := showGrpc.NewHealthReporter(probe, 15*time.Second, log)
	server := showGrpc.NewServer(reporter, log)

	go reporter.Start(ctx)
	go func() {
		log.Info("gRPC health server running", zap.String("addr", lis.Addr().String()))
		if err := server.Serve(lis); err != nil {
			log.Warn("gRPC server stopped", zap.Error(err))
		}
	}()
	return server.GracefulStop, nil
}

// startEventBus conecta el publicador del relayer con el consumidor, por
// Kafka o por el bus en memoria.
func startEventBus(ctx context.Context, cfg *config.Config, consumer *showEvents.ShowConsumer, log *zap.Logger) (sharedBus.EventBus, func()) {
	if !cfg.UseKafka {
		log.Info("Using in-memory event bus")
		bus := infraEvents.NewInMemoryEventBus(showDomain.ShowTopic, log)
		infraEvents.Consume(ctx, bus.Subscribe(cfg.OutboxLimit*2), consumer)
		return bus, func() {}
	}

	log.Info("Using Kafka event bus", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaTopic,
		Balancer: &kafka.Hash{},
	})
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaTopic,
		GroupID:  "hexaspec-show-analytics",
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	infraEvents.NewConsumerAdapter(reader, consumer, log).Start(ctx)

	return infraEvents.NewKafkaPublisher(writer, log), func() {
		if err := writer.Close(); err != nil {
			log.Warn("Failed to close Kafka writer", zap.Error(err))
		}
		if err := reader.Close(); err != nil {
			log.Warn("Failed to close Kafka reader", zap.Error(err))
		}
	}
}

// NewRouter monta las rutas del catálogo y el health check.
func NewRouter(app *App, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "backend": app.Config.Backend})
	})

	handler := showHttp.NewShowHandler(app.Service, app.Analytics, app.Config.PageLimit, app.Config.MaxPageLimit, log)
	showHttp.RegisterShowRoutes(router, handler)
	return router
}

func corsHandler(cfg *config.Config, h http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
	}).Handler(h)
}

// requestLogger registra cada petición con zap.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
