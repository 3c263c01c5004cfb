package grpc

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// ShowServiceName es el nombre con el que se publica el estado del catálogo.
const ShowServiceName = "hexaspec.show"

// Probe comprueba que el repositorio de series responde.
type Probe func(ctx context.Context) error

// HealthReporter publica en grpc.health.v1 el resultado de sondear el
// repositorio cada interval.
type HealthReporter struct {
	server   *health.Server
	probe    Probe
	interval time.Duration
	log      *zap.Logger
}

func NewHealthReporter(probe Probe, interval time.Duration, log *zap.Logger) *HealthReporter {
	return &HealthReporter{
		server:   health.NewServer(),
		probe:    probe,
		interval: interval,
		log:      log,
	}
}

// Check sondea una vez y actualiza el estado; devuelve el estado publicado.
func (h *HealthReporter) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	st := healthpb.HealthCheckResponse_SERVING
	if err := h.probe(ctx); err != nil {
		h.log.Warn("Show repository health probe failed", zap.Error(err))
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.server.SetServingStatus(ShowServiceName, st)
	h.server.SetServingStatus("", st)
	return st
}

// Start bloquea hasta que ctx se cancela.
func (h *HealthReporter) Start(ctx context.Context) {
	h.Check(ctx)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			return
		case <-ticker.C:
			h.Check(ctx)
		}
	}
}

// NewServer crea el servidor gRPC con el servicio de salud registrado.
func NewServer(h *HealthReporter, log *zap.Logger) *grpc.Server {
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(unaryLogger(log)))
	healthpb.RegisterHealthServer(s, h.server)
	return s
}

func unaryLogger(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Debug("gRPC request",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("latency", time.Since(start)),
		)
		return resp, err
	}
}
