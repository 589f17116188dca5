// Package probe exposes the standard gRPC health service for orchestrators.
package probe

import (
	"net"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// RelayService is the health service name reported next to the overall status.
const RelayService = "socketv.Relay"

type Probe struct {
	server *grpc.Server
	health *health.Server
}

func New() *Probe {
	p := &Probe{
		server: grpc.NewServer(),
		health: health.NewServer(),
	}
	grpc_health_v1.RegisterHealthServer(p.server, p.health)
	p.SetServing(false)
	return p
}

func (p *Probe) SetServing(ok bool) {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if ok {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	p.health.SetServingStatus("", status)
	p.health.SetServingStatus(RelayService, status)
}

// Serve blocks until Stop is called or the listener fails.
func (p *Probe) Serve(lis net.Listener) error {
	log.Info().Str("module", "adapters.probe").Str("addr", lis.Addr().String()).Msg("grpc health listening")
	return p.server.Serve(lis)
}

// Stop flips every service to NOT_SERVING and drains open streams.
func (p *Probe) Stop() {
	p.health.Shutdown()
	p.server.GracefulStop()
}
