package mainutil

import (
	"context"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// healthServer exposes a MultiServer's health bits as grpc.health.v1.Health.
// The empty service name is the process as a whole.
type healthServer struct {
	grpc_health_v1.UnimplementedHealthServer

	m *MultiServer
}

func (s healthServer) Check(
	ctx context.Context,
	req *grpc_health_v1.HealthCheckRequest,
) (*grpc_health_v1.HealthCheckResponse, error) {
	logRPC("Check", req.Service)

	isHealthy, err := s.lookup(req.Service)
	if err != nil {
		return nil, err
	}
	return makeResponse(isHealthy), nil
}

func (s healthServer) Watch(
	req *grpc_health_v1.HealthCheckRequest,
	ws grpc_health_v1.Health_WatchServer,
) error {
	logRPC("Watch", req.Service)

	if _, err := s.lookup(req.Service); err != nil {
		return err
	}

	// Only the latest value matters, so a slow client may miss flaps.
	updates := make(chan bool, 16)
	id := s.m.WatchHealth(func(name string, isHealthy bool, _ bool) {
		if name != req.Service {
			return
		}
		select {
		case updates <- isHealthy:
		default:
		}
	})
	defer s.m.CancelWatchHealth(id)

	current, _ := s.m.GetHealth(req.Service)
	for {
		if err := ws.Send(makeResponse(current)); err != nil {
			return err
		}
		select {
		case <-ws.Context().Done():
			return nil
		case current = <-updates:
		}
	}
}

func (s healthServer) lookup(name string) (bool, error) {
	isHealthy, found := s.m.GetHealth(name)
	if !found {
		return false, status.Errorf(codes.NotFound, "unknown subsystem %q", name)
	}
	return isHealthy, nil
}

func logRPC(method string, service string) {
	log.Logger.Debug().
		Str("rpcService", "grpc.health.v1.Health").
		Str("rpcMethod", method).
		Str("subsystem", service).
		Msg("RPC")
}

func makeResponse(isHealthy bool) *grpc_health_v1.HealthCheckResponse {
	resp := &grpc_health_v1.HealthCheckResponse{
		Status: grpc_health_v1.HealthCheckResponse_NOT_SERVING,
	}
	if isHealthy {
		resp.Status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	return resp
}
