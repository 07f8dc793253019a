package server

import (
	"time"

	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	trackingv1 "tracking-analytics/backend/api/tracking/v1"
	healthhandler "tracking-analytics/backend/internal/health/handler"
	trackinghandler "tracking-analytics/backend/internal/tracking/handler"
)

// Deps holds optional service dependencies for gRPC handlers.
type Deps struct {
	// Hits records RecordHit calls. If nil, RecordHit returns Unimplemented.
	Hits trackinghandler.HitRecorder
	// Stats answers the stats RPCs. If nil, they return Unimplemented.
	Stats trackinghandler.StatsService
	// Seeder serves Seed. Leave nil in production; Seed then returns Unimplemented.
	Seeder trackinghandler.Seeder
	// Location is the zone request dates without a timezone are read in. Nil means UTC.
	Location *time.Location
	// HealthPinger is used by the health service for readiness (e.g. the Postgres repository). If nil, the ping is skipped.
	HealthPinger healthhandler.Pinger
	// HealthPolicyChecker is used by the health service for readiness (the bot policy). If nil, the policy check is skipped.
	HealthPolicyChecker healthhandler.PolicyChecker
}

// PublicMethods are the full method names served without a Bearer token.
func PublicMethods() map[string]bool {
	return map[string]bool{
		trackingv1.TrackingService_RecordHit_FullMethodName: true,
		healthpb.Health_Check_FullMethodName:                true,
		healthpb.Health_Watch_FullMethodName:                true,
	}
}

// TelemetrySkipMethods are not reported as grpc_request events: health probes are noise and
// RecordHit emits its own trace events.
func TelemetrySkipMethods() map[string]bool {
	return map[string]bool{
		trackingv1.TrackingService_RecordHit_FullMethodName: true,
		healthpb.Health_Check_FullMethodName:                true,
		healthpb.Health_Watch_FullMethodName:                true,
	}
}

// RegisterServices registers all gRPC services with the given server.
//
//   - tracking.v1.TrackingService → internal/tracking/handler
//   - grpc.health.v1.Health       → internal/health/handler
func RegisterServices(s grpc.ServiceRegistrar, deps Deps) {
	trackingv1.RegisterTrackingServiceServer(s, trackinghandler.NewServer(deps.Hits, deps.Stats, deps.Seeder, deps.Location))
	healthpb.RegisterHealthServer(s, healthhandler.NewServer(deps.HealthPinger, deps.HealthPolicyChecker, trackingv1.ServiceName))
}
