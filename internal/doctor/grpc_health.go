package doctor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/encoding/protojson"
)

const healthTimeout = 2 * time.Second

// checkSpeechHealth asks the speech service's standard gRPC health endpoint
// whether it is serving.
func checkSpeechHealth(ctx context.Context, endpoint string) Check {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return Check{Name: "speech.health", Pass: true, Message: "health_grpc not configured; skipped"}
	}

	resp, err := probeHealth(ctx, endpoint, healthTimeout)
	if err != nil {
		return Check{Name: "speech.health", Pass: false, Message: err.Error()}
	}

	body, err := protojson.MarshalOptions{EmitUnpopulated: true}.Marshal(resp)
	if err != nil {
		return Check{Name: "speech.health", Pass: false, Message: fmt.Sprintf("encode health response: %v", err)}
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return Check{Name: "speech.health", Pass: false, Message: fmt.Sprintf("%s reported %s", endpoint, body)}
	}
	return Check{Name: "speech.health", Pass: true, Message: fmt.Sprintf("%s reported %s", endpoint, body)}
}

func probeHealth(ctx context.Context, endpoint string, timeout time.Duration) (*healthpb.HealthCheckResponse, error) {
	conn, err := grpc.NewClient(
		endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("dial speech grpc %q: %w", endpoint, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	conn.Connect()
	if err := waitForReady(ctx, conn); err != nil {
		return nil, fmt.Errorf("wait for speech grpc readiness: %w", err)
	}

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return nil, fmt.Errorf("health check %q: %w", endpoint, err)
	}
	return resp, nil
}

// waitForReady blocks until the connection enters Ready or fails.
func waitForReady(ctx context.Context, conn *grpc.ClientConn) error {
	for {
		state := conn.GetState()
		switch state {
		case connectivity.Ready:
			return nil
		case connectivity.Shutdown:
			return errors.New("grpc connection entered shutdown state")
		}

		if !conn.WaitForStateChange(ctx, state) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("grpc readiness wait timed out in state %s", state.String())
		}
	}
}
