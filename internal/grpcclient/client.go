package grpcclient

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/example/posture-check/internal/logging"
	"github.com/example/posture-check/internal/pose"
	"github.com/example/posture-check/internal/posture"
)

// DetectMethod is the full gRPC method name served by the pose estimation sidecar.
const DetectMethod = "/pose.v1.PoseEstimator/Detect"

// DialPoseEstimator returns a ready-to-use client for the pose estimation service.
// The connection is created once at startup and shared by every request.
func DialPoseEstimator(ctx context.Context, addr string, callTimeout time.Duration, logger *zap.Logger) (pose.Extractor, *grpc.ClientConn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	conn, err := grpc.DialContext(
		dialCtx,
		addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
	)
	if err != nil {
		wrapped := logging.NewOperationError("grpcclient.dial_pose_estimator", "", err)
		logger.Error("failed to dial pose estimator", zap.Error(wrapped), zap.String("addr", addr))
		return nil, nil, wrapped
	}
	return NewPoseEstimator(conn, callTimeout, logger), conn, nil
}

// NewPoseEstimator wraps an existing connection.
func NewPoseEstimator(conn grpc.ClientConnInterface, callTimeout time.Duration, logger *zap.Logger) pose.Extractor {
	return &grpcPoseEstimator{conn: conn, timeout: callTimeout, logger: logger.Named("pose_estimator")}
}

type grpcPoseEstimator struct {
	conn    grpc.ClientConnInterface
	timeout time.Duration
	logger  *zap.Logger
}

func (g *grpcPoseEstimator) Detect(ctx context.Context, img pose.Image) (pose.Detection, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp := &structpb.Struct{}
	if err := g.conn.Invoke(ctx, DetectMethod, wrapperspb.Bytes(img.Data), resp); err != nil {
		wrapped := logging.NewOperationError("grpcclient.detect_pose", "", err)
		g.logger.Error("pose estimator call failed", zap.Error(wrapped), zap.String("format", img.Format))
		return pose.Detection{}, wrapped
	}

	det, err := detectionFromStruct(resp)
	if err != nil {
		return pose.Detection{}, logging.NewOperationError("grpcclient.decode_detection", "", err)
	}
	g.logger.Debug("pose detected",
		zap.Bool("found", det.Found),
		zap.Int("landmarks", len(det.Landmarks)),
		zap.Int("width", img.Width),
		zap.Int("height", img.Height),
	)
	return det, nil
}

// detectionFromStruct reads {found: bool, landmarks: {name: {x, y}}}.
func detectionFromStruct(s *structpb.Struct) (pose.Detection, error) {
	fields := s.GetFields()
	if !fields["found"].GetBoolValue() {
		return pose.Detection{Found: false}, nil
	}

	raw := fields["landmarks"].GetStructValue()
	if raw == nil || len(raw.GetFields()) == 0 {
		return pose.Detection{Found: false}, nil
	}

	set := make(posture.LandmarkSet, len(raw.GetFields()))
	for name, v := range raw.GetFields() {
		pt := v.GetStructValue()
		if pt == nil {
			return pose.Detection{}, fmt.Errorf("landmark %q is not an object", name)
		}
		x, okX := pt.GetFields()["x"]
		y, okY := pt.GetFields()["y"]
		if !okX || !okY {
			return pose.Detection{}, fmt.Errorf("landmark %q lacks coordinates", name)
		}
		set[posture.LandmarkName(name)] = posture.Point{X: x.GetNumberValue(), Y: y.GetNumberValue()}
	}
	return pose.Detection{Found: true, Landmarks: set}, nil
}
