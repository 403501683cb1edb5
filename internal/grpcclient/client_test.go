package grpcclient

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/example/posture-check/internal/logging"
	"github.com/example/posture-check/internal/pose"
	"github.com/example/posture-check/internal/posture"
)

type stubConn struct {
	method string
	sent   []byte
	reply  *structpb.Struct
	err    error
}

func (s *stubConn) Invoke(ctx context.Context, method string, args, reply any, opts ...grpc.CallOption) error {
	s.method = method
	s.sent = args.(*wrapperspb.BytesValue).GetValue()
	if s.err != nil {
		return s.err
	}
	proto.Merge(reply.(*structpb.Struct), s.reply)
	return nil
}

func (s *stubConn) NewStream(ctx context.Context, desc *grpc.StreamDesc, method string, opts ...grpc.CallOption) (grpc.ClientStream, error) {
	return nil, errors.New("not supported")
}

func mustStruct(t *testing.T, v map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(v)
	if err != nil {
		t.Fatalf("failed to build struct: %v", err)
	}
	return s
}

func TestDetectParsesLandmarks(t *testing.T) {
	conn := &stubConn{reply: mustStruct(t, map[string]any{
		"found": true,
		"landmarks": map[string]any{
			"left_shoulder":  map[string]any{"x": 0.4, "y": 0.3},
			"right_shoulder": map[string]any{"x": 0.6, "y": 0.33},
		},
	})}
	client := NewPoseEstimator(conn, time.Second, zap.NewNop())

	det, err := client.Detect(context.Background(), pose.Image{Data: []byte("img"), Format: "png"})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if conn.method != DetectMethod {
		t.Fatalf("unexpected method: %s", conn.method)
	}
	if string(conn.sent) != "img" {
		t.Fatalf("image bytes not forwarded: %q", conn.sent)
	}
	if !det.Found {
		t.Fatal("expected detection to be found")
	}
	if got := det.Landmarks[posture.RightShoulder]; got.X != 0.6 || got.Y != 0.33 {
		t.Fatalf("unexpected right shoulder: %+v", got)
	}
}

func TestDetectReportsNotFound(t *testing.T) {
	conn := &stubConn{reply: mustStruct(t, map[string]any{"found": false})}
	client := NewPoseEstimator(conn, 0, zap.NewNop())

	det, err := client.Detect(context.Background(), pose.Image{Data: []byte("img")})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if det.Found || det.Landmarks != nil {
		t.Fatalf("expected empty detection, got %+v", det)
	}
}

func TestDetectRejectsMalformedLandmark(t *testing.T) {
	conn := &stubConn{reply: mustStruct(t, map[string]any{
		"found":     true,
		"landmarks": map[string]any{"nose": map[string]any{"x": 0.5}},
	})}
	client := NewPoseEstimator(conn, 0, zap.NewNop())

	_, err := client.Detect(context.Background(), pose.Image{Data: []byte("img")})
	var opErr *logging.OperationError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected OperationError, got %T", err)
	}
	if opErr.Operation != "grpcclient.decode_detection" {
		t.Fatalf("unexpected operation: %s", opErr.Operation)
	}
}

func TestDetectWrapsTransportError(t *testing.T) {
	conn := &stubConn{err: errors.New("unavailable")}
	client := NewPoseEstimator(conn, 0, zap.NewNop())

	_, err := client.Detect(context.Background(), pose.Image{Data: []byte("img")})
	var opErr *logging.OperationError
	if !errors.As(err, &opErr) || opErr.Operation != "grpcclient.detect_pose" {
		t.Fatalf("expected detect_pose OperationError, got %v", err)
	}
}
