package codec

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region client-struct

const completeMethod = "/vishing.v1.CallerService/Complete"

// CallerClient talks to a caller-model sidecar over gRPC. Messages are
// google.protobuf.Struct so no generated stubs are needed on either side.
type CallerClient struct {
	conn *grpc.ClientConn
	cc   grpc.ClientConnInterface
}

// #endregion client-struct

// #region constructor

// NewCallerClient connects to the sidecar at addr.
func NewCallerClient(addr string) (*CallerClient, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &CallerClient{conn: conn, cc: conn}, nil
}

// NewCallerClientWithConn wraps an existing connection.
// Used for testing without a real gRPC server.
func NewCallerClientWithConn(cc grpc.ClientConnInterface) *CallerClient {
	return &CallerClient{cc: cc}
}

// #endregion constructor

// #region close

// Close shuts down the gRPC connection.
func (c *CallerClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion close

// #region complete

// Complete sends the prompt and returns the sidecar's "text" field.
// ResourceExhausted and Unavailable are reported as ErrRetryable.
func (c *CallerClient) Complete(ctx context.Context, req Request) (string, error) {
	in, err := structpb.NewStruct(map[string]any{
		"kind":        string(req.Kind),
		"prompt":      req.Prompt,
		"model":       req.Model,
		"temperature": req.Temperature,
		"max_tokens":  req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	out := &structpb.Struct{}
	if err := c.cc.Invoke(ctx, completeMethod, in, out); err != nil {
		switch status.Code(err) {
		case codes.ResourceExhausted, codes.Unavailable:
			return "", fmt.Errorf("%w: complete rpc: %w", ErrRetryable, err)
		}
		if IsRetryableMessage(err.Error()) {
			return "", fmt.Errorf("%w: complete rpc: %w", ErrRetryable, err)
		}
		return "", fmt.Errorf("complete rpc: %w", err)
	}

	text := out.GetFields()["text"].GetStringValue()
	if text == "" {
		return "", errors.New("complete rpc: empty text")
	}
	return text, nil
}

// #endregion complete
