package grpc

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strconv"

	"willplay/internal/config"

	ssov1 "github.com/Nergous/sso_protos/gen/go/sso"

	grpclog "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	grpcretry "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/retry"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// Client resolves bearer tokens through the SSO service.
type Client struct {
	auth ssov1.AuthClient
	conn *grpc.ClientConn
	log  *slog.Logger
}

func New(ctx context.Context, log *slog.Logger, cfg config.Client) (*Client, error) {
	const op = "grpc.New"

	retryOpts := []grpcretry.CallOption{
		grpcretry.WithCodes(codes.Unavailable, codes.Aborted, codes.DeadlineExceeded),
		grpcretry.WithMax(uint(cfg.RetriesCount)),
		grpcretry.WithPerRetryTimeout(cfg.Timeout),
	}

	logOpts := []grpclog.Option{
		grpclog.WithLogOnEvents(grpclog.StartCall, grpclog.FinishCall),
	}

	creds := credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	if cfg.Insecure {
		creds = insecure.NewCredentials()
	}

	cc, err := grpc.DialContext(ctx, cfg.Address,
		grpc.WithTransportCredentials(creds),
		grpc.WithChainUnaryInterceptor(
			grpclog.UnaryClientInterceptor(InterceptorLogger(log), logOpts...),
			grpcretry.UnaryClientInterceptor(retryOpts...),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Client{
		auth: ssov1.NewAuthClient(cc),
		conn: cc,
		log:  log,
	}, nil
}

func InterceptorLogger(l *slog.Logger) grpclog.Logger {
	return grpclog.LoggerFunc(func(ctx context.Context, lvl grpclog.Level, msg string, fields ...any) {
		l.Log(ctx, slog.Level(lvl), msg, fields...)
	})
}

// Authenticate returns the SSO user id behind token as the actor subject.
func (c *Client) Authenticate(ctx context.Context, token string) (string, error) {
	resp, err := c.auth.ValidateToken(ctx, &ssov1.ValidateTokenRequest{Token: token})
	if err != nil {
		c.log.Error("sso.ValidateToken failed", slog.String("error", err.Error()))
		return "", err
	}

	if !resp.GetValid() {
		return "", nil
	}

	return strconv.FormatUint(uint64(resp.GetUserId()), 10), nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}
