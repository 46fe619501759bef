package grpc

import (
	"context"
	"io"
	"log/slog"
	"testing"

	ssov1 "github.com/Nergous/sso_protos/gen/go/sso"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// fakeAuth answers ValidateToken only.
type fakeAuth struct {
	ssov1.AuthClient
	resp *ssov1.ValidateTokenResponse
	err  error
	got  string
}

func (f *fakeAuth) ValidateToken(_ context.Context, in *ssov1.ValidateTokenRequest, _ ...grpc.CallOption) (*ssov1.ValidateTokenResponse, error) {
	f.got = in.GetToken()
	return f.resp, f.err
}

func TestClient_Authenticate(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		auth := &fakeAuth{resp: &ssov1.ValidateTokenResponse{UserId: 42, Valid: true}}
		c := &Client{auth: auth, log: log}

		actor, err := c.Authenticate(ctx, "tok")

		require.NoError(t, err)
		assert.Equal(t, "42", actor)
		assert.Equal(t, "tok", auth.got)
	})

	t.Run("invalid", func(t *testing.T) {
		c := &Client{auth: &fakeAuth{resp: &ssov1.ValidateTokenResponse{UserId: 42, Valid: false}}, log: log}

		actor, err := c.Authenticate(ctx, "tok")

		require.NoError(t, err)
		assert.Empty(t, actor)
	})

	t.Run("unavailable", func(t *testing.T) {
		c := &Client{auth: &fakeAuth{err: status.Error(codes.Unavailable, "down")}, log: log}

		_, err := c.Authenticate(ctx, "tok")

		assert.Equal(t, codes.Unavailable, status.Code(err))
	})
}
