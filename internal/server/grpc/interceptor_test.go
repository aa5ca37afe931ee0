package grpc

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/siteaccounts/internal/common"
	"github.com/dmitrijs2005/siteaccounts/internal/docstore"
	"github.com/dmitrijs2005/siteaccounts/internal/identity"
	"github.com/dmitrijs2005/siteaccounts/internal/logging"
	"github.com/dmitrijs2005/siteaccounts/internal/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func newTestServer() *GRPCServer {
	return NewGRPCServer("", logging.Nop{}, newFakeIdentity(), docstore.NewMemoryStore())
}

func TestInterceptor_PublicMethod_AllowsWithoutToken(t *testing.T) {
	s := newTestServer()

	info := &grpc.UnaryServerInfo{FullMethod: rpc.FullMethod(rpc.IdentityService, rpc.SignIn)}
	handlerCalled := false
	h := func(ctx context.Context, req any) (any, error) {
		handlerCalled = true
		assert.Nil(t, callerFrom(ctx))
		return "ok", nil
	}

	resp, err := s.accessTokenInterceptor(context.Background(), nil, info, h)
	require.NoError(t, err)
	assert.True(t, handlerCalled)
	assert.Equal(t, "ok", resp)
}

func TestInterceptor_Protected_MissingToken(t *testing.T) {
	s := newTestServer()

	info := &grpc.UnaryServerInfo{FullMethod: rpc.FullMethod(rpc.DocumentService, rpc.SetDocument)}
	h := func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler should not be called when token missing")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(context.Background(), nil, info, h)
	assert.ErrorIs(t, err, identity.ErrUnauthenticated)
	assert.Equal(t, "missing token", identity.DetailOf(err))
}

func TestInterceptor_Protected_InvalidToken(t *testing.T) {
	s := newTestServer()

	md := metadata.New(map[string]string{common.AccessTokenHeaderName: "not-a-valid-token"})
	ctx := metadata.NewIncomingContext(context.Background(), md)
	info := &grpc.UnaryServerInfo{FullMethod: rpc.FullMethod(rpc.IdentityService, rpc.Reload)}

	_, err := s.accessTokenInterceptor(ctx, nil, info, func(context.Context, any) (any, error) {
		t.Fatal("handler should not be called for invalid token")
		return nil, nil
	})
	assert.ErrorIs(t, err, identity.ErrUnauthenticated)
}

func TestInterceptor_Protected_ValidToken_SetsCaller(t *testing.T) {
	s := newTestServer()

	md := metadata.New(map[string]string{common.AccessTokenHeaderName: "tok-u7"})
	ctx := metadata.NewIncomingContext(context.Background(), md)
	info := &grpc.UnaryServerInfo{FullMethod: rpc.FullMethod(rpc.IdentityService, rpc.UpdatePassword)}

	var got *caller
	_, err := s.accessTokenInterceptor(ctx, nil, info, func(ctx context.Context, _ any) (any, error) {
		got = callerFrom(ctx)
		return "ok", nil
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u7", got.claims.UserID)
	assert.Equal(t, "tok-u7", got.token)
}

func TestStatusInterceptor(t *testing.T) {
	s := newTestServer()
	info := &grpc.UnaryServerInfo{FullMethod: "/x/y"}

	run := func(err error) error {
		_, out := s.statusInterceptor(context.Background(), nil, info, func(context.Context, any) (any, error) {
			return nil, err
		})
		return out
	}

	out := run(identity.NewError(identity.CodeWeakPassword, "too short"))
	assert.Equal(t, codes.InvalidArgument, status.Code(out))
	assert.ErrorIs(t, rpc.IdentityError(out), identity.ErrWeakPassword)

	out = run(errors.New("db error: connection refused"))
	assert.Equal(t, codes.Internal, status.Code(out))
	assert.Equal(t, "internal error", status.Convert(out).Message())

	out = run(status.Error(codes.PermissionDenied, "nope"))
	assert.Equal(t, codes.PermissionDenied, status.Code(out))

	resp, err := s.statusInterceptor(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
}
