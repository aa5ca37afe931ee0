package grpc

import (
	"context"

	"github.com/dmitrijs2005/siteaccounts/internal/common"
	"github.com/dmitrijs2005/siteaccounts/internal/identity"
	"github.com/dmitrijs2005/siteaccounts/internal/rpc"
	"github.com/dmitrijs2005/siteaccounts/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const sessionKey ctxKey = "session"

// caller is the authenticated caller of a protected method.
type caller struct {
	claims *auth.Claims
	token  string
}

func callerFrom(ctx context.Context) *caller {
	c, _ := ctx.Value(sessionKey).(*caller)
	return c
}

// protected lists the methods that need a valid access token. Document reads
// stay public because sign-up checks name availability before an account
// exists.
var protected = map[string]bool{
	rpc.FullMethod(rpc.IdentityService, rpc.SendVerificationEmail):   true,
	rpc.FullMethod(rpc.IdentityService, rpc.SignOut):                 true,
	rpc.FullMethod(rpc.IdentityService, rpc.Reauthenticate):          true,
	rpc.FullMethod(rpc.IdentityService, rpc.VerifyBeforeUpdateEmail): true,
	rpc.FullMethod(rpc.IdentityService, rpc.UpdatePassword):          true,
	rpc.FullMethod(rpc.IdentityService, rpc.Reload):                  true,
	rpc.FullMethod(rpc.DocumentService, rpc.SetDocument):             true,
	rpc.FullMethod(rpc.DocumentService, rpc.UpdateDocument):          true,
	rpc.FullMethod(rpc.DocumentService, rpc.DeleteDocument):          true,
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	if protected[info.FullMethod] {

		var accessToken string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			values := md.Get(common.AccessTokenHeaderName)
			if len(values) > 0 {
				accessToken = values[0]
			}
		}
		if len(accessToken) == 0 {
			return nil, identity.NewError(identity.CodeUnauthenticated, "missing token")
		}

		claims, err := s.identity.Authenticate(ctx, accessToken)
		if err != nil {
			return nil, err
		}

		ctx = context.WithValue(ctx, sessionKey, &caller{claims: claims, token: accessToken})
	}

	return handler(ctx, req)
}

// statusInterceptor turns handler errors into gRPC statuses and logs the
// ones the caller cannot act on.
func (s *GRPCServer) statusInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	resp, err := handler(ctx, req)
	if err == nil {
		return resp, nil
	}

	out := rpc.StatusError(err)
	if _, isStatus := status.FromError(err); !isStatus && identity.CodeOf(err) == "" {
		s.logger.Error(ctx, "request failed", "method", info.FullMethod, "error", err)
	} else {
		s.logger.Debug(ctx, "request rejected", "method", info.FullMethod, "error", err)
	}
	return nil, out
}
