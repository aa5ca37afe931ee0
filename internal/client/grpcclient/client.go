// Package grpcclient talks to the development backend. A single Client
// implements both identity.Service and docstore.Store over one connection.
package grpcclient

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/siteaccounts/internal/common"
	"github.com/dmitrijs2005/siteaccounts/internal/identity"
	"github.com/dmitrijs2005/siteaccounts/internal/logging"
	"github.com/dmitrijs2005/siteaccounts/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ErrUnavailable is returned when the backend cannot be reached.
var ErrUnavailable = errors.New("server unavailable")

// Client is the backend connection.
type Client struct {
	conn *grpc.ClientConn
	auth *identity.Broadcaster
	log  logging.Logger
}

// New connects to addr. Extra options are appended after the defaults
// (insecure transport, access-token interceptor).
func New(addr string, l logging.Logger, opts ...grpc.DialOption) (*Client, error) {
	if l == nil {
		l = logging.Nop{}
	}
	c := &Client{auth: identity.NewBroadcaster(), log: l.With("module", "grpc_client")}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	return c, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

// accessTokenInterceptor attaches the token of the current session unless
// the call already carries one.
func (c *Client) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	md, _ := metadata.FromOutgoingContext(ctx)
	if len(md.Get(common.AccessTokenHeaderName)) == 0 {
		if s := c.auth.Current(); s != nil && s.Token != "" {
			ctx = withAccessToken(ctx, s.Token)
		}
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func (c *Client) call(ctx context.Context, service, method string, in *structpb.Struct) (*structpb.Struct, error) {
	out := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, rpc.FullMethod(service, method), in, out); err != nil {
		c.log.Debug(ctx, "call failed", "method", method, "error", err)
		return nil, mapError(err)
	}
	return out, nil
}

// mapError turns transport failures into errors the workflows understand.
func mapError(err error) error {
	if ie := rpc.IdentityError(err); ie != nil {
		return ie
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.Unavailable:
		return ErrUnavailable
	case codes.NotFound:
		return common.ErrorNotFound
	case codes.Unauthenticated:
		return identity.NewError(identity.CodeUnauthenticated, st.Message())
	default:
		return identity.NewError(identity.CodeInternal, st.Message())
	}
}
