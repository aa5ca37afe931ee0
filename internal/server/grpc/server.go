// Package grpc exposes the backend over gRPC. There are no generated stubs:
// both services are registered from hand-written descriptors whose methods
// take and return google.protobuf.Struct payloads (see internal/rpc).
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/siteaccounts/internal/docstore"
	"github.com/dmitrijs2005/siteaccounts/internal/logging"
	"github.com/dmitrijs2005/siteaccounts/internal/server/auth"
	"github.com/dmitrijs2005/siteaccounts/internal/server/models"
	"github.com/dmitrijs2005/siteaccounts/internal/server/services"
	"google.golang.org/grpc"
)

// Identity is the part of services.IdentityService the transport needs.
type Identity interface {
	CreateAccount(ctx context.Context, email, password string) (*services.Session, error)
	SignIn(ctx context.Context, email, password string) (*services.Session, error)
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
	SendVerificationEmail(ctx context.Context, c *auth.Claims) error
	SignOut(ctx context.Context, c *auth.Claims) error
	Reauthenticate(ctx context.Context, c *auth.Claims, email, password string) (*services.Session, error)
	VerifyBeforeUpdateEmail(ctx context.Context, c *auth.Claims, newEmail string) error
	UpdatePassword(ctx context.Context, c *auth.Claims, newPassword string) error
	Reload(ctx context.Context, c *auth.Claims) (*models.User, error)
	ConfirmCode(ctx context.Context, code string) error
}

var _ Identity = (*services.IdentityService)(nil)

type GRPCServer struct {
	address  string
	identity Identity
	docs     docstore.Store
	logger   logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, id Identity, docs docstore.Store) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		identity: id,
		docs:     docs,
	}
}

// NewServer builds a grpc.Server with both services and the interceptors
// registered.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{
		grpc.ChainUnaryInterceptor(s.statusInterceptor, s.accessTokenInterceptor),
	}, opts...)

	srv := grpc.NewServer(opts...)
	srv.RegisterService(&identityServiceDesc, s)
	srv.RegisterService(&documentServiceDesc, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
