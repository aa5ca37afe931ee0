package grpc

import (
	"context"

	"github.com/dmitrijs2005/siteaccounts/internal/identity"
	"github.com/dmitrijs2005/siteaccounts/internal/rpc"
	"github.com/dmitrijs2005/siteaccounts/internal/server/models"
	"github.com/dmitrijs2005/siteaccounts/internal/server/services"
	"google.golang.org/protobuf/types/known/structpb"
)

func sessionReply(u *models.User, token string) *structpb.Struct {
	return rpc.NewStruct(map[string]any{
		rpc.FieldUID:           u.ID,
		rpc.FieldEmail:         u.Email,
		rpc.FieldEmailVerified: u.EmailVerified,
		rpc.FieldToken:         token,
	})
}

func reply(sess *services.Session, err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, err
	}
	return sessionReply(sess.User, sess.Token), nil
}

func empty(err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, err
	}
	return rpc.Empty(), nil
}

// mustCaller is only called behind accessTokenInterceptor.
func mustCaller(ctx context.Context) (*caller, error) {
	c := callerFrom(ctx)
	if c == nil {
		return nil, identity.NewError(identity.CodeUnauthenticated, "missing token")
	}
	return c, nil
}

func (s *GRPCServer) createAccount(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	s.logger.Info(ctx, "Registration request")
	return reply(s.identity.CreateAccount(ctx, rpc.String(in, rpc.FieldEmail), rpc.String(in, rpc.FieldPassword)))
}

func (s *GRPCServer) signIn(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return reply(s.identity.SignIn(ctx, rpc.String(in, rpc.FieldEmail), rpc.String(in, rpc.FieldPassword)))
}

func (s *GRPCServer) sendVerificationEmail(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	c, err := mustCaller(ctx)
	if err != nil {
		return nil, err
	}
	return empty(s.identity.SendVerificationEmail(ctx, c.claims))
}

func (s *GRPCServer) signOut(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	c, err := mustCaller(ctx)
	if err != nil {
		return nil, err
	}
	return empty(s.identity.SignOut(ctx, c.claims))
}

func (s *GRPCServer) reauthenticate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	c, err := mustCaller(ctx)
	if err != nil {
		return nil, err
	}
	return reply(s.identity.Reauthenticate(ctx, c.claims, rpc.String(in, rpc.FieldEmail), rpc.String(in, rpc.FieldPassword)))
}

func (s *GRPCServer) verifyBeforeUpdateEmail(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	c, err := mustCaller(ctx)
	if err != nil {
		return nil, err
	}
	return empty(s.identity.VerifyBeforeUpdateEmail(ctx, c.claims, rpc.String(in, rpc.FieldNewEmail)))
}

func (s *GRPCServer) updatePassword(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	c, err := mustCaller(ctx)
	if err != nil {
		return nil, err
	}
	return empty(s.identity.UpdatePassword(ctx, c.claims, rpc.String(in, rpc.FieldNewPassword)))
}

// reload answers with the caller's own token, which stays valid.
func (s *GRPCServer) reload(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	c, err := mustCaller(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.identity.Reload(ctx, c.claims)
	if err != nil {
		return nil, err
	}
	return sessionReply(u, c.token), nil
}

func (s *GRPCServer) confirmCode(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return empty(s.identity.ConfirmCode(ctx, rpc.String(in, rpc.FieldCode)))
}
