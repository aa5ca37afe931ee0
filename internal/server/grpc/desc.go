package grpc

import (
	"context"

	"github.com/dmitrijs2005/siteaccounts/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

type unaryFunc func(s *GRPCServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)

// method builds the descriptor of one unary Struct-to-Struct method,
// running the server's interceptor chain like generated code does.
func method(service, name string, fn unaryFunc) grpc.MethodDesc {
	fullMethod := rpc.FullMethod(service, name)
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(*GRPCServer)
			if interceptor == nil {
				return fn(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return fn(s, ctx, req.(*structpb.Struct))
			})
		},
	}
}

var identityServiceDesc = grpc.ServiceDesc{
	ServiceName: rpc.IdentityService,
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		method(rpc.IdentityService, rpc.CreateAccount, (*GRPCServer).createAccount),
		method(rpc.IdentityService, rpc.SignIn, (*GRPCServer).signIn),
		method(rpc.IdentityService, rpc.SendVerificationEmail, (*GRPCServer).sendVerificationEmail),
		method(rpc.IdentityService, rpc.SignOut, (*GRPCServer).signOut),
		method(rpc.IdentityService, rpc.Reauthenticate, (*GRPCServer).reauthenticate),
		method(rpc.IdentityService, rpc.VerifyBeforeUpdateEmail, (*GRPCServer).verifyBeforeUpdateEmail),
		method(rpc.IdentityService, rpc.UpdatePassword, (*GRPCServer).updatePassword),
		method(rpc.IdentityService, rpc.Reload, (*GRPCServer).reload),
		method(rpc.IdentityService, rpc.ConfirmCode, (*GRPCServer).confirmCode),
	},
	Metadata: "siteaccounts/identity.proto",
}

var documentServiceDesc = grpc.ServiceDesc{
	ServiceName: rpc.DocumentService,
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		method(rpc.DocumentService, rpc.GetDocument, (*GRPCServer).getDocument),
		method(rpc.DocumentService, rpc.SetDocument, (*GRPCServer).setDocument),
		method(rpc.DocumentService, rpc.UpdateDocument, (*GRPCServer).updateDocument),
		method(rpc.DocumentService, rpc.DeleteDocument, (*GRPCServer).deleteDocument),
		method(rpc.DocumentService, rpc.QueryDocuments, (*GRPCServer).queryDocuments),
	},
	Metadata: "siteaccounts/docstore.proto",
}
