package rpc

import (
	"errors"

	"github.com/dmitrijs2005/siteaccounts/internal/identity"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

var grpcCodes = map[identity.Code]codes.Code{
	identity.CodeUserNotFound:        codes.NotFound,
	identity.CodeWrongPassword:       codes.Unauthenticated,
	identity.CodeInvalidEmail:        codes.InvalidArgument,
	identity.CodeWeakPassword:        codes.InvalidArgument,
	identity.CodeEmailInUse:          codes.AlreadyExists,
	identity.CodeRequiresRecentLogin: codes.FailedPrecondition,
	identity.CodeInvalidCode:         codes.InvalidArgument,
	identity.CodeUnauthenticated:     codes.Unauthenticated,
	identity.CodeInternal:            codes.Internal,
}

// StatusError converts err into a gRPC status. Identity failures keep their
// code and detail in a status detail; anything else becomes codes.Internal.
func StatusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var ie *identity.Error
	if !errors.As(err, &ie) {
		return status.Error(codes.Internal, "internal error")
	}

	c, ok := grpcCodes[ie.Code]
	if !ok {
		c = codes.Unknown
	}
	st := status.New(c, ie.Error())
	detail := NewStruct(map[string]any{FieldCode: string(ie.Code), FieldDetail: ie.Detail})
	if withDetails, derr := st.WithDetails(detail); derr == nil {
		st = withDetails
	}
	return st.Err()
}

// IdentityError recovers the identity failure carried by a status error.
// It returns nil when err carries none.
func IdentityError(err error) *identity.Error {
	st, ok := status.FromError(err)
	if !ok || err == nil {
		return nil
	}
	for _, d := range st.Details() {
		s, ok := d.(*structpb.Struct)
		if !ok {
			continue
		}
		if code := String(s, FieldCode); code != "" {
			return identity.NewError(identity.Code(code), String(s, FieldDetail))
		}
	}
	return nil
}
