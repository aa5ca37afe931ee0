package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/siteaccounts/internal/common"
	"github.com/dmitrijs2005/siteaccounts/internal/rpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ownerField marks a document as belonging to a user. Writes must come
// from that user.
const ownerField = "uid"

func address(in *structpb.Struct) (collection, key string, err error) {
	collection, key = rpc.String(in, rpc.FieldCollection), rpc.String(in, rpc.FieldKey)
	if collection == "" || key == "" {
		return "", "", status.Error(codes.InvalidArgument, "collection and key are required")
	}
	return collection, key, nil
}

func encode(fields map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode reply: %v", err)
	}
	return out, nil
}

// checkOwner rejects writes that would take over or touch another user's
// document.
func (s *GRPCServer) checkOwner(ctx context.Context, collection, key string, data map[string]any) error {
	c, err := mustCaller(ctx)
	if err != nil {
		return err
	}
	if v, ok := data[ownerField]; ok && v != c.claims.UserID {
		return status.Error(codes.PermissionDenied, "document would belong to another user")
	}
	existing, err := s.docs.Get(ctx, collection, key)
	if err != nil {
		return err
	}
	if existing != nil {
		if owner := existing.String(ownerField); owner != "" && owner != c.claims.UserID {
			return status.Error(codes.PermissionDenied, "document belongs to another user")
		}
	}
	return nil
}

func (s *GRPCServer) getDocument(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	collection, key, err := address(in)
	if err != nil {
		return nil, err
	}
	doc, err := s.docs.Get(ctx, collection, key)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return encode(map[string]any{rpc.FieldFound: false})
	}
	return encode(map[string]any{rpc.FieldFound: true, rpc.FieldData: doc.Data})
}

func (s *GRPCServer) setDocument(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	collection, key, err := address(in)
	if err != nil {
		return nil, err
	}
	data := rpc.Object(in, rpc.FieldData)
	if data == nil {
		data = map[string]any{}
	}
	if err := s.checkOwner(ctx, collection, key, data); err != nil {
		return nil, err
	}
	return empty(s.docs.Set(ctx, collection, key, data))
}

func (s *GRPCServer) updateDocument(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	collection, key, err := address(in)
	if err != nil {
		return nil, err
	}
	fields := rpc.Object(in, rpc.FieldData)
	if err := s.checkOwner(ctx, collection, key, fields); err != nil {
		return nil, err
	}
	if err := s.docs.Update(ctx, collection, key, fields); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, status.Error(codes.NotFound, "document not found")
		}
		return nil, err
	}
	return rpc.Empty(), nil
}

func (s *GRPCServer) deleteDocument(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	collection, key, err := address(in)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwner(ctx, collection, key, nil); err != nil {
		return nil, err
	}
	return empty(s.docs.Delete(ctx, collection, key))
}

func (s *GRPCServer) queryDocuments(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	collection := rpc.String(in, rpc.FieldCollection)
	field := rpc.String(in, rpc.FieldField)
	if collection == "" || field == "" {
		return nil, status.Error(codes.InvalidArgument, "collection and field are required")
	}
	docs, err := s.docs.Query(ctx, collection, field, rpc.String(in, rpc.FieldValue))
	if err != nil {
		return nil, err
	}
	list := make([]any, 0, len(docs))
	for _, d := range docs {
		list = append(list, map[string]any{rpc.FieldKey: d.Key, rpc.FieldData: d.Data})
	}
	return encode(map[string]any{rpc.FieldDocuments: list})
}
