package grpcclient

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/siteaccounts/internal/docstore"
	"github.com/dmitrijs2005/siteaccounts/internal/rpc"
	"google.golang.org/protobuf/types/known/structpb"
)

var _ docstore.Store = (*Client)(nil)

func docRequest(collection, key string, data map[string]any) (*structpb.Struct, error) {
	fields := map[string]any{rpc.FieldCollection: collection, rpc.FieldKey: key}
	if data != nil {
		fields[rpc.FieldData] = data
	}
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode document %s/%s: %w", collection, key, err)
	}
	return s, nil
}

func (c *Client) Get(ctx context.Context, collection, key string) (*docstore.Document, error) {
	in, err := docRequest(collection, key, nil)
	if err != nil {
		return nil, err
	}
	out, err := c.call(ctx, rpc.DocumentService, rpc.GetDocument, in)
	if err != nil {
		return nil, err
	}
	if !rpc.Bool(out, rpc.FieldFound) {
		return nil, nil
	}
	data := rpc.Object(out, rpc.FieldData)
	if data == nil {
		data = map[string]any{}
	}
	return &docstore.Document{Key: key, Data: data}, nil
}

func (c *Client) Set(ctx context.Context, collection, key string, data map[string]any) error {
	if data == nil {
		data = map[string]any{}
	}
	in, err := docRequest(collection, key, data)
	if err != nil {
		return err
	}
	_, err = c.call(ctx, rpc.DocumentService, rpc.SetDocument, in)
	return err
}

// Update returns common.ErrorNotFound when the document does not exist.
func (c *Client) Update(ctx context.Context, collection, key string, fields map[string]any) error {
	in, err := docRequest(collection, key, fields)
	if err != nil {
		return err
	}
	_, err = c.call(ctx, rpc.DocumentService, rpc.UpdateDocument, in)
	return err
}

func (c *Client) Delete(ctx context.Context, collection, key string) error {
	in, err := docRequest(collection, key, nil)
	if err != nil {
		return err
	}
	_, err = c.call(ctx, rpc.DocumentService, rpc.DeleteDocument, in)
	return err
}

func (c *Client) Query(ctx context.Context, collection, field, value string) ([]docstore.Document, error) {
	in := rpc.NewStruct(map[string]any{
		rpc.FieldCollection: collection,
		rpc.FieldField:      field,
		rpc.FieldValue:      value,
	})
	out, err := c.call(ctx, rpc.DocumentService, rpc.QueryDocuments, in)
	if err != nil {
		return nil, err
	}
	var docs []docstore.Document
	for _, d := range rpc.List(out, rpc.FieldDocuments) {
		data := rpc.Object(d, rpc.FieldData)
		if data == nil {
			data = map[string]any{}
		}
		docs = append(docs, docstore.Document{Key: rpc.String(d, rpc.FieldKey), Data: data})
	}
	return docs, nil
}
