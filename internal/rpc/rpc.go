// Package rpc is the wire contract between the account CLI and the
// development backend: service and method names, structpb payload helpers
// and the encoding of identity failures as gRPC status details.
//
// Payloads are google.protobuf.Struct values, so both sides share the
// contract without generated stubs.
package rpc

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

const (
	IdentityService = "siteaccounts.identity.v1.Identity"
	DocumentService = "siteaccounts.docstore.v1.DocumentStore"
)

// Identity methods.
const (
	CreateAccount           = "CreateAccount"
	SignIn                  = "SignIn"
	SendVerificationEmail   = "SendVerificationEmail"
	SignOut                 = "SignOut"
	Reauthenticate          = "Reauthenticate"
	VerifyBeforeUpdateEmail = "VerifyBeforeUpdateEmail"
	UpdatePassword          = "UpdatePassword"
	Reload                  = "Reload"
	ConfirmCode             = "ConfirmCode"
)

// Document store methods.
const (
	GetDocument    = "Get"
	SetDocument    = "Set"
	UpdateDocument = "Update"
	DeleteDocument = "Delete"
	QueryDocuments = "Query"
)

// FullMethod is the gRPC method path, e.g. /siteaccounts.identity.v1.Identity/SignIn.
func FullMethod(service, method string) string {
	return "/" + service + "/" + method
}

// Field names used in payloads.
const (
	FieldEmail         = "email"
	FieldPassword      = "password"
	FieldNewEmail      = "new_email"
	FieldNewPassword   = "new_password"
	FieldUID           = "uid"
	FieldEmailVerified = "email_verified"
	FieldToken         = "token"
	FieldCode          = "code"
	FieldCollection    = "collection"
	FieldKey           = "key"
	FieldData          = "data"
	FieldField         = "field"
	FieldValue         = "value"
	FieldFound         = "found"
	FieldDocuments     = "documents"
	FieldDetail        = "detail"
)

// NewStruct builds a payload, panicking on values structpb cannot carry.
// Callers only pass strings, bools, numbers and nested maps and slices.
func NewStruct(fields map[string]any) *structpb.Struct {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		panic(fmt.Sprintf("rpc: bad payload: %v", err))
	}
	return s
}

// Empty is a payload without fields.
func Empty() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{}}
}

// String reads a string field, "" when missing.
func String(s *structpb.Struct, key string) string {
	if s == nil {
		return ""
	}
	return s.GetFields()[key].GetStringValue()
}

// Bool reads a bool field, false when missing.
func Bool(s *structpb.Struct, key string) bool {
	if s == nil {
		return false
	}
	return s.GetFields()[key].GetBoolValue()
}

// Object reads a nested object as a plain map, nil when missing.
func Object(s *structpb.Struct, key string) map[string]any {
	if s == nil {
		return nil
	}
	v := s.GetFields()[key].GetStructValue()
	if v == nil {
		return nil
	}
	return v.AsMap()
}

// List reads a list of nested objects, skipping anything else.
func List(s *structpb.Struct, key string) []*structpb.Struct {
	if s == nil {
		return nil
	}
	var out []*structpb.Struct
	for _, v := range s.GetFields()[key].GetListValue().GetValues() {
		if st := v.GetStructValue(); st != nil {
			out = append(out, st)
		}
	}
	return out
}
