package grpcclient

import (
	"context"

	"github.com/dmitrijs2005/siteaccounts/internal/identity"
	"github.com/dmitrijs2005/siteaccounts/internal/rpc"
	"google.golang.org/protobuf/types/known/structpb"
)

var _ identity.Service = (*Client)(nil)

func sessionFrom(s *structpb.Struct) identity.Session {
	return identity.Session{
		UID:           rpc.String(s, rpc.FieldUID),
		Email:         rpc.String(s, rpc.FieldEmail),
		EmailVerified: rpc.Bool(s, rpc.FieldEmailVerified),
		Token:         rpc.String(s, rpc.FieldToken),
	}
}

// session runs a call that answers with a session and publishes it.
func (c *Client) session(ctx context.Context, method string, in *structpb.Struct) (identity.Session, error) {
	out, err := c.call(ctx, rpc.IdentityService, method, in)
	if err != nil {
		return identity.Session{}, err
	}
	s := sessionFrom(out)
	c.auth.Publish(&s)
	return s, nil
}

func credentials(email, password string) *structpb.Struct {
	return rpc.NewStruct(map[string]any{rpc.FieldEmail: email, rpc.FieldPassword: password})
}

func (c *Client) CreateAccount(ctx context.Context, email, password string) (identity.Session, error) {
	return c.session(ctx, rpc.CreateAccount, credentials(email, password))
}

func (c *Client) SignIn(ctx context.Context, email, password string) (identity.Session, error) {
	return c.session(ctx, rpc.SignIn, credentials(email, password))
}

func (c *Client) SendVerificationEmail(ctx context.Context, s identity.Session) error {
	_, err := c.call(withAccessToken(ctx, s.Token), rpc.IdentityService, rpc.SendVerificationEmail, rpc.Empty())
	return err
}

// SignOut ends s on the server and publishes the signed-out state.
func (c *Client) SignOut(ctx context.Context, s identity.Session) error {
	if _, err := c.call(withAccessToken(ctx, s.Token), rpc.IdentityService, rpc.SignOut, rpc.Empty()); err != nil {
		return err
	}
	c.auth.Publish(nil)
	return nil
}

func (c *Client) Reauthenticate(ctx context.Context, s identity.Session, cred identity.Credential) (identity.Session, error) {
	return c.session(withAccessToken(ctx, s.Token), rpc.Reauthenticate, credentials(cred.Email, cred.Password))
}

func (c *Client) VerifyBeforeUpdateEmail(ctx context.Context, s identity.Session, newEmail string) error {
	in := rpc.NewStruct(map[string]any{rpc.FieldNewEmail: newEmail})
	_, err := c.call(withAccessToken(ctx, s.Token), rpc.IdentityService, rpc.VerifyBeforeUpdateEmail, in)
	return err
}

func (c *Client) UpdatePassword(ctx context.Context, s identity.Session, newPassword string) error {
	in := rpc.NewStruct(map[string]any{rpc.FieldNewPassword: newPassword})
	_, err := c.call(withAccessToken(ctx, s.Token), rpc.IdentityService, rpc.UpdatePassword, in)
	return err
}

func (c *Client) Reload(ctx context.Context, s identity.Session) (identity.Session, error) {
	return c.session(withAccessToken(ctx, s.Token), rpc.Reload, rpc.Empty())
}

func (c *Client) ConfirmCode(ctx context.Context, code string) error {
	_, err := c.call(ctx, rpc.IdentityService, rpc.ConfirmCode, rpc.NewStruct(map[string]any{rpc.FieldCode: code}))
	return err
}

func (c *Client) Subscribe(l identity.Listener) func() {
	return c.auth.Subscribe(l)
}
