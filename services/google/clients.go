package googlesvc

import (
	"context"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/serafinsanchez/googleclassroom-portal/core/account"
	"github.com/serafinsanchez/googleclassroom-portal/core/classroom"
	"github.com/serafinsanchez/googleclassroom-portal/core/drive"
)

// Clients builds API clients acting on behalf of a signed in account.
type Clients struct {
	oauth    *oauth2.Config
	accounts *account.Service
	opts     []option.ClientOption
}

// NewClients returns a client factory. opts are appended to every client's options.
func NewClients(oauth *oauth2.Config, accounts *account.Service, opts ...option.ClientOption) *Clients {
	return &Clients{oauth: oauth, accounts: accounts, opts: opts}
}

func (c *Clients) clientOpts(ctx context.Context, acc account.Account) []option.ClientOption {
	ts := c.accounts.TokenSource(ctx, acc, c.oauth)
	return append([]option.ClientOption{option.WithTokenSource(ts)}, c.opts...)
}

func (c *Clients) Classroom(ctx context.Context, acc account.Account) (classroom.Client, error) {
	return NewClassroomClient(ctx, c.clientOpts(ctx, acc)...)
}

func (c *Clients) Drive(ctx context.Context, acc account.Account) (drive.Source, error) {
	return NewDriveSource(ctx, c.clientOpts(ctx, acc)...)
}
