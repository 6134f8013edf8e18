// Command seeduser provisions a dashboard account bound to one tenant store.
// New accounts get the default password and must rotate it at first login.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jrsteele09/bot-dashboard/credentials"
	credentialstore "github.com/jrsteele09/bot-dashboard/credentials/pgstore"
	identitystore "github.com/jrsteele09/bot-dashboard/identity/pgstore"
	"github.com/jrsteele09/bot-dashboard/internal/config"
	"github.com/jrsteele09/bot-dashboard/internal/pgdb"
	"github.com/jrsteele09/bot-dashboard/tenants"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type seedFlags struct {
	email     string
	password  string
	tenantID  int64
	endpoint  string
	accessKey string
	schema    bool
}

func main() {
	config.LoadDotEnv()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := newCommand(config.New()).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newCommand(c config.Config) *cobra.Command {
	flags := seedFlags{}
	cmd := &cobra.Command{
		Use:          "seeduser",
		Short:        "Create a dashboard account and its tenant credential",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return seed(cmd.Context(), c, flags)
		},
	}
	cmd.Flags().StringVar(&flags.email, "email", "", "account email")
	cmd.Flags().StringVar(&flags.password, "password", c.GetDefaultPassword(), "initial password")
	cmd.Flags().Int64Var(&flags.tenantID, "company-id", 0, "tenant (company) id")
	cmd.Flags().StringVar(&flags.endpoint, "supabase-url", "", "tenant store endpoint")
	cmd.Flags().StringVar(&flags.accessKey, "supabase-anon-key", "", "tenant store access key")
	cmd.Flags().BoolVar(&flags.schema, "ensure-schema", true, "create the central tables when missing")
	for _, name := range []string{"email", "company-id", "supabase-url", "supabase-anon-key"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func seed(ctx context.Context, c config.Config, f seedFlags) error {
	d := tenants.Descriptor{TenantID: f.tenantID, Endpoint: f.endpoint, AccessKey: f.accessKey}
	if err := d.Validate(); err != nil {
		return err
	}

	pool, err := pgdb.Open(ctx, c.GetCentralAdminDatabaseURL(), c.GetDownstreamTimeout())
	if err != nil {
		return fmt.Errorf("central admin store: %w", err)
	}
	defer pool.Close()

	if f.schema {
		if err := pgdb.EnsureSchema(ctx, pool); err != nil {
			return err
		}
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ident, err := identitystore.NewAdmin(tx).Create(ctx, f.email, f.password)
	if err != nil {
		return err
	}
	log.Info().Str("identity_id", ident.ID).Str("email", ident.Email).Msg("identity created")

	if err := credentialstore.NewRepo(tx).Insert(ctx, credentials.TenantCredential{
		IdentityID:        ident.ID,
		TenantID:          d.TenantID,
		Endpoint:          strings.TrimRight(d.Endpoint, "/"),
		AccessKey:         d.AccessKey,
		UsesDefaultSecret: f.password == c.GetDefaultPassword(),
	}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	log.Info().Int64("tenant_id", d.TenantID).Msg("credential stored")
	return nil
}
