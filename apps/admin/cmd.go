package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	echoapi "github.com/trezcool/planner/apps/api/echo"
	"github.com/trezcool/planner/core"
	"github.com/trezcool/planner/core/calendar"
)

var errHelp = errors.New("help provided")

type resyncer interface {
	ResyncAll(ctx context.Context) (calendar.ResyncReport, error)
}

var _ resyncer = (*calendar.Synchronizer)(nil)

type commandLine struct {
	db     *sqlx.DB
	engine string
	sync   resyncer

	appName       string
	jwtSecret     string
	jwtExpiration time.Duration

	out io.Writer
}

func (cli *commandLine) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Planner administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Usage()
			return errHelp
		},
	}
	root.SetOut(cli.out)

	root.AddCommand(
		&cobra.Command{
			Use:   "migrate COMMAND [ARGS...]",
			Short: "Run a goose migration command (up, down, status, version, ...)",
			RunE: func(cmd *cobra.Command, args []string) error {
				if len(args) == 0 {
					_ = cmd.Usage()
					return errHelp
				}
				return cli.migrate(cmd.Context(), args)
			},
		},
		&cobra.Command{
			Use:   "resync",
			Short: "Re-derive every calendar event from its source and remove orphaned ones",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return cli.resync(cmd.Context())
			},
		},
		cli.tokenCommand(),
	)
	return root
}

func (cli *commandLine) tokenCommand() *cobra.Command {
	var (
		p   core.Principal
		exp time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if p.ID == "" {
				_ = cmd.Usage()
				return errHelp
			}
			return cli.token(p, exp)
		},
	}
	cmd.Flags().StringVar(&p.ID, "subject", "", "token subject (required)")
	cmd.Flags().StringVar(&p.Username, "username", "", "username claim")
	cmd.Flags().StringVar(&p.Email, "email", "", "email claim")
	cmd.Flags().DurationVar(&exp, "expires", cli.jwtExpiration, "token lifetime")
	return cmd
}

func (cli *commandLine) run(args []string) error {
	root := cli.rootCommand()
	root.SetArgs(args[1:])
	return root.ExecuteContext(context.Background())
}

func (cli *commandLine) resync(ctx context.Context) error {
	report, err := cli.sync.ResyncAll(ctx)
	if err != nil {
		return errors.Wrap(err, "resyncing calendar")
	}
	_, err = fmt.Fprintln(cli.out, report)
	return err
}

func (cli *commandLine) token(p core.Principal, exp time.Duration) error {
	token, err := echoapi.GenerateToken(echoapi.NewClaims(p, cli.appName, exp), cli.jwtSecret)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	_, err = fmt.Fprintln(cli.out, token)
	return err
}

func (cli *commandLine) sqlDB() *sql.DB {
	if cli.db == nil {
		return nil
	}
	return cli.db.DB
}
