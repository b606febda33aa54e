package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/kishorebabuysk/VF-Backend/common/logger"
	"github.com/kishorebabuysk/VF-Backend/common/metrics"
	"github.com/kishorebabuysk/VF-Backend/internal/auth"
	"github.com/kishorebabuysk/VF-Backend/internal/config"
	"github.com/kishorebabuysk/VF-Backend/internal/db"
	"github.com/kishorebabuysk/VF-Backend/internal/events"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/pflag"
)

const usage = `portalctl manages portal administrators.

Usage:
  portalctl create-admin --email <email> --password <password> [--name <full name>]
  portalctl list-admins
  portalctl deactivate-admin --email <email>
`

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx := context.Background()
	service, closeDB, err := connect(ctx)
	if err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
	defer closeDB()

	if err := run(ctx, service, os.Args[1], os.Args[2:], os.Stdout); err != nil {
		color.Red("Error: %v", err)
		closeDB()
		os.Exit(1)
	}
}

func connect(ctx context.Context) (auth.Service, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	database, err := db.New(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := db.RunMigrations(ctx, database, []interface{}{(*auth.Admin)(nil)}); err != nil {
		database.Close()
		return nil, nil, err
	}

	log := logger.Discard()
	repo := auth.NewRepository(database, metrics.NewMock())
	service := auth.NewService(repo, nil, events.NewNoop(), log, auth.Options{})
	return service, func() { db.Close(database) }, nil
}

func run(ctx context.Context, service auth.Service, command string, args []string, out io.Writer) error {
	switch command {
	case "create-admin":
		return createAdmin(ctx, service, args, out)
	case "list-admins":
		return listAdmins(ctx, service, out)
	case "deactivate-admin":
		return deactivateAdmin(ctx, service, args, out)
	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func createAdmin(ctx context.Context, service auth.Service, args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("create-admin", pflag.ContinueOnError)
	email := fs.String("email", "", "admin email")
	password := fs.String("password", "", "initial password (min 8 characters)")
	name := fs.String("name", "", "full name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	admin, err := service.CreateAdmin(ctx, *email, *password, *name)
	if err != nil {
		if errors.Is(err, auth.ErrEmailExists) {
			return fmt.Errorf("an admin with email %s already exists", *email)
		}
		return err
	}

	color.New(color.FgGreen).Fprintf(out, "Created admin %s (id %d)\n", admin.Email, admin.ID)
	return nil
}

func listAdmins(ctx context.Context, service auth.Service, out io.Writer) error {
	admins, err := service.ListAdmins(ctx)
	if err != nil {
		return err
	}

	color.New(color.FgYellow).Fprintf(out, "\nAdmins (%d)\n", len(admins))
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"ID", "Email", "Name", "Active", "Created"})
	for _, a := range admins {
		table.Append([]string{
			strconv.Itoa(a.ID),
			a.Email,
			a.FullName,
			strconv.FormatBool(a.IsActive),
			a.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	table.Render()
	return nil
}

func deactivateAdmin(ctx context.Context, service auth.Service, args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("deactivate-admin", pflag.ContinueOnError)
	email := fs.String("email", "", "admin email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("--email is required")
	}

	if err := service.DeactivateAdmin(ctx, *email); err != nil {
		if errors.Is(err, auth.ErrAdminNotFound) {
			return fmt.Errorf("no admin with email %s", *email)
		}
		return err
	}

	color.New(color.FgGreen).Fprintf(out, "Deactivated admin %s\n", *email)
	return nil
}
