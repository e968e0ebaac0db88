package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"dms-service/internal/dms"
	"dms-service/internal/service"
	"dms-service/internal/syncer"
)

// ensurePulled seeds the session from the remote document before local changes are made.
func ensurePulled(ctx context.Context, store *dms.Store) error {
	if !store.Sync.Active() || store.Sync.State(ctx) == syncer.Pulled {
		return nil
	}
	store.Sync.PullOnce(ctx)
	if store.Sync.State(ctx) != syncer.Pulled {
		return fmt.Errorf("refusing to change data: %w", syncer.ErrNotPulled)
	}
	return nil
}

// credentials are the optional sign-in flags of mutating commands
type credentials struct {
	username string
	password string
}

func (c *credentials) register(fs *flag.FlagSet) {
	fs.StringVar(&c.username, "user", "", "sign in as this user for the command")
	fs.StringVar(&c.password, "password", "", "password for -user")
}

func (c *credentials) authenticate(ctx context.Context, services *service.Services) error {
	if c.username == "" {
		return nil
	}
	_, err := services.Auth.Login(ctx, c.username, c.password)
	return err
}

func login(ctx context.Context, store *dms.Store, services *service.Services, args []string, out io.Writer) error {
	if len(args) != 2 {
		return errors.New("login needs <username> <password>")
	}
	if err := ensurePulled(ctx, store); err != nil {
		return err
	}
	user, err := services.Auth.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "signed in as %s (%s)\n", user.Username, user.Role)
	return nil
}

func checkout(ctx context.Context, store *dms.Store, services *service.Services, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	fs.SetOutput(out)
	var creds credentials
	creds.register(fs)
	req := service.CheckoutRequest{}
	fs.StringVar(&req.CustomerID, "customer", "", "customer id")
	fs.StringVar(&req.CustomerName, "name", "", "walk-in customer name")
	fs.StringVar(&req.CustomerPhone, "phone", "", "walk-in customer phone")
	fs.Float64Var(&req.Discount, "discount", 0, "discount amount")
	fs.StringVar(&req.PaymentMethod, "method", "", "Cash, Card, UPI or Other")
	fs.Float64Var(&req.AmountReceived, "received", 0, "amount received")
	if err := fs.Parse(args); err != nil {
		return err
	}

	lines, err := parseLines(fs.Args())
	if err != nil {
		return err
	}
	req.Lines = lines

	if err := ensurePulled(ctx, store); err != nil {
		return err
	}
	if err := creds.authenticate(ctx, services); err != nil {
		return err
	}

	res, err := services.POS.Checkout(ctx, req)
	if err != nil {
		return err
	}
	return writeJSON(out, res.Transaction)
}

func adjust(ctx context.Context, store *dms.Store, services *service.Services, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("adjust", flag.ContinueOnError)
	fs.SetOutput(out)
	var creds credentials
	creds.register(fs)
	reduce := fs.Bool("reduce", false, "remove stock instead of adding it")
	var change service.StockChange
	fs.StringVar(&change.Reference, "ref", "", "reference recorded with the movement")
	fs.StringVar(&change.Notes, "notes", "", "notes recorded with the movement")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errors.New("adjust needs <product id> <quantity>")
	}
	qty, err := strconv.Atoi(fs.Arg(1))
	if err != nil {
		return fmt.Errorf("invalid quantity %q: %w", fs.Arg(1), err)
	}
	change.ProductID = fs.Arg(0)
	change.Quantity = qty

	if err := ensurePulled(ctx, store); err != nil {
		return err
	}
	if err := creds.authenticate(ctx, services); err != nil {
		return err
	}

	p, err := services.Inventory.Adjust(ctx, *reduce, change)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: stock %d\n", p.Name, p.Stock)
	return nil
}

// parseLines reads cart lines written as <product id>:<quantity>
func parseLines(args []string) ([]service.LineRequest, error) {
	if len(args) == 0 {
		return nil, errors.New("checkout needs at least one <product id>:<quantity>")
	}
	lines := make([]service.LineRequest, 0, len(args))
	for _, arg := range args {
		id, n, ok := strings.Cut(arg, ":")
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid line %q", arg)
		}
		qty, err := strconv.Atoi(n)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity in %q: %w", arg, err)
		}
		lines = append(lines, service.LineRequest{ProductID: id, Quantity: qty})
	}
	return lines, nil
}
