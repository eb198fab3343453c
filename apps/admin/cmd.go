package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"syscall"

	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/tomeducation/admin/core"
	"github.com/tomeducation/admin/core/catalog"
	"github.com/tomeducation/admin/core/session"
	"github.com/tomeducation/admin/services/api"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp            = errors.New("help provided")
	errNotAuthorized   = errors.New("not authenticated")
	errUnknownResource = errors.New("unknown resource")
)

type shell struct {
	store *session.Store
	guard *session.Guard
	notif core.Notifier
	trace *log.Logger

	in  io.Reader
	out io.Writer

	views map[string]resourceView
	apps  *api.ResourceEndpoints[catalog.Application, catalog.ApplicationPayload]
}

func newShell(repo session.Repository, notif core.Notifier, logger core.Logger) *shell {
	client := api.NewClient(core.Conf.API.BaseURL, nil, logger)
	store := session.NewStore(client, repo, logger)
	client.SetTokenSource(store)
	client.OnUnauthorized(store.Invalidate)
	uploader := api.NewUploader(client)

	trace := log.New("admin")
	if core.Conf.Debug {
		trace.SetLevel(log.DEBUG)
	} else {
		trace.SetLevel(log.WARN)
	}

	sh := &shell{
		store: store,
		notif: notif,
		trace: trace,
		in:    os.Stdin,
		out:   os.Stdout,
	}
	sh.views, sh.apps = buildViews(client, uploader, notif, logger)

	routes := []string{session.DefaultLanding}
	for name := range sh.views {
		routes = append(routes, name)
	}
	sh.guard = session.NewGuard(store, routes...)
	return sh
}

func (sh *shell) printUsage() {
	fmt.Fprintln(sh.out, "Usage:")
	fmt.Fprintln(sh.out, "  login                                          - authenticate against the API")
	fmt.Fprintln(sh.out, "  logout                                         - drop the stored session")
	fmt.Fprintln(sh.out, "  status                                         - show the session state")
	fmt.Fprintln(sh.out, "  dashboard                                      - landing page summary")
	fmt.Fprintln(sh.out, "  list RESOURCE [-offset N -limit N]             - list records")
	fmt.Fprintln(sh.out, "  get RESOURCE -id ID                            - show one record")
	fmt.Fprintln(sh.out, "  create RESOURCE -file payload.json [-media F]  - create a record")
	fmt.Fprintln(sh.out, "  update RESOURCE -id ID -file payload.json [-media F]")
	fmt.Fprintln(sh.out, "  remove RESOURCE -id ID                         - delete a record")
	fmt.Fprintf(sh.out, "Resources: %s\n", strings.Join(sh.routeNames(), ", "))
}

func (sh *shell) routeNames() []string {
	names := make([]string, 0, len(sh.views))
	for name := range sh.views {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (sh *shell) run(args []string) error {
	if len(args) < 2 {
		sh.printUsage()
		return errHelp
	}

	// session state is resolved exactly once, before anything renders
	sh.store.Initialize()
	ctx := context.Background()

	switch args[1] {
	case "login":
		return sh.login(ctx)
	case "logout":
		sh.store.Logout()
		sh.notif.Success("Logged out")
		return nil
	case "status":
		return sh.status()
	case "dashboard":
		return sh.dashboard(ctx)
	case "list":
		return sh.list(ctx, args[2:])
	case "get":
		return sh.get(ctx, args[2:])
	case "create":
		return sh.submit(ctx, args[2:], false)
	case "update":
		return sh.submit(ctx, args[2:], true)
	case "remove":
		return sh.remove(ctx, args[2:])
	default:
		sh.printUsage()
		return errHelp
	}
}

// resolve passes a requested route through the guard. Only an
// authenticated session reaches a resource view; unknown routes
// redirect to the default landing.
func (sh *shell) resolve(route string) (string, error) {
	view := sh.guard.Resolve(route)
	switch view {
	case session.ViewLoading:
		fmt.Fprintln(sh.out, "Loading...")
		return "", errNotAuthorized
	case session.ViewLogin:
		fmt.Fprintln(sh.out, "Please login first: admin login")
		return "", errNotAuthorized
	}
	if view != route {
		sh.trace.Debugf("unknown route %q, redirecting to %q", route, view)
	}
	return view, nil
}

func (sh *shell) login(ctx context.Context) error {
	fmt.Fprint(sh.out, "Username: ")
	scanner := bufio.NewScanner(sh.in)
	if !scanner.Scan() {
		return errors.New("reading username")
	}
	name := core.CleanString(scanner.Text())

	fmt.Fprint(sh.out, "Password: ")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Fprintln(sh.out)
	if err != nil {
		return errors.Wrap(err, "reading password")
	}

	if !sh.store.Login(ctx, session.Credentials{Name: name, Password: string(pwd)}) {
		sh.notif.Error("Login failed: check your credentials")
		return errors.New("login failed")
	}
	sh.notif.Success(fmt.Sprintf("Welcome, %s", sh.store.User().Name))
	return nil
}

func (sh *shell) status() error {
	state := sh.guard.State()
	fmt.Fprintf(sh.out, "session: %s\n", state)
	if state == session.StateAuthenticated {
		fmt.Fprintf(sh.out, "user: %s\n", sh.store.User().Name)
	}
	return nil
}

// dashboard is the default landing: a per-resource record count.
func (sh *shell) dashboard(ctx context.Context) error {
	if _, err := sh.resolve(session.DefaultLanding); err != nil {
		return err
	}
	for _, name := range sh.routeNames() {
		view := sh.views[name]
		view.fetch(ctx)
		fmt.Fprintf(sh.out, "%-20s %d\n", name, view.count())
	}
	return nil
}

func (sh *shell) list(ctx context.Context, args []string) error {
	if len(args) < 1 {
		sh.printUsage()
		return errHelp
	}
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	offset := fs.Int("offset", 0, "Paging offset (applications only).")
	limit := fs.Int("limit", 0, "Paging limit (applications only).")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	route, err := sh.resolve(args[0])
	if err != nil {
		return err
	}
	if route != args[0] {
		return sh.dashboard(ctx)
	}
	view := sh.views[route]

	// applications page server-side; other resources return the full
	// collection and are sliced client-side if at all
	if route == "applications" && *limit > 0 {
		return sh.listApplicationsPage(ctx, *offset, *limit)
	}

	view.fetch(ctx)
	renderTable(sh.out, view.headers, view.rows())
	return nil
}

func (sh *shell) listApplicationsPage(ctx context.Context, offset, limit int) error {
	items, total, err := sh.apps.ListPage(ctx, offset, limit)
	if err != nil {
		sh.notif.Error("Failed to load applications")
		return err
	}
	rows := make([][]string, 0, len(items))
	for _, app := range items {
		rows = append(rows, applicationRow(app))
	}
	renderTable(sh.out, applicationHeaders, rows)
	fmt.Fprintf(sh.out, "total: %d\n", total)
	return nil
}

func (sh *shell) get(ctx context.Context, args []string) error {
	if len(args) < 1 {
		sh.printUsage()
		return errHelp
	}
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	id := fs.String("id", "", "The record id.")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if *id == "" {
		fs.Usage()
		return errHelp
	}

	route, err := sh.resolve(args[0])
	if err != nil {
		return err
	}
	if route != args[0] {
		return errUnknownResource
	}
	out, err := sh.views[route].get(ctx, *id)
	if err != nil {
		return err
	}
	fmt.Fprintln(sh.out, out)
	return nil
}

func (sh *shell) submit(ctx context.Context, args []string, update bool) error {
	if len(args) < 1 {
		sh.printUsage()
		return errHelp
	}
	name := "create"
	if update {
		name = "update"
	}
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	id := fs.String("id", "", "The record id (update only).")
	file := fs.String("file", "", "Path to the JSON payload.")
	media := fs.String("media", "", "Path to an image to upload first.")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if *file == "" || (update && *id == "") || (!update && *id != "") {
		fs.Usage()
		return errHelp
	}

	route, err := sh.resolve(args[0])
	if err != nil {
		return err
	}
	if route != args[0] {
		return errUnknownResource
	}
	return sh.views[route].submit(ctx, *id, *file, *media)
}

func (sh *shell) remove(ctx context.Context, args []string) error {
	if len(args) < 1 {
		sh.printUsage()
		return errHelp
	}
	fs := flag.NewFlagSet("remove", flag.ExitOnError)
	id := fs.String("id", "", "The record id.")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if *id == "" {
		fs.Usage()
		return errHelp
	}

	route, err := sh.resolve(args[0])
	if err != nil {
		return err
	}
	if route != args[0] {
		return errUnknownResource
	}
	return sh.views[route].remove(ctx, *id)
}
