package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/jrsteele09/book-inventory-client/api/auditlogs"
	"github.com/jrsteele09/book-inventory-client/api/authapi"
	"github.com/jrsteele09/book-inventory-client/api/books"
	"github.com/jrsteele09/book-inventory-client/internal/config"
	"github.com/jrsteele09/book-inventory-client/token/jwt"
)

type command struct {
	name    string
	usage   string
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands []command

func init() {
	commands = []command{
		{"login", "login --email EMAIL [--password PASSWORD]", "Sign in and remember the session", runLogin},
		{"register", "register --first NAME --last NAME --email EMAIL --password PASSWORD", "Create an account", runRegister},
		{"logout", "logout", "Forget the stored session", runLogout},
		{"whoami", "whoami [--refresh]", "Show the signed-in user", runWhoami},
		{"books", "books [--search Q] [--genre G] [--publisher P] [--author A] [--available true|false] [--sort FIELD] [--dir asc|desc] [--page N] [--limit N]", "Search the catalogue", runBooks},
		{"book", "book ID", "Show one book", runBook},
		{"delete-book", "delete-book ID", "Delete a book", runDeleteBook},
		{"upload-image", "upload-image FILE", "Upload a cover image", runUploadImage},
		{"genres", "genres", "List genres", runGenres},
		{"publishers", "publishers", "List publishers", runPublishers},
		{"export-books", "export-books [-o FILE] [--genre G] [--search Q]", "Export the catalogue as CSV", runExportBooks},
		{"audit", "audit [--inventory] [--page N] [--limit N] [--action A] [--status S] [--level L] [--search Q] [--from DATE] [--to DATE]", "List audit log entries", runAudit},
		{"audit-stats", "audit-stats", "Summarise the audit log", runAuditStats},
		{"audit-export", "audit-export [--inventory] [-o FILE]", "Export the audit log as CSV", runAuditExport},
		{"audit-cleanup", "audit-cleanup [--days N]", "Delete audit entries older than N days", runAuditCleanup},
	}
}

func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stderr)
		return errUsage
	}
	switch args[0] {
	case "help", "-h", "--help":
		displayAppname(stdout, config.New().GetAppName())
		printUsage(stdout)
		return nil
	}

	cmd, ok := lookup(args[0])
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		printUsage(stderr)
		return errUsage
	}

	cfg := config.New()
	setupLogging(cfg, stderr)

	a, err := newApp(ctx, cfg, stdin, stdout, stderr)
	if err != nil {
		return err
	}
	defer a.close()
	return a.finish(cmd.run(ctx, a, args[1:]))
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: inventory <command> [flags]")
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range commands {
		fmt.Fprintf(tw, "  %s\t%s\n", c.name, c.summary)
	}
	tw.Flush()
}

// parseFlags parses args for cmd and returns the positional arguments left over.
func (a *app) parseFlags(fs *pflag.FlagSet, cmd string, args []string) ([]string, error) {
	fs.SetOutput(a.stderr)
	fs.Usage = func() {
		c, _ := lookup(cmd)
		fmt.Fprintf(a.stderr, "Usage: inventory %s\n", c.usage)
		fs.PrintDefaults()
	}
	// pflag has already reported the problem and printed the usage.
	if err := fs.Parse(args); err != nil {
		return nil, errUsage
	}
	return fs.Args(), nil
}

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := pflag.NewFlagSet("login", pflag.ContinueOnError)
	email := fs.StringP("email", "e", "", "account email")
	password := fs.StringP("password", "p", "", "password; read from stdin when omitted")
	if _, err := a.parseFlags(fs, "login", args); err != nil {
		return err
	}
	if *password == "" {
		fmt.Fprint(a.stderr, "Password: ")
		line, err := bufio.NewReader(a.stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read password: %w", err)
		}
		*password = strings.TrimRight(line, "\r\n")
	}

	s, err := a.auth.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Logged in as %s <%s> (%s)\n", s.User.FullName(), s.User.Email, s.User.Role)
	return nil
}

func runRegister(ctx context.Context, a *app, args []string) error {
	fs := pflag.NewFlagSet("register", pflag.ContinueOnError)
	var r authapi.Registration
	fs.StringVar(&r.FirstName, "first", "", "first name")
	fs.StringVar(&r.LastName, "last", "", "last name")
	fs.StringVar(&r.Email, "email", "", "account email")
	fs.StringVar(&r.Password, "password", "", "password")
	if _, err := a.parseFlags(fs, "register", args); err != nil {
		return err
	}

	if err := a.auth.Register(ctx, r); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "Account created. Run `inventory login` to sign in.")
	return nil
}

func runLogout(_ context.Context, a *app, _ []string) error {
	a.auth.Logout()
	fmt.Fprintln(a.stdout, "Logged out")
	return nil
}

func runWhoami(ctx context.Context, a *app, args []string) error {
	fs := pflag.NewFlagSet("whoami", pflag.ContinueOnError)
	refresh := fs.Bool("refresh", false, "fetch the profile from the server first")
	if _, err := a.parseFlags(fs, "whoami", args); err != nil {
		return err
	}

	if *refresh {
		if _, err := a.auth.Me(ctx); err != nil {
			return err
		}
	}
	s, ok := a.store.Session()
	if !ok {
		fmt.Fprintln(a.stdout, "Not logged in")
		return errLoginRequired
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	defer tw.Flush()
	fmt.Fprintf(tw, "User\t%s <%s>\n", s.User.FullName(), s.User.Email)
	fmt.Fprintf(tw, "Role\t%s\n", s.User.Role)
	if s.Meta.Location != nil {
		fmt.Fprintf(tw, "Location\t%s\n", *s.Meta.Location)
	}
	if claims, err := jwt.Claims(s.Tokens.AccessToken); err == nil && claims.ExpiresAt != nil {
		fmt.Fprintf(tw, "Expires\t%s (in %s)\n", claims.ExpiresAt.Local().Format(time.RFC1123),
			time.Until(*claims.ExpiresAt).Round(time.Second))
	}
	return nil
}

func runBooks(ctx context.Context, a *app, args []string) error {
	fs := pflag.NewFlagSet("books", pflag.ContinueOnError)
	filters, available := bookFilterFlags(fs)
	sortField := fs.String("sort", books.DefaultSort.Field, "sort field: "+strings.Join(books.SortFields, ", "))
	sortDir := fs.String("dir", string(books.DefaultSort.Dir), "asc or desc")
	page := fs.Int("page", books.DefaultPage.Page, "page number")
	limit := fs.Int("limit", books.DefaultPage.Limit, "page size")
	if _, err := a.parseFlags(fs, "books", args); err != nil {
		return err
	}
	if err := applyAvailability(filters, *available); err != nil {
		return err
	}

	res, err := a.books.Search(ctx, *filters,
		books.Sort{Field: *sortField, Dir: books.SortDir(strings.ToLower(*sortDir))},
		books.Page{Page: *page, Limit: *limit})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tGENRE\tPRICE\tAVAILABLE")
	for _, b := range res.Books {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\t%t\n", b.ID, b.Title, b.Author, b.Genre, b.Price, b.Availability)
	}
	tw.Flush()
	fmt.Fprintf(a.stdout, "Page %d of %d (%d books)\n", res.Page, res.TotalPages, res.Total)
	return nil
}

func bookFilterFlags(fs *pflag.FlagSet) (*books.Filters, *string) {
	f := &books.Filters{}
	fs.StringVar(&f.Search, "search", "", "free text search")
	fs.StringVar(&f.Genre, "genre", "", "genre")
	fs.StringVar(&f.Publisher, "publisher", "", "publisher")
	fs.StringVar(&f.Author, "author", "", "author")
	available := fs.String("available", "", "true or false")
	return f, available
}

func applyAvailability(f *books.Filters, available string) error {
	if available == "" {
		return nil
	}
	v, err := strconv.ParseBool(available)
	if err != nil {
		return fmt.Errorf("%w: --available must be true or false", errUsage)
	}
	f.Availability = &v
	return nil
}

func runBook(ctx context.Context, a *app, args []string) error {
	id, err := singleArg(args, "book")
	if err != nil {
		return err
	}
	b, err := a.books.Get(ctx, id)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	defer tw.Flush()
	fmt.Fprintf(tw, "ID\t%s\n", b.ID)
	fmt.Fprintf(tw, "Title\t%s\n", b.Title)
	fmt.Fprintf(tw, "Author\t%s\n", b.Author)
	fmt.Fprintf(tw, "Publisher\t%s\n", b.Publisher)
	fmt.Fprintf(tw, "Genre\t%s\n", b.Genre)
	fmt.Fprintf(tw, "Price\t%.2f\n", b.Price)
	fmt.Fprintf(tw, "Available\t%t\n", b.Availability)
	if b.ImageURL != "" {
		fmt.Fprintf(tw, "Image\t%s\n", b.ImageURL)
	}
	if b.Description != "" {
		fmt.Fprintf(tw, "Description\t%s\n", b.Description)
	}
	return nil
}

func runDeleteBook(ctx context.Context, a *app, args []string) error {
	id, err := singleArg(args, "delete-book")
	if err != nil {
		return err
	}
	if err := a.books.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Deleted book %s\n", id)
	return nil
}

func runUploadImage(ctx context.Context, a *app, args []string) error {
	path, err := singleArg(args, "upload-image")
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	img, err := a.books.UploadImage(ctx, path, f)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, img.Location())
	return nil
}

func runGenres(ctx context.Context, a *app, _ []string) error {
	return printNames(a.stdout, func() ([]string, error) { return a.books.Genres(ctx) })
}

func runPublishers(ctx context.Context, a *app, _ []string) error {
	return printNames(a.stdout, func() ([]string, error) { return a.books.Publishers(ctx) })
}

func printNames(w io.Writer, list func() ([]string, error)) error {
	names, err := list()
	if err != nil {
		return err
	}
	for _, n := range names {
		fmt.Fprintln(w, n)
	}
	return nil
}

func runExportBooks(ctx context.Context, a *app, args []string) error {
	fs := pflag.NewFlagSet("export-books", pflag.ContinueOnError)
	out := fs.StringP("output", "o", "books.csv", `output file, "-" for stdout`)
	filters, available := bookFilterFlags(fs)
	if _, err := a.parseFlags(fs, "export-books", args); err != nil {
		return err
	}
	if err := applyAvailability(filters, *available); err != nil {
		return err
	}
	return a.writeOutput(*out, func(w io.Writer) (int64, error) {
		return a.books.ExportCSV(ctx, *filters, w)
	})
}

func auditFilterFlags(fs *pflag.FlagSet) *auditlogs.Filters {
	f := &auditlogs.Filters{}
	fs.StringVar(&f.Search, "search", "", "free text search")
	fs.StringVar(&f.Action, "action", "", "action, see audit-stats")
	fs.StringVar(&f.Status, "status", "", "status")
	fs.StringVar(&f.Level, "level", "", "level")
	fs.StringVar(&f.EntityType, "entity", "", "entity type")
	fs.StringVar(&f.StartDate, "from", "", "start date, YYYY-MM-DD")
	fs.StringVar(&f.EndDate, "to", "", "end date, YYYY-MM-DD")
	return f
}

func runAudit(ctx context.Context, a *app, args []string) error {
	fs := pflag.NewFlagSet("audit", pflag.ContinueOnError)
	filters := auditFilterFlags(fs)
	inventory := fs.Bool("inventory", false, "only catalogue changes")
	fs.IntVar(&filters.Page, "page", 1, "page number")
	fs.IntVar(&filters.Limit, "limit", 20, "page size")
	if _, err := a.parseFlags(fs, "audit", args); err != nil {
		return err
	}
	filters.SortBy, filters.SortDir = "created_at", auditlogs.SortDesc

	list := a.audit.List
	if *inventory {
		list = a.audit.Inventory
	}
	res, err := list(ctx, *filters)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tACTION\tSTATUS\tLEVEL\tUSER\tENDPOINT")
	for _, l := range res.Logs {
		user := l.UserID
		if l.UserEmail != nil {
			user = *l.UserEmail
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s %s\n", l.ID, l.CreatedAt.Local().Format(time.DateTime),
			l.Action, l.Status, l.Level, user, l.HTTPMethod, l.Endpoint)
	}
	tw.Flush()
	fmt.Fprintf(a.stdout, "Page %d of %d (%d entries)\n", res.Page, res.TotalPages, res.Total)
	return nil
}

func runAuditStats(ctx context.Context, a *app, _ []string) error {
	stats, err := a.audit.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Total entries: %d\n", stats.TotalLogs)

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	defer tw.Flush()
	for _, c := range stats.LogsByAction {
		fmt.Fprintf(tw, "action\t%s\t%d\n", c.Action, c.Count)
	}
	for _, c := range stats.LogsByStatus {
		fmt.Fprintf(tw, "status\t%s\t%d\n", c.Status, c.Count)
	}
	for _, c := range stats.LogsByLevel {
		fmt.Fprintf(tw, "level\t%s\t%d\n", c.Level, c.Count)
	}
	return nil
}

func runAuditExport(ctx context.Context, a *app, args []string) error {
	fs := pflag.NewFlagSet("audit-export", pflag.ContinueOnError)
	filters := auditFilterFlags(fs)
	inventory := fs.Bool("inventory", false, "only catalogue changes")
	out := fs.StringP("output", "o", "", `output file, "-" for stdout (default audit-logs-<date>.csv)`)
	if _, err := a.parseFlags(fs, "audit-export", args); err != nil {
		return err
	}
	if *out == "" {
		*out = auditlogs.ExportFileName(*inventory)
	}

	export := a.audit.Export
	if *inventory {
		export = a.audit.InventoryExport
	}
	return a.writeOutput(*out, func(w io.Writer) (int64, error) {
		return export(ctx, *filters, w)
	})
}

func runAuditCleanup(ctx context.Context, a *app, args []string) error {
	fs := pflag.NewFlagSet("audit-cleanup", pflag.ContinueOnError)
	days := fs.Int("days", auditlogs.DefaultRetentionDays, "keep entries newer than this")
	if _, err := a.parseFlags(fs, "audit-cleanup", args); err != nil {
		return err
	}
	n, err := a.audit.Cleanup(ctx, *days)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Deleted %d entries older than %d days\n", n, *days)
	return nil
}

func singleArg(args []string, cmd string) (string, error) {
	if len(args) != 1 || strings.HasPrefix(args[0], "-") {
		c, _ := lookup(cmd)
		return "", fmt.Errorf("%w: inventory %s", errUsage, c.usage)
	}
	return args[0], nil
}

// writeOutput runs write against path, or stdout for "-". A failed export
// does not leave a partial file behind.
func (a *app) writeOutput(path string, write func(io.Writer) (int64, error)) error {
	if path == "-" {
		_, err := write(a.stdout)
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	n, err := write(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return err
	}
	fmt.Fprintf(a.stdout, "Wrote %d bytes to %s\n", n, path)
	return nil
}
