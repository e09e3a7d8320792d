package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/shakilbd009/lead-finder/internal/auth"
	"github.com/shakilbd009/lead-finder/internal/client"
	"github.com/shakilbd009/lead-finder/internal/config"
	"github.com/shakilbd009/lead-finder/internal/leads"
	"github.com/shakilbd009/lead-finder/internal/model"
	"github.com/shakilbd009/lead-finder/internal/reminder"
	"github.com/shakilbd009/lead-finder/internal/score"
)

const usage = `usage: leadctl <command> [args]

commands:
  login [-remember=false] [email] [password]
  logout
  list
  show [-o text|json|yaml] <id>...
  status <id> <status>
  notes <id> <text>
  tag add|rm <id> <tag>
  followup [-wait] <id> <RFC3339|clear>
  respond <id>
  score [-o text|json|yaml] <id>
  delete <id>
  save [-status s] [-platform p] <position> <company> [location] [url] [tags]`

type app struct {
	cfg       *config.Config
	tokens    *auth.Store
	api       *client.Client
	svc       *leads.Service
	reminders *reminder.Scheduler
	log       *slog.Logger
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := newApp()
	defer a.reminders.Stop()

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		switch {
		case errors.Is(err, client.ErrUnauthorized):
			log.Fatalf("not logged in or session expired, run leadctl login")
		case errors.Is(err, client.ErrNotFound):
			log.Fatalf("%s: lead not found", os.Args[1])
		case errors.Is(err, leads.ErrPlaceholder):
			log.Fatalf("%s: the lead could not be loaded from the server, nothing was changed", os.Args[1])
		}
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

func newApp() *app {
	cfg := config.Load()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel()}))

	tokens := auth.NewStore(cfg.Account)
	if err := tokens.Init(); err != nil {
		// the keychain may be unavailable on headless machines; fall back to
		// a login per process
		logger.Warn("could not read remembered token", "error", err)
	}

	api := client.New(cfg.APIURL, tokens,
		client.WithRateLimit(cfg.RateLimit, 2),
		client.WithLogger(logger),
	)
	reminders := reminder.New(logger)
	svc := leads.NewService(api, logger, leads.WithReminders(reminders, logNotifier{log: logger}))

	return &app{
		cfg:       cfg,
		tokens:    tokens,
		api:       api,
		svc:       svc,
		reminders: reminders,
		log:       logger,
	}
}

func logLevel() slog.Level {
	if os.Getenv("LEADS_DEBUG") != "" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.login(ctx, args)
	case "logout":
		if err := a.tokens.Clear(); err != nil {
			return err
		}
		fmt.Println("logged out")
		return nil
	case "list":
		return a.list(ctx)
	case "show":
		return a.show(ctx, args)
	case "status":
		return a.mutate(ctx, args, 2, func(s *leads.Session, rest []string) (model.Lead, error) {
			return s.SetStatus(ctx, model.Status(rest[0]))
		})
	case "notes":
		return a.mutate(ctx, args, 2, func(s *leads.Session, rest []string) (model.Lead, error) {
			s.EditNotes()
			return s.SaveNotes(ctx, strings.Join(rest, " "))
		})
	case "tag":
		return a.tag(ctx, args)
	case "followup":
		return a.followUp(ctx, args)
	case "respond":
		return a.mutate(ctx, args, 1, func(s *leads.Session, _ []string) (model.Lead, error) {
			return s.MarkResponseReceived(ctx)
		})
	case "score":
		return a.score(ctx, args)
	case "delete":
		return a.delete(ctx, args)
	case "save":
		return a.save(ctx, args)
	case "help", "-h", "--help":
		fmt.Println(usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	remember := fs.Bool("remember", true, "keep the token in the OS keychain for later commands")
	fs.Parse(args)

	email, password := a.cfg.Email, a.cfg.Password
	if fs.NArg() > 0 {
		email = fs.Arg(0)
	}
	if fs.NArg() > 1 {
		password = fs.Arg(1)
	}
	if email == "" || password == "" {
		return errors.New("email and password are required (args or LEADS_EMAIL/LEADS_PASSWORD)")
	}

	tok, err := a.api.Login(ctx, email, password)
	if errors.Is(err, client.ErrUnauthorized) {
		return errors.New("invalid email or password")
	}
	if err != nil {
		return err
	}
	if err := a.tokens.SetToken(tok, *remember); err != nil {
		return err
	}
	if !*remember {
		fmt.Println("logged in, token not saved (-remember=false): later commands stay on the previous login")
		return nil
	}
	fmt.Println("logged in")
	return nil
}

func (a *app) list(ctx context.Context) error {
	all, err := a.svc.List(ctx)
	if err != nil {
		return err
	}
	return printList(os.Stdout, all)
}

func (a *app) show(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	format := fs.String("o", "text", "output format: text, json or yaml")
	fs.Parse(args)
	if fs.NArg() == 0 {
		return errors.New("expected at least one lead id")
	}

	details, err := a.svc.Details(ctx, fs.Args())
	if err != nil {
		return err
	}
	return printLeads(os.Stdout, *format, details)
}

// mutate opens the lead named by args[0] and applies fn with the remaining
// args. want is the minimum number of args including the id.
func (a *app) mutate(ctx context.Context, args []string, want int, fn func(*leads.Session, []string) (model.Lead, error)) error {
	if len(args) < want {
		return fmt.Errorf("expected %d argument(s)\n%s", want, usage)
	}
	sess, err := a.svc.Open(ctx, args[0])
	if err != nil {
		return err
	}
	updated, err := fn(sess, args[1:])
	if err != nil {
		return err
	}
	return printLeads(os.Stdout, "text", []model.Lead{updated})
}

func (a *app) tag(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return errors.New("usage: leadctl tag add|rm <id> <tag>")
	}
	op, rest := args[0], args[1:]
	switch op {
	case "add":
		return a.mutate(ctx, rest, 2, func(s *leads.Session, r []string) (model.Lead, error) {
			return s.AddTag(ctx, strings.Join(r, " "))
		})
	case "rm", "remove":
		return a.mutate(ctx, rest, 2, func(s *leads.Session, r []string) (model.Lead, error) {
			return s.RemoveTag(ctx, strings.Join(r, " "))
		})
	default:
		return fmt.Errorf("unknown tag operation %q", op)
	}
}

func (a *app) followUp(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("followup", flag.ExitOnError)
	wait := fs.Bool("wait", false, "stay running until the reminder fires")
	fs.Parse(args)
	if fs.NArg() != 2 {
		return errors.New("usage: leadctl followup [-wait] <id> <RFC3339|clear>")
	}

	var at *time.Time
	if v := fs.Arg(1); v != "clear" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return fmt.Errorf("follow-up date must be RFC3339 (e.g. 2026-11-01T09:00:00Z): %w", err)
		}
		at = &t
	}

	err := a.mutate(ctx, fs.Args(), 2, func(s *leads.Session, _ []string) (model.Lead, error) {
		return s.SaveFollowUp(ctx, at)
	})
	if err != nil || !*wait || at == nil {
		return err
	}

	id := fs.Arg(0)
	if !a.reminders.Pending(id) {
		fmt.Println("no reminder scheduled")
		return nil
	}
	fmt.Printf("waiting for reminder at %s (Ctrl-C to stop)\n", at.Local().Format(time.RFC1123))
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for a.reminders.Pending(id) {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
	return nil
}

func (a *app) score(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("score", flag.ExitOnError)
	format := fs.String("o", "text", "output format: text, json or yaml")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("usage: leadctl score [-o text|json|yaml] <id>")
	}

	l, err := a.svc.Detail(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	return printScore(os.Stdout, *format, l, score.Calculate(l))
}

func (a *app) delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: leadctl delete <id>")
	}
	sess, err := a.svc.Open(ctx, args[0])
	if err != nil {
		return err
	}
	if err := sess.Delete(ctx); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", args[0])
	return nil
}

func (a *app) save(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("save", flag.ExitOnError)
	status := fs.String("status", string(model.StatusNew), "initial status")
	platform := fs.String("platform", "", "where the lead was found")
	fs.Parse(args)
	if fs.NArg() < 2 {
		return errors.New("usage: leadctl save [-status s] [-platform p] <position> <company> [location] [url] [tags]")
	}

	req := model.CreateRequest{
		Position: fs.Arg(0),
		Company:  fs.Arg(1),
		Location: fs.Arg(2),
		URL:      fs.Arg(3),
		Tags:     model.FlexList(model.SplitList(fs.Arg(4))),
		Status:   *status,
		Platform: *platform,
	}
	l, err := a.svc.Save(ctx, req)
	if err != nil {
		return err
	}
	return printLeads(os.Stdout, "text", []model.Lead{l})
}

// logNotifier delivers reminders to the log. A terminal has no permission
// prompt, so it is always granted.
type logNotifier struct {
	log *slog.Logger
}

func (n logNotifier) Granted() bool { return true }

func (n logNotifier) Notify(title, body string) error {
	n.log.Info(title, "body", body)
	fmt.Printf("\a%s: %s\n", title, body)
	return nil
}
