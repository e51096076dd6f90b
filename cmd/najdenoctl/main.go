// Command najdenoctl is the sync and browse client for a lost & found
// items API. It keeps a durable local snapshot of the remote collection
// so browsing and filtering keep working when the network does not.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/erazemk/najdeno/internal/client"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/reconcile"
	"github.com/erazemk/najdeno/internal/snapshot"
	"github.com/erazemk/najdeno/internal/view"
)

const usageText = `Usage: najdenoctl [flags] <command> [command flags]

Commands:
  sync               fetch the remote collection and merge it into the local snapshot
  list               show items from the local snapshot
  submit             report a found item (uploads images, creates the item, syncs)
  return <id>        mark an item as returned to its owner (admin)
  delete <id>        delete an item
  stats              show collection totals from the local snapshot
  login              obtain and store an auth token

Flags:
  -server <url>      API base URL (default: $NAJDENO_SERVER or http://localhost:8080)
  -cache <path>      snapshot database path (default: najdenoctl.sqlite3)
  -token-file <path> bearer token file (default: najdenoctl.token)
  -h, -help          show this help and exit

Command flags:
  list:    -search <text> -date <all|today|yesterday|week|month|custom>
           -on <YYYY-MM-DD> -sort <newest|oldest> -returned -mine <email>
  submit:  -name <text> -location <text> -email <addr> [-desc <text>]
           [-phone <number>] -image <path> (repeatable, 1-4 images)
  return:  [-notes <text>] [-by <email>]
  login:   -email <addr> -password <text>
`

// app carries the shared state every command needs.
type app struct {
	client *client.Client
	cache  *snapshot.Store

	tokenFile string
}

func main() {
	fs := flag.NewFlagSet("najdenoctl", flag.ContinueOnError)

	server := os.Getenv("NAJDENO_SERVER")
	if server == "" {
		server = "http://localhost:8080"
	}
	fs.StringVar(&server, "server", server, "")

	var cachePath string
	fs.StringVar(&cachePath, "cache", "najdenoctl.sqlite3", "")

	var tokenFile string
	fs.StringVar(&tokenFile, "token-file", "najdenoctl.token", "")

	fs.Usage = func() { fmt.Fprint(os.Stdout, usageText) }

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(1)
	}

	cache, err := snapshot.Open(cachePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: opening snapshot: %v\n", err)
		os.Exit(1)
	}
	defer cache.Close()

	token, _ := os.ReadFile(tokenFile)
	a := &app{
		client:    client.New(server, strings.TrimSpace(string(token))),
		cache:     cache,
		tokenFile: tokenFile,
	}

	command := fs.Arg(0)
	args := fs.Args()[1:]

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	switch command {
	case "sync":
		err = a.sync(ctx)
	case "list":
		err = a.list(ctx, args)
	case "submit":
		err = a.submit(ctx, args)
	case "return":
		err = a.markReturned(ctx, args)
	case "delete":
		err = a.delete(ctx, args)
	case "stats":
		err = a.stats()
	case "login":
		err = a.login(ctx, args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		fs.Usage()
		os.Exit(1)
	}

	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			os.Remove(a.tokenFile)
			fmt.Fprintln(os.Stderr, "error: not authorized; stored token cleared, run 'najdenoctl login'")
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// sync fetches the remote collection and merges it into the snapshot.
// When the fetch fails the previous snapshot is kept untouched and the
// error is surfaced, so a flaky network never loses local state.
func (a *app) sync(ctx context.Context) error {
	local, err := a.cache.Load()
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}

	remote, err := a.client.ListItems(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sync failed, keeping cached snapshot (%d items)\n", len(local))
		return err
	}

	merged := reconcile.Merge(local, remote)
	if err := a.cache.Save(merged); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}

	fmt.Printf("Synced %d remote items, snapshot now holds %d.\n", len(remote), len(merged))
	return nil
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	criteria := view.DefaultCriteria()
	fs.StringVar(&criteria.Search, "search", "", "")
	date := fs.String("date", string(view.DateAll), "")
	on := fs.String("on", "", "")
	order := fs.String("sort", string(view.SortNewest), "")
	returned := fs.Bool("returned", false, "")
	mine := fs.String("mine", "", "")
	if err := fs.Parse(args); err != nil {
		return err
	}

	criteria.Date = view.DateFilter(*date)
	criteria.Sort = view.SortOrder(*order)
	if *on != "" {
		day, err := time.ParseInLocation("2006-01-02", *on, time.Local)
		if err != nil {
			return fmt.Errorf("parsing -on date: %w", err)
		}
		criteria.Date = view.DateCustom
		criteria.CustomDate = day
	}

	items, err := a.cache.Load()
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}
	if *mine != "" {
		items = view.ForReporter(items, *mine)
	}

	now := time.Now()
	if *returned {
		items = view.ApplyReturned(view.Returned(items), criteria, now)
	} else {
		items = view.Apply(view.Active(items), criteria, now)
	}

	if len(items) == 0 {
		fmt.Println("No items.")
		return nil
	}
	for _, it := range items {
		printItem(it)
	}
	return nil
}

// imageFlags collects repeated -image flags.
type imageFlags []string

func (f *imageFlags) String() string { return strings.Join(*f, ",") }

func (f *imageFlags) Set(v string) error {
	*f = append(*f, v)
	return nil
}

func (a *app) submit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("submit", flag.ContinueOnError)
	var item model.Item
	fs.StringVar(&item.ItemName, "name", "", "")
	fs.StringVar(&item.Description, "desc", "", "")
	fs.StringVar(&item.Location, "location", "", "")
	fs.StringVar(&item.Email, "email", "", "")
	fs.StringVar(&item.Phone, "phone", "", "")
	var images imageFlags
	fs.Var(&images, "image", "")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if len(images) < model.MinImages || len(images) > model.MaxImages {
		return fmt.Errorf("between %d and %d -image flags required", model.MinImages, model.MaxImages)
	}

	// Ask for upload slots, push the image bytes, then create the item
	// referencing the resulting public URLs.
	specs := make([]client.FileSpec, len(images))
	for i, path := range images {
		mime, err := imageMIME(path)
		if err != nil {
			return err
		}
		specs[i] = client.FileSpec{FileName: filepath.Base(path), FileType: mime}
	}

	targets, err := a.client.RequestUploadURLs(ctx, specs)
	if err != nil {
		return fmt.Errorf("requesting upload urls: %w", err)
	}
	if len(targets) != len(images) {
		return fmt.Errorf("expected %d upload urls, got %d", len(images), len(targets))
	}

	for i, path := range images {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if err := a.client.UploadImage(ctx, targets[i].UploadURL, specs[i].FileType, data); err != nil {
			return fmt.Errorf("uploading %s: %w", path, err)
		}
		item.Images = append(item.Images, targets[i].ImageURL)
	}

	created, err := a.client.CreateItem(ctx, item)
	if err != nil {
		return err
	}

	if err := a.mergeOne(created); err != nil {
		return err
	}

	fmt.Printf("Created item %s.\n", created.ID)
	return nil
}

func (a *app) markReturned(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("return", flag.ContinueOnError)
	notes := fs.String("notes", "", "")
	by := fs.String("by", "", "")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: najdenoctl return [-notes ...] [-by ...] <id>")
	}

	updated, err := a.client.MarkReturned(ctx, fs.Arg(0), *notes, *by)
	if err != nil {
		return err
	}

	if err := a.mergeOne(updated); err != nil {
		return err
	}

	fmt.Printf("Item %s marked returned.\n", updated.ID)
	return nil
}

func (a *app) delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: najdenoctl delete <id>")
	}
	id := args[0]

	if err := a.client.DeleteItem(ctx, id); err != nil {
		return err
	}

	// Reflect the deletion locally so the item disappears without a sync.
	items, err := a.cache.Load()
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}
	for i := range items {
		if items[i].ID == id {
			items[i].Deleted = true
		}
	}
	if err := a.cache.Save(items); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}

	fmt.Printf("Item %s deleted.\n", id)
	return nil
}

func (a *app) stats() error {
	items, err := a.cache.Load()
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}

	s := view.Collect(items, time.Now())
	fmt.Printf("Total:    %d\n", s.Total)
	fmt.Printf("Active:   %d\n", s.Active)
	fmt.Printf("Returned: %d\n", s.Returned)
	fmt.Printf("Today:    %d\n", s.Today)

	if savedAt, ok, err := a.cache.SavedAt(); err == nil && ok {
		fmt.Printf("Snapshot: %s\n", savedAt.Local().Format(time.RFC1123))
	}
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "")
	password := fs.String("password", "", "")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("usage: najdenoctl login -email <addr> -password <text>")
	}

	token, err := a.client.Login(ctx, *email, *password)
	if err != nil {
		return err
	}

	if err := os.WriteFile(a.tokenFile, []byte(token+"\n"), 0600); err != nil {
		return fmt.Errorf("storing token: %w", err)
	}

	fmt.Printf("Logged in as %s.\n", *email)
	return nil
}

// mergeOne folds a single authoritative record into the snapshot.
func (a *app) mergeOne(item model.Item) error {
	items, err := a.cache.Load()
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}
	if err := a.cache.Save(reconcile.Merge(items, []model.Item{item})); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

func printItem(it model.Item) {
	status := "active"
	if it.Returned {
		status = "returned"
	}

	when := "unknown date"
	if it.Timestamp != 0 {
		when = time.UnixMilli(it.Timestamp).Local().Format("2006-01-02 15:04")
	}

	fmt.Printf("%s  %-10s %s\n", it.ID, status, it.ItemName)
	fmt.Printf("    found at %s on %s, contact %s", it.Location, when, it.Email)
	if it.Phone != "" {
		fmt.Printf(" / %s", it.Phone)
	}
	fmt.Println()
	if it.Description != "" {
		fmt.Printf("    %s\n", it.Description)
	}
	if it.Returned && it.ReturnedDate != 0 {
		fmt.Printf("    returned %s", time.UnixMilli(it.ReturnedDate).Local().Format("2006-01-02"))
		if it.ReturnedBy != "" {
			fmt.Printf(" by %s", it.ReturnedBy)
		}
		fmt.Println()
	}
}

func imageMIME(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg", nil
	case ".png":
		return "image/png", nil
	case ".webp":
		return "image/webp", nil
	default:
		return "", fmt.Errorf("%s: images must be .jpg, .png, or .webp", path)
	}
}
