package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sushihentaime/blogcms/internal/blogclient"
)

const defaultBaseURL = "http://localhost:8080"

type tokenData struct {
	Token string `json:"token"`
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	global := flag.NewFlagSet("blogctl", flag.ExitOnError)
	baseURL := global.String("api", envOr("BLOGCTL_API", defaultBaseURL), "API base URL")
	tokenPath := global.String("token", defaultTokenPath(), "token file path")
	_ = global.Parse(os.Args[1:])

	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	token, _ := readToken(*tokenPath)
	client := blogclient.NewClient(*baseURL, blogclient.WithToken(token))
	store := blogclient.NewStore(client, blogclient.NewLogNotifier(logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch args[0] {
	case "auth":
		err = handleAuth(ctx, client, *tokenPath, args[1:])
	case "blogs":
		err = handleBlogs(ctx, store, args[1:])
	case "upload":
		err = handleUpload(ctx, store, args[1:])
	case "stats":
		err = handleStats(ctx, store, args[1:])
	case "visit":
		err = handleVisit(ctx, store, args[1:])
	case "watch":
		err = handleWatch(ctx, store, logger, args[1:])
	default:
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		os.Exit(1)
	}
}

func handleAuth(ctx context.Context, client *blogclient.Client, tokenPath string, args []string) error {
	if len(args) == 0 {
		return usageError("usage: blogctl auth <register|activate|login|logout>")
	}

	fs := flag.NewFlagSet("auth "+args[0], flag.ExitOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	token := fs.String("activation-token", "", "activation token from the email")
	_ = fs.Parse(args[1:])

	switch args[0] {
	case "register":
		resp, err := client.Register(ctx, *name, *email, *password)
		if err != nil {
			return report(err)
		}
		fmt.Println(resp.Message)
	case "activate":
		resp, err := client.Activate(ctx, *token)
		if err != nil {
			return report(err)
		}
		fmt.Println(resp.Message)
	case "login":
		resp, err := client.Login(ctx, *email, *password)
		if err != nil {
			return report(err)
		}
		if err := saveToken(tokenPath, resp.Token.Token); err != nil {
			return report(err)
		}
		fmt.Println("logged in until", resp.Token.Expiry.Format(time.RFC1123))
	case "logout":
		if _, err := client.Logout(ctx); err != nil {
			return report(err)
		}
		if err := os.Remove(tokenPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return report(err)
		}
		fmt.Println("logged out")
	default:
		return usageError("usage: blogctl auth <register|activate|login|logout>")
	}

	return nil
}

func handleBlogs(ctx context.Context, store *blogclient.Store, args []string) error {
	if len(args) == 0 {
		return usageError("usage: blogctl blogs <list|get|category|featured|create|edit|feature|delete>")
	}

	fs := flag.NewFlagSet("blogs "+args[0], flag.ExitOnError)
	id := fs.String("id", "", "blog id")
	category := fs.String("category", "", "category")
	title := fs.String("title", "", "title")
	slug := fs.String("slug", "", "slug")
	description := fs.String("description", "", "short description")
	contentFile := fs.String("content-file", "", "markdown file with the blog content")
	image := fs.String("image", "", "image URL or data URI")
	tags := fs.String("tags", "", "comma separated tags")
	_ = fs.Parse(args[1:])

	var err error
	switch args[0] {
	case "list":
		if err = store.GetAllBlogs(ctx); err == nil {
			printJSON(store.State().Blogs)
		}
	case "get":
		if err = store.GetByID(ctx, *id); err == nil {
			printJSON(store.State().Blog)
		}
	case "category":
		if err = store.GetByCategory(ctx, *category); err == nil {
			printJSON(store.State().Blogs)
		}
	case "featured":
		if err = store.GetFeatured(ctx); err == nil {
			printJSON(store.State().Featured)
		}
	case "create":
		in := blogclient.BlogInput{
			Title:       *title,
			Slug:        *slug,
			Description: *description,
			Image:       *image,
			Category:    *category,
			Tags:        splitTags(*tags),
		}
		if in.Content, err = readContent(*contentFile); err != nil {
			return report(err)
		}
		if err = store.CreateBlog(ctx, in); err == nil {
			blogs := store.State().Blogs
			printJSON(blogs[len(blogs)-1])
		}
	case "edit":
		patch := blogclient.BlogPatch{}
		fs.Visit(func(f *flag.Flag) {
			v := f.Value.String()
			switch f.Name {
			case "title":
				patch.Title = &v
			case "slug":
				patch.Slug = &v
			case "description":
				patch.Description = &v
			case "image":
				patch.Image = &v
			case "category":
				patch.Category = &v
			case "tags":
				t := splitTags(v)
				patch.Tags = &t
			case "content-file":
				content, rerr := readContent(v)
				if rerr != nil {
					err = rerr
					return
				}
				patch.Content = &content
			}
		})
		if err != nil {
			return report(err)
		}
		if err = store.EditBlog(ctx, *id, patch); err == nil {
			fmt.Println("updated", *id)
		}
	case "feature":
		err = store.ToggleFeatured(ctx, *id)
	case "delete":
		err = store.DeleteBlog(ctx, *id)
	default:
		return usageError("usage: blogctl blogs <list|get|category|featured|create|edit|feature|delete>")
	}

	return err
}

func handleUpload(ctx context.Context, store *blogclient.Store, args []string) error {
	if len(args) != 1 {
		return usageError("usage: blogctl upload <file>")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return report(err)
	}
	defer f.Close()

	if err := store.UploadImage(ctx, filepath.Base(args[0]), f); err != nil {
		return err
	}

	fmt.Println(store.State().UploadedURL)
	return nil
}

func handleStats(ctx context.Context, store *blogclient.Store, args []string) error {
	if len(args) == 0 {
		return usageError("usage: blogctl stats <month|category|total|visits|all>")
	}

	switch args[0] {
	case "month":
		if err := store.FetchMonthlyStats(ctx); err != nil {
			return err
		}
		printJSON(store.State().MonthlyStats)
	case "category":
		if err := store.FetchCategoryStats(ctx); err != nil {
			return err
		}
		printJSON(store.State().CategoryStats)
	case "total":
		if err := store.FetchTotalBlogs(ctx); err != nil {
			return err
		}
		fmt.Println(store.State().TotalBlogs)
	case "visits":
		if err := store.FetchVisitStats(ctx); err != nil {
			return err
		}
		printJSON(store.State().VisitStats)
	case "all":
		// each fetch owns its status entry, so they can run together
		done := make(chan error, 3)
		go func() { done <- store.FetchMonthlyStats(ctx) }()
		go func() { done <- store.FetchCategoryStats(ctx) }()
		go func() { done <- store.FetchTotalBlogs(ctx) }()

		var errs []error
		for i := 0; i < 3; i++ {
			errs = append(errs, <-done)
		}

		st := store.State()
		printJSON(map[string]any{
			"monthly":  st.MonthlyStats,
			"category": st.CategoryStats,
			"total":    st.TotalBlogs,
			"status":   st.Status,
		})
		return errors.Join(errs...)
	default:
		return usageError("usage: blogctl stats <month|category|total|visits|all>")
	}

	return nil
}

func handleVisit(ctx context.Context, store *blogclient.Store, args []string) error {
	if len(args) != 1 {
		return usageError("usage: blogctl visit <page>")
	}
	return store.RecordVisit(ctx, args[0])
}

func handleWatch(ctx context.Context, store *blogclient.Store, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	interval := fs.Duration("interval", 30*time.Second, "refresh interval")
	_ = fs.Parse(args)
	if *interval <= 0 {
		return usageError("usage: blogctl watch [-interval 30s]: interval must be positive")
	}

	unsubscribe := store.Subscribe(func(st blogclient.State) {
		if st.StatusOf(blogclient.ActionGetAllBlogs) == blogclient.StatusSucceeded {
			logger.Info("blogs refreshed", slog.Int("count", len(st.Blogs)))
		}
	})
	defer unsubscribe()

	_ = store.GetAllBlogs(ctx)
	store.AutoRefresh(ctx, *interval)
	return nil
}

func splitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func readContent(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

// report prints errors that did not already go through the store's notifier.
func report(err error) error {
	fmt.Fprintln(os.Stderr, "error:", err)
	return err
}

func usageError(msg string) error {
	fmt.Fprintln(os.Stderr, msg)
	return errors.New(msg)
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "json:", err)
		return
	}
	fmt.Println(string(b))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.blogctl-token.json"
	}
	return filepath.Join(home, ".blogctl", "token.json")
}

func saveToken(path, token string) error {
	if token == "" {
		return errors.New("empty token")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tokenData{Token: token}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func readToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var td tokenData
	if err := json.Unmarshal(data, &td); err != nil {
		return "", err
	}
	return td.Token, nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage: blogctl [-api URL] [-token FILE] <command> [args]

commands:
  auth register -name N -email E -password P
  auth activate -activation-token T
  auth login -email E -password P
  auth logout
  blogs list | get -id ID | category -category C | featured
  blogs create -title T -slug S -image URL [-description D] [-content-file F] [-category C] [-tags a,b]
  blogs edit -id ID [-title T] [-slug S] [-image URL] [-content-file F] [-category C] [-tags a,b]
  blogs feature -id ID
  blogs delete -id ID
  upload <file>
  stats month | category | total | visits | all
  visit <page>
  watch [-interval 30s]`)
}
