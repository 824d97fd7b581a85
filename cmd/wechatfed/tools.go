package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pevans/wechatfed/config"
	"github.com/pevans/wechatfed/failure"
	"github.com/pevans/wechatfed/logger"
	"github.com/pevans/wechatfed/tools"
	"github.com/sirupsen/logrus"
)

// loadConfig loads the configuration and a logger that writes to stderr,
// leaving stdout for results. Close the returned closer before exiting.
func loadConfig() (*config.Config, *logrus.Logger, io.Closer) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, logCloser, err := logger.New(cfg.Log.Level, cfg.Log.File, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	return cfg, log, logCloser
}

// runTool builds the service, runs call and prints its result. Interrupts
// cancel the call.
func runTool(call func(ctx context.Context, svc *tools.Service) (string, error)) {
	cfg, log, logCloser := loadConfig()
	defer logCloser.Close()

	svc, err := tools.FromConfig(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logCloser.Close()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	out, err := call(ctx, svc)
	stop()

	if cerr := svc.Close(); cerr != nil {
		log.WithError(cerr).Warn("failed to close service")
	}
	if err != nil {
		printFailure(err)
		logCloser.Close()
		os.Exit(1)
	}

	fmt.Println(out)
}

func printFailure(err error) {
	var f *failure.Error
	if !errors.As(err, &f) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", f.Message)
	fmt.Fprintf(os.Stderr, "Suggestion: %s\n", f.Suggestion)
}

// listFlags registers the flags shared by the list tools.
func listFlags(fs *flag.FlagSet, limit *int, format, detail *string) {
	fs.IntVar(limit, "limit", *limit, "Maximum number of articles (1-50)")
	fs.StringVar(format, "format", *format, "Output format (json, markdown)")
	fs.StringVar(detail, "detail", *detail, "Detail level (concise, detailed)")
}

func handleSearch(args []string) {
	in := tools.DefaultSearchInput()

	fs := flag.NewFlagSet("search", flag.ExitOnError)
	listFlags(fs, &in.Limit, &in.Format, &in.Detail)
	fs.IntVar(&in.Page, "page", in.Page, "Result page, starting at 1")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wechatfed search [flags] <query>")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	in.Query = strings.Join(fs.Args(), " ")

	runTool(func(ctx context.Context, svc *tools.Service) (string, error) {
		return svc.Search(ctx, in)
	})
}

func handleArticle(args []string) {
	in := tools.DefaultArticleInput()

	fs := flag.NewFlagSet("article", flag.ExitOnError)
	fs.BoolVar(&in.IncludeContent, "content", in.IncludeContent, "Include the article body")
	fs.StringVar(&in.Format, "format", in.Format, "Output format (json, markdown)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wechatfed article [flags] <article-id-or-url>")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(1)
	}
	in.ArticleID = fs.Arg(0)

	runTool(func(ctx context.Context, svc *tools.Service) (string, error) {
		return svc.Article(ctx, in)
	})
}

func handleAccount(args []string) {
	in := tools.DefaultAccountInput()

	fs := flag.NewFlagSet("account", flag.ExitOnError)
	listFlags(fs, &in.Limit, &in.Format, &in.Detail)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wechatfed account [flags] <account-name>")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	in.AccountName = strings.Join(fs.Args(), " ")

	runTool(func(ctx context.Context, svc *tools.Service) (string, error) {
		return svc.Account(ctx, in)
	})
}

func handleTrending(args []string) {
	in := tools.DefaultTrendingInput()

	fs := flag.NewFlagSet("trending", flag.ExitOnError)
	listFlags(fs, &in.Limit, &in.Format, &in.Detail)
	fs.StringVar(&in.Category, "category", in.Category, "Category (hot, tech, finance, entertainment)")
	fs.Parse(args)

	runTool(func(ctx context.Context, svc *tools.Service) (string, error) {
		return svc.Trending(ctx, in)
	})
}
