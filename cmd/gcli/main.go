package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/herrhotzenplotz/gcli-go/internal/adapter/cli"
	"github.com/herrhotzenplotz/gcli-go/internal/config"
	"github.com/herrhotzenplotz/gcli-go/internal/gcli/facade"
	"github.com/herrhotzenplotz/gcli-go/internal/gcli/forge"
	"github.com/herrhotzenplotz/gcli-go/internal/gcli/forge/bugzilla"
	"github.com/herrhotzenplotz/gcli-go/internal/gcli/forge/gitea"
	"github.com/herrhotzenplotz/gcli-go/internal/gcli/forge/github"
	"github.com/herrhotzenplotz/gcli-go/internal/gcli/forge/gitlab"
	"github.com/herrhotzenplotz/gcli-go/internal/gcli/gitremote"
	"github.com/herrhotzenplotz/gcli-go/internal/gcli/review"
	"github.com/herrhotzenplotz/gcli-go/internal/gcli/review/store"
	"github.com/herrhotzenplotz/gcli-go/internal/gclictx"
	"github.com/herrhotzenplotz/gcli-go/internal/gclierr"
	"github.com/herrhotzenplotz/gcli-go/internal/gclipath"
	"github.com/herrhotzenplotz/gcli-go/internal/gcliog"
)

// version is stamped at build time via -ldflags; the pristine default
// marks a source checkout run with `go run`.
var version = "v0.0.0-dev"

func main() {
	if err := run(); err != nil {
		log.Println(err)
		var gerr *gclierr.Error
		if errors.As(err, &gerr) {
			os.Exit(gerr.ExitCode())
		}
		os.Exit(2)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	backendFlag := parseBackendFlag(os.Args[1:])

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "accounts",
		EnvPrefix:   "GCLI",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	backendName := backendFlag
	if backendName == "" {
		backendName = soleConfiguredBackend(cfg)
	}
	if backendName == "" {
		backendName = "github"
	}

	gforge, err := parseForge(backendName)
	if err != nil {
		return err
	}

	lookup := config.NewAccountLookup(cfg)
	account, _ := lookup.DefaultAccount(gforge)

	capTable, err := buildCapability(gforge, account)
	if err != nil {
		return err
	}

	gctx := gclictx.New(gforge, lookup, nil)

	repoDir, err := os.Getwd()
	if err != nil {
		repoDir = "."
	}
	remote := gitremote.New(repoDir)

	fac := &facade.Facade{
		Cap:        capTable,
		Ctx:        gctx,
		Infer:      remote,
		IsBugzilla: gforge == gclictx.ForgeBugzilla,
	}

	owner, repo, _ := remote.InferOwnerRepo()

	var registry *store.Store
	if dbPath := reviewStorePath(cfg); dbPath != "" {
		registry, err = store.New(dbPath)
		if err != nil {
			return fmt.Errorf("opening review session registry: %w", err)
		}
		defer registry.Close()
	}

	logger := gcliog.New("gcli")

	sessionFactory := func(path gclipath.Path) *review.Session {
		return &review.Session{
			Facade:   fac,
			Path:     path,
			CacheDir: cfg.Cache.Directory,
			Editor:   review.CommandEditor{},
			Prompt:   review.StdPrompter{},
			Logger:   logger,
			Registry: registry,
		}
	}

	root := cli.NewRootCommand(cli.Dependencies{
		Facade:       fac,
		Ctx:          gctx,
		Session:      sessionFactory,
		Registry:     registry,
		DefaultOwner: owner,
		DefaultRepo:  repo,
		Version:      version,
	})

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		return err
	}
	return nil
}

// parseBackendFlag extracts --backend/-b from args without disturbing the
// rest, since cobra's own flag set is built after a forge is already
// locked in and cannot itself decide which Capability table to use.
func parseBackendFlag(args []string) string {
	fs := pflag.NewFlagSet("gcli-backend", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Usage = func() {}
	var backend string
	fs.StringVarP(&backend, "backend", "b", "", "")
	_ = fs.Parse(args)
	return backend
}

func soleConfiguredBackend(cfg config.Config) string {
	if len(cfg.Accounts) == 1 {
		return cfg.Accounts[0].Forge
	}
	for _, a := range cfg.Accounts {
		if a.Default {
			return a.Forge
		}
	}
	return ""
}

func parseForge(name string) (gclictx.Forge, error) {
	switch name {
	case "github":
		return gclictx.ForgeGitHub, nil
	case "gitlab":
		return gclictx.ForgeGitLab, nil
	case "gitea":
		return gclictx.ForgeGitea, nil
	case "bugzilla":
		return gclictx.ForgeBugzilla, nil
	default:
		return 0, gclierr.Usagef("unknown backend %q (want github|gitlab|gitea|bugzilla)", name)
	}
}

func buildCapability(gforge gclictx.Forge, account gclictx.Account) (*forge.Capability, error) {
	switch gforge {
	case gclictx.ForgeGitHub:
		return github.New(account.Token, account.BaseURL)
	case gclictx.ForgeGitLab:
		return gitlab.New(account.Token, account.BaseURL), nil
	case gclictx.ForgeGitea:
		return gitea.New(account.Token, account.BaseURL), nil
	case gclictx.ForgeBugzilla:
		return bugzilla.New(account.Token, account.BaseURL), nil
	default:
		return nil, gclierr.Usagef("unknown backend")
	}
}

func reviewStorePath(cfg config.Config) string {
	if cfg.Cache.Directory == "" {
		return ""
	}
	return filepath.Join(cfg.Cache.Directory, "review-sessions.db")
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "gcli"))
	}
	return paths
}
