// Package cli implements the recipekeeper command line: account signup and
// login, contributions with attachments, and listing or searching the
// submission ledger. It talks to the configured stores directly.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/recipekeeper/internal/blobstore"
	"github.com/dmitrijs2005/recipekeeper/internal/config"
	"github.com/dmitrijs2005/recipekeeper/internal/cryptox"
	"github.com/dmitrijs2005/recipekeeper/internal/logging"
	"github.com/dmitrijs2005/recipekeeper/internal/repositories/repomanager"
	"github.com/dmitrijs2005/recipekeeper/internal/services"
)

type cliState struct {
	configPath  string
	storage     string
	dataDir     string
	contentRoot string
	verbose     bool

	in     io.Reader
	reader *bufio.Reader
	out    io.Writer
	errOut io.Writer
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	st := &cliState{}

	cmd := &cobra.Command{
		Use:   "recipekeeper",
		Short: "Community recipe collection",
		Long: `recipekeeper stores accounts and recipe submissions with their images, videos
and audio clips. Settings come from the same JSON file, environment and .env
file as the server; the flags below override them.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			st.in = cmd.InOrStdin()
			st.reader = bufio.NewReader(st.in)
			st.out = cmd.OutOrStdout()
			st.errOut = cmd.ErrOrStderr()
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&st.configPath, "config", "c", "", "JSON config file")
	flags.StringVar(&st.storage, "storage", "", "storage backend (sqlite, ledger, postgres, memory)")
	flags.StringVar(&st.dataDir, "data-dir", "", "directory of the database or ledger")
	flags.StringVar(&st.contentRoot, "content-root", "", "directory of attachment files")
	flags.BoolVarP(&st.verbose, "verbose", "v", false, "log store activity to stderr")

	cmd.AddCommand(
		st.newSignupCmd(),
		st.newLoginCmd(),
		st.newContributeCmd(),
		st.newListCmd(),
		st.newSearchCmd(),
		st.newShowCmd(),
	)
	return cmd
}

// backend is the opened storage for one command invocation.
type backend struct {
	cfg         *config.Config
	repos       repomanager.RepositoryManager
	accounts    *services.AccountService
	submissions *services.SubmissionService
}

func (b *backend) Close() error {
	return b.repos.Close()
}

func (st *cliState) loadConfig() (*config.Config, error) {
	var args []string
	if st.configPath != "" {
		args = []string{"-c", st.configPath}
	}

	cfg, err := config.LoadConfig(args)
	if err != nil {
		return nil, err
	}

	if st.storage != "" {
		cfg.StorageBackend = st.storage
	}
	if st.dataDir != "" {
		cfg.DataDir = st.dataDir
	}
	if st.contentRoot != "" {
		cfg.ContentBackend = blobstore.BackendDisk
		cfg.ContentRoot = st.contentRoot
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (st *cliState) open(ctx context.Context) (*backend, error) {
	cfg, err := st.loadConfig()
	if err != nil {
		return nil, err
	}

	level := "error"
	if st.verbose {
		level = "debug"
	}
	logger := logging.NewJSONLogger(st.errOut, level)

	repos, err := repomanager.New(ctx, cfg.RepositoryOptions())
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	blobs, err := blobstore.New(ctx, cfg.BlobOptions())
	if err != nil {
		return nil, errors.Join(fmt.Errorf("open content store: %w", err), repos.Close())
	}

	return &backend{
		cfg:         cfg,
		repos:       repos,
		accounts:    services.NewAccountService(repos.Accounts(), cryptox.NewHasher(cryptox.DefaultParams), logger),
		submissions: services.NewSubmissionService(repos.Submissions(), blobs, logger),
	}, nil
}

// withBackend runs fn against freshly opened stores and closes them after.
func (st *cliState) withBackend(ctx context.Context, fn func(b *backend) error) (err error) {
	b, err := st.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, b.Close())
	}()
	return fn(b)
}
