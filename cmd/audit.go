package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/naka-gawa/fork-auditor/internal/config"
	"github.com/naka-gawa/fork-auditor/internal/gateway"
	"github.com/naka-gawa/fork-auditor/internal/logging"
	"github.com/naka-gawa/fork-auditor/internal/usecase"
)

// errNotAuthenticated marks a token GitHub refuses.
var errNotAuthenticated = errors.New("not authenticated with GitHub, check that the token is valid and has the delete_repo scope")

// newGateway is replaced in tests.
var newGateway = gateway.NewGitHubGateway

func runAudit(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cmd.Flags(), configFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	format, err := usecase.ParseFormat(cfg.Output)
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrUsage, err)
	}
	logger, err := logging.New(cfg.Verbose, logging.Format(cfg.LogFormat))
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrUsage, err)
	}
	defer func() { _ = logger.Sync() }()

	githubGateway, err := newGateway(cfg.Token, cfg.Throttle, logger)
	if err != nil {
		return fmt.Errorf("failed to create GitHub gateway: %w", err)
	}

	login, err := githubGateway.AuthenticatedLogin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", errNotAuthenticated, err)
	}
	opts := cfg.Options()
	if !strings.EqualFold(login, opts.Username) && !opts.DryRun {
		logger.Warn("authenticated user differs from audited user, deletions will likely fail",
			zap.String("authenticated", login), zap.String("username", opts.Username))
	}

	auditor := usecase.NewAuditor(githubGateway, cfg.Thresholds(), logger)
	prompter := usecase.NewIOConfirmationPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
	if _, err := auditor.Run(ctx, opts, prompter, cmd.OutOrStdout(), format); err != nil {
		return fmt.Errorf("failed to audit forks: %w", err)
	}
	return nil
}
