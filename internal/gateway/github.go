// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v84/github"
	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/naka-gawa/fork-auditor/internal/domain"
)

// ErrNoParent is returned by ResolveParent when the repository has no parent.
var ErrNoParent = errors.New("repository has no parent")

// Gateway defines the GitHub operations the fork auditor depends on.
type Gateway interface {
	AuthenticatedLogin(ctx context.Context) (string, error)
	ListRepositories(ctx context.Context, username string, page, perPage int) ([]domain.Repository, error)
	HasCommitsBy(ctx context.Context, owner, repo, author string) (bool, error)
	ResolveParent(ctx context.Context, owner, repo string) (string, error)
	HasOpenPullRequests(ctx context.Context, parentFullName, head string) (bool, error)
	DeleteRepository(ctx context.Context, owner, repo string) error
	RateLimit(ctx context.Context) (domain.Quota, error)
}

// GitHubGateway is the concrete implementation of the Gateway interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	limiter       *rate.Limiter
	logger        *zap.Logger
}

// parentQuery resolves the parent of a fork.
type parentQuery struct {
	Repository struct {
		Parent *struct {
			NameWithOwner string
		}
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// NewGitHubGateway creates a gateway authenticated with token.
// throttle is the minimum delay between two API calls; zero disables it.
func NewGitHubGateway(token string, throttle time.Duration, logger *zap.Logger) (Gateway, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil,
		github_ratelimit.WithSingleSleepLimit(15*time.Minute, nil),
		github_ratelimit.WithLimitDetectedCallback(func(cbCtx *github_ratelimit.CallbackContext) {
			if cbCtx.SleepUntil != nil {
				logger.Warn("secondary rate limit hit, waiting", zap.Time("until", *cbCtx.SleepUntil))
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		limiter:       newThrottle(throttle),
		logger:        logger,
	}, nil
}

func newThrottle(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

// wait blocks until the self-imposed throttle allows another call.
func (g *GitHubGateway) wait(ctx context.Context) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("failed to wait for throttle: %w", err)
	}
	return nil
}

func (g *GitHubGateway) AuthenticatedLogin(ctx context.Context) (string, error) {
	if err := g.wait(ctx); err != nil {
		return "", err
	}
	user, _, err := g.restClient.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("failed to get authenticated user: %w", err)
	}
	return user.GetLogin(), nil
}

func (g *GitHubGateway) ListRepositories(ctx context.Context, username string, page, perPage int) ([]domain.Repository, error) {
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	g.logger.Debug("listing repositories", zap.String("user", username), zap.Int("page", page))
	opts := &github.RepositoryListByUserOptions{
		Type:        "owner",
		ListOptions: github.ListOptions{Page: page, PerPage: perPage},
	}
	repos, _, err := g.restClient.Repositories.ListByUser(ctx, username, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}
	result := make([]domain.Repository, 0, len(repos))
	for _, repo := range repos {
		result = append(result, domain.Repository{
			Name:      repo.GetName(),
			URL:       repo.GetHTMLURL(),
			IsFork:    repo.GetFork(),
			IsPrivate: repo.GetPrivate(),
			Owner:     repo.GetOwner().GetLogin(),
			PushedAt:  repo.GetPushedAt().Time,
		})
	}
	return result, nil
}

func (g *GitHubGateway) HasCommitsBy(ctx context.Context, owner, repo, author string) (bool, error) {
	if err := g.wait(ctx); err != nil {
		return false, err
	}
	opts := &github.CommitsListOptions{
		Author:      author,
		ListOptions: github.ListOptions{PerPage: 1},
	}
	commits, _, err := g.restClient.Repositories.ListCommits(ctx, owner, repo, opts)
	if err != nil {
		// GitHub answers 409 Conflict for repositories without any commit.
		var errResp *github.ErrorResponse
		if errors.As(err, &errResp) && errResp.Response != nil && errResp.Response.StatusCode == http.StatusConflict {
			return false, nil
		}
		return false, fmt.Errorf("failed to list commits of %s/%s: %w", owner, repo, err)
	}
	return len(commits) > 0, nil
}

func (g *GitHubGateway) ResolveParent(ctx context.Context, owner, repo string) (string, error) {
	if err := g.wait(ctx); err != nil {
		return "", err
	}
	var q parentQuery
	variables := map[string]interface{}{
		"owner": githubv4.String(owner),
		"name":  githubv4.String(repo),
	}
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return "", fmt.Errorf("failed to resolve parent of %s/%s: %w", owner, repo, err)
	}
	if q.Repository.Parent == nil || q.Repository.Parent.NameWithOwner == "" {
		return "", ErrNoParent
	}
	return q.Repository.Parent.NameWithOwner, nil
}

func (g *GitHubGateway) HasOpenPullRequests(ctx context.Context, parentFullName, head string) (bool, error) {
	parentOwner, parentRepo, ok := strings.Cut(parentFullName, "/")
	if !ok {
		return false, fmt.Errorf("invalid parent repository name %q", parentFullName)
	}
	if err := g.wait(ctx); err != nil {
		return false, err
	}
	opts := &github.PullRequestListOptions{
		State:       "open",
		Head:        head,
		ListOptions: github.ListOptions{PerPage: 1},
	}
	prs, _, err := g.restClient.PullRequests.List(ctx, parentOwner, parentRepo, opts)
	if err != nil {
		return false, fmt.Errorf("failed to list pull requests of %s: %w", parentFullName, err)
	}
	return len(prs) > 0, nil
}

func (g *GitHubGateway) DeleteRepository(ctx context.Context, owner, repo string) error {
	if err := g.wait(ctx); err != nil {
		return err
	}
	if _, err := g.restClient.Repositories.Delete(ctx, owner, repo); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", owner, repo, err)
	}
	return nil
}

// RateLimit returns the core REST quota. The call itself does not count against it.
func (g *GitHubGateway) RateLimit(ctx context.Context) (domain.Quota, error) {
	limits, _, err := g.restClient.RateLimit.Get(ctx)
	if err != nil {
		return domain.Quota{}, fmt.Errorf("failed to get rate limit: %w", err)
	}
	core := limits.GetCore()
	if core == nil {
		return domain.Quota{}, errors.New("rate limit response has no core quota")
	}
	return domain.Quota{
		Limit:     core.Limit,
		Remaining: core.Remaining,
		Reset:     core.Reset.Time,
	}, nil
}
