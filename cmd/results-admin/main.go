// Command results-admin runs operator tasks against the results database: ranking a class,
// switching the active term, listing terms and minting access tokens for maintenance calls.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-results-api/internal/grading"
	"github.com/noah-isme/sma-results-api/internal/models"
	"github.com/noah-isme/sma-results-api/internal/repository"
	"github.com/noah-isme/sma-results-api/internal/service"
	"github.com/noah-isme/sma-results-api/pkg/cache"
	"github.com/noah-isme/sma-results-api/pkg/config"
	"github.com/noah-isme/sma-results-api/pkg/database"
	"github.com/noah-isme/sma-results-api/pkg/logger"
)

const usage = `usage: results-admin <command> [flags]

commands:
  rank           -school ID -class NAME -year YYYY/YYYY -term NAME
  activate-term  -school ID -term-id ID
  terms          -school ID [-year YYYY/YYYY]
  token          -user ID -role ROLE [-school ID] [-ttl 1h]
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err := run(os.Args[1], os.Args[2:], os.Stdout); err != nil {
		log.Fatalf("results-admin %s: %v", os.Args[1], err)
	}
}

func run(command string, args []string, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if command == "token" {
		return issueToken(cfg, args, out)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	metrics := service.NewMetricsService()
	termSvc := service.NewTermService(repository.NewTermRepository(db), metrics, nil, logr)

	switch command {
	case "rank":
		policy := grading.Policy{
			PromotionThreshold:    cfg.Grading.PromotionThreshold,
			PromoteWhenNoSubjects: cfg.Grading.PromoteWhenNoSubjects,
			TieBreak:              models.TieBreakPolicy(cfg.Grading.RankingTieBreak),
		}
		configs := service.NewGradingConfigService(repository.NewSchoolRepository(db), policy, cfg.Grading.DefaultPassMark)
		var cacheSvc *service.CacheService
		if client, err := cache.NewRedis(cfg.Redis); err == nil {
			defer client.Close()
			cacheSvc = service.NewCacheService(repository.NewCacheRepository(client, logr), metrics, cfg.Stats.CacheTTL, logr, cfg.Stats.CacheEnabled)
		} else {
			// Cached statistics for the class expire on their own TTL.
			logr.Warn("redis unavailable, cached statistics not invalidated", zap.Error(err))
		}
		ranking := service.NewRankingService(repository.NewResultRepository(db), configs, cacheSvc, metrics, logr)
		return rank(ctx, ranking, args, out)
	case "activate-term":
		return activateTerm(ctx, termSvc, args, out)
	case "terms":
		return listTerms(ctx, termSvc, args, out)
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
}

type positionCalculator interface {
	CalculatePositions(ctx context.Context, schoolID string, req service.CalculatePositionsRequest) (*service.RankingSummary, error)
}

func rank(ctx context.Context, ranking positionCalculator, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("rank", flag.ContinueOnError)
	school := fs.String("school", "", "school id")
	class := fs.String("class", "", "class name")
	year := fs.String("year", "", "academic year, e.g. 2025/2026")
	term := fs.String("term", "", "term name")
	exam := fs.String("exam", string(models.ExamTypeEndOfTerm), "exam type")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *school == "" {
		return fmt.Errorf("-school is required")
	}

	summary, err := ranking.CalculatePositions(ctx, *school, service.CalculatePositionsRequest{
		ClassName:    *class,
		AcademicYear: *year,
		Term:         *term,
		ExamType:     models.ExamType(*exam),
	})
	if err != nil {
		return err
	}
	renderRanking(out, summary)
	return nil
}

type termActivator interface {
	Activate(ctx context.Context, schoolID, termID string) (*models.Term, error)
	List(ctx context.Context, filter models.TermFilter) ([]models.Term, error)
}

func activateTerm(ctx context.Context, terms termActivator, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("activate-term", flag.ContinueOnError)
	school := fs.String("school", "", "school id")
	termID := fs.String("term-id", "", "term id to activate")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *school == "" {
		return fmt.Errorf("-school is required")
	}

	activated, err := terms.Activate(ctx, *school, *termID)
	if err != nil {
		return err
	}
	list, err := terms.List(ctx, models.TermFilter{SchoolID: *school, AcademicYear: activated.AcademicYear})
	if err != nil {
		return err
	}
	renderTerms(out, list)
	return nil
}

func listTerms(ctx context.Context, terms termActivator, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("terms", flag.ContinueOnError)
	school := fs.String("school", "", "school id")
	year := fs.String("year", "", "academic year filter")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *school == "" {
		return fmt.Errorf("-school is required")
	}
	list, err := terms.List(ctx, models.TermFilter{SchoolID: *school, AcademicYear: *year})
	if err != nil {
		return err
	}
	renderTerms(out, list)
	return nil
}

func issueToken(cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	user := fs.String("user", "", "user id")
	role := fs.String("role", string(models.RoleAdmin), "role claim")
	school := fs.String("school", "", "school id")
	ttl := fs.Duration("ttl", time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *user == "" {
		return fmt.Errorf("-user is required")
	}
	if !models.UserRole(*role).Valid() {
		return fmt.Errorf("unknown role %q", *role)
	}

	tokens := service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Expiration: *ttl, Issuer: "results-admin"})
	token, expires, err := tokens.Issue(*user, *school, models.UserRole(*role))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s\n# expires %s\n", token, expires.Format(time.RFC3339))
	return nil
}
