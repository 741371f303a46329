package main

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/project-tracker/config"
	"github.com/oksasatya/project-tracker/internal/application"
	"github.com/oksasatya/project-tracker/internal/domain/apperror"
	"github.com/oksasatya/project-tracker/internal/domain/entity"
	pginfra "github.com/oksasatya/project-tracker/internal/infrastructure/postgres"
	"github.com/oksasatya/project-tracker/internal/infrastructure/search"
	"github.com/oksasatya/project-tracker/pkg/helpers"
)

const (
	demoEmail    = "demo@superbudget.com"
	demoPassword = "password123"
	demoName     = "Demo User"
	projectCount = 25
)

var teamMembers = []string{
	"Alice Johnson", "Bob Smith", "Charlie Brown", "Diana Prince",
	"Eve Williams", "Frank Miller", "Grace Lee", "Henry Davis",
}

var projectNames = []string{
	"Website Redesign", "Mobile App Development", "API Integration", "Database Migration",
	"Cloud Infrastructure", "Security Audit", "Performance Optimization", "Feature Enhancement",
	"Bug Fix Sprint", "UI/UX Overhaul", "Payment System", "Analytics Dashboard",
	"Email Campaign", "Content Management", "E-commerce Platform", "Customer Portal",
	"Admin Dashboard", "Reporting System", "Notification Service", "Authentication System",
	"Data Export Tool", "Search Functionality", "Recommendation Engine", "Social Media Integration",
	"Video Streaming", "Documentation Portal", "Testing Framework", "CI/CD Pipeline",
	"Monitoring System", "Backup Solution",
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	if err := pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		logger.Fatalf("migration failed: %v", err)
	}
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		logger.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	identity := application.NewIdentityService(pginfra.NewUserRepository(pool), helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL), logger)
	_, err = identity.Signup(ctx, application.SignupInput{Email: demoEmail, Password: demoPassword, Name: demoName})
	switch {
	case errors.Is(err, apperror.ErrConflict):
		helpers.LogInfo(logger, "demo user already exists", logrus.Fields{"email": demoEmail})
	case err != nil:
		logger.Fatalf("failed to seed user: %v", err)
	default:
		helpers.LogInfo(logger, "seeded demo user", logrus.Fields{"email": demoEmail, "password": demoPassword})
	}

	if _, err := pool.Exec(ctx, `DELETE FROM projects`); err != nil {
		logger.Fatalf("failed to clear projects: %v", err)
	}
	logger.Info("cleared existing projects")

	var index application.ProjectIndex
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			helpers.LogWarn(logger, "elasticsearch unavailable, skipping index", err, nil)
		} else {
			index = search.NewProjectIndex(es, cfg.ESProjectsIndex)
		}
	}
	// Assignees are names, so the notifier is never reached.
	projects := application.NewProjectService(pginfra.NewProjectRepository(pool), nil, index, logger)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for _, in := range randomProjects(rng, time.Now().UTC(), projectCount) {
		if _, err := projects.Create(ctx, in); err != nil {
			logger.Fatalf("failed to create project %q: %v", in.Name, err)
		}
	}
	helpers.LogInfo(logger, "created projects", logrus.Fields{"count": projectCount})
}

// randomProjects builds n projects. COMPLETED deadlines fall in the last 180
// days, the rest within the next year; budgets are whole dollars in [5000, 105000).
func randomProjects(rng *rand.Rand, now time.Time, n int) []application.CreateProjectInput {
	past := now.Add(-180 * 24 * time.Hour)
	future := now.Add(365 * 24 * time.Hour)

	out := make([]application.CreateProjectInput, 0, n)
	for i := 0; i < n; i++ {
		status := entity.ProjectStatuses[rng.Intn(len(entity.ProjectStatuses))]
		var deadline time.Time
		if status == entity.StatusCompleted {
			deadline = between(rng, past, now)
		} else {
			deadline = between(rng, now, future)
		}
		out = append(out, application.CreateProjectInput{
			Name:               projectNames[rng.Intn(len(projectNames))],
			Status:             status,
			Deadline:           deadline.Format(time.RFC3339Nano),
			AssignedTeamMember: teamMembers[rng.Intn(len(teamMembers))],
			Budget:             float64(rng.Intn(100000) + 5000),
		})
	}
	return out
}

func between(rng *rand.Rand, start, end time.Time) time.Time {
	return start.Add(time.Duration(rng.Int63n(int64(end.Sub(start)))))
}
