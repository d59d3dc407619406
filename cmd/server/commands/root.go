package commands

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/yukikurage/hr-task-review-api/internal/clock"
	"github.com/yukikurage/hr-task-review-api/internal/config"
	"github.com/yukikurage/hr-task-review-api/internal/database"
	"github.com/yukikurage/hr-task-review-api/internal/events"
	"github.com/yukikurage/hr-task-review-api/internal/handlers"
	"github.com/yukikurage/hr-task-review-api/internal/logging"
	"github.com/yukikurage/hr-task-review-api/internal/repository"
	"github.com/yukikurage/hr-task-review-api/internal/services"
	"gorm.io/gorm"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "hrtasks",
		Short:        "HR task lifecycle and review workflow API",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "optional config file; environment variables take precedence")

	rootCmd.AddCommand(
		newServeCommand(&configPath),
		newMigrateCommand(&configPath),
		newEscalationsCommand(&configPath),
	)

	return rootCmd
}

// runtime is the wiring shared by every subcommand.
type runtime struct {
	cfg *config.Config
	log *logrus.Logger
	db  *gorm.DB
}

func bootstrap(configPath string, migrate bool) (*runtime, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, err
	}
	log := logging.New(cfg)

	if err := database.Connect(cfg, log); err != nil {
		return nil, err
	}
	db := database.GetDB()

	if migrate {
		if err := database.Migrate(db, log); err != nil {
			return nil, err
		}
	}

	return &runtime{cfg: cfg, log: log, db: db}, nil
}

// newBus creates the event bus with the log sink subscribed to every event type.
func (rt *runtime) newBus() *events.Bus {
	bus := events.NewBus(rt.cfg.EventBufferSize, rt.log.WithField("component", "events"))
	sink := events.LogSink(rt.log.WithField("component", "outbox"))
	for _, t := range events.AllTypes() {
		bus.Subscribe(t, sink)
	}
	return bus
}

// newServices builds the service graph. The AI drafter is only wired when an
// API key is configured.
func (rt *runtime) newServices(publisher events.Publisher) handlers.Services {
	clk := clock.Real()
	log := rt.log.WithField("component", "services")

	var drafter services.TaskDrafter
	if rt.cfg.OpenAIAPIKey != "" {
		drafter = services.NewAIService(rt.cfg.OpenAIAPIKey)
	}

	taskRepo := repository.NewTaskRepository(rt.db)
	submissionRepo := repository.NewSubmissionRepository(rt.db)
	workspaceRepo := repository.NewWorkspaceRepository(rt.db)
	userRepo := repository.NewUserRepository(rt.db)

	identity := services.NewIdentityService(workspaceRepo)
	reviews := services.NewReviewService(submissionRepo, identity, publisher, clk, log)

	return handlers.Services{
		Identity:      identity,
		Auth:          services.NewAuthService(userRepo, clk),
		Workspaces:    services.NewWorkspaceService(workspaceRepo, clk),
		Tasks:         services.NewTaskService(taskRepo, identity, drafter, publisher, clk, log),
		Submissions:   services.NewSubmissionService(taskRepo, submissionRepo, identity, publisher, clk, log),
		Reviews:       reviews,
		Notifications: services.NewNotificationService(submissionRepo, identity, reviews, clk),
		Performance:   services.NewPerformanceService(taskRepo, identity, clk),
	}
}
