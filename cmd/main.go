package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lshigami/ToeicGenius/config"
	"github.com/lshigami/ToeicGenius/database"
	_ "github.com/lshigami/ToeicGenius/docs" // Swagger docs - auto-generated
	adminctrl "github.com/lshigami/ToeicGenius/internal/controller/admin"
	userctrl "github.com/lshigami/ToeicGenius/internal/controller/user"
	"github.com/lshigami/ToeicGenius/internal/logger"
	"github.com/lshigami/ToeicGenius/internal/model"
	"github.com/lshigami/ToeicGenius/internal/repository"
	"github.com/lshigami/ToeicGenius/internal/service"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title ToeicGenius Test Session Engine API
// @version 1.0
// @description API for TOEIC test assembly with frozen question snapshots, test-taking sessions, LR grading and AI-assisted Writing/Speaking scoring.
// @contact.name API Support
// @contact.email support@example.com
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		// Core Application Components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase, // Provides *gorm.DB
			NewGinEngine,         // Provides *gin.Engine
		),

		// Repositories Layer
		fx.Provide(
			repository.NewTestRepository,
			repository.NewPartRepository,
			repository.NewQuestionRepository,
			repository.NewTestResultRepository,
			repository.NewUserAnswerRepository,
			repository.NewAIFeedbackRepository,
			repository.NewFlashcardRepository,
			repository.NewFlashcardSetRepository,
		),

		// Services Layer
		fx.Provide(
			service.NewTestValidator,
			service.NewScoreConverterService,
			service.NewAdminTestService,
			service.NewUserTestService,
			service.NewTestSessionService,
			service.NewWritingScorerClient,
			service.NewSpeakingScorerClient,
			service.NewAssessmentService,
			service.NewGeminiLLMService,
			service.NewFlashcardService,
			service.NewExpiryReaper,
		),

		// API Controllers Layer
		fx.Provide(
			adminctrl.NewAdminTestController,
			userctrl.NewUserTestController,
			userctrl.NewAssessmentController,
			userctrl.NewFlashcardController,
		),

		// Invokers - Functions that are executed by Fx
		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(StartExpiryReaper),
		fx.Invoke(AutoMigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	gin.SetMode(gin.DebugMode)

	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // Be more specific in production
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger UI at /swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	adminTestCtrl *adminctrl.AdminTestController,
	userTestCtrl *userctrl.UserTestController,
	assessmentCtrl *userctrl.AssessmentController,
	flashcardCtrl *userctrl.FlashcardController,
) {
	// Admin Routes (prefixed with /api/v1/admin)
	adminAPIGroup := router.Group("/api/v1/admin")
	{
		testsAdminGroup := adminAPIGroup.Group("/tests")
		testsAdminGroup.POST("", adminTestCtrl.CreateTest)
		testsAdminGroup.POST("/from-bank", adminTestCtrl.CreateTestFromBank)
		testsAdminGroup.POST("/random", adminTestCtrl.CreateRandomTest)
		testsAdminGroup.POST("/:test_id/versions", adminTestCtrl.CreateNewVersion)
		testsAdminGroup.GET("/:test_id/versions", adminTestCtrl.GetTestVersions)
		testsAdminGroup.PUT("/:test_id/publish", adminTestCtrl.PublishTest)
		testsAdminGroup.PUT("/:test_id/archive", adminTestCtrl.ArchiveTest)

		adminAPIGroup.POST("/questions", adminTestCtrl.AddQuestionToBank)
		adminAPIGroup.POST("/question-groups", adminTestCtrl.AddGroupToBank)
	}

	// User Routes (prefixed with /api/v1)
	userAPIGroup := router.Group("/api/v1")
	{
		// Test listing and details
		userAPIGroup.GET("/tests", userTestCtrl.GetAllTests)
		userAPIGroup.GET("/tests/:test_id", userTestCtrl.GetTestDetails)

		// Test sessions
		userAPIGroup.POST("/tests/:test_id/start", userTestCtrl.StartTest)
		userAPIGroup.POST("/test-sessions/progress", userTestCtrl.SaveProgress)
		userAPIGroup.POST("/test-sessions/submit-lr", userTestCtrl.SubmitLRTest)
		userAPIGroup.GET("/test-sessions/:result_id/lr-detail", userTestCtrl.GetLRResultDetail)
		userAPIGroup.GET("/me/test-history", userTestCtrl.GetTestHistory)
		userAPIGroup.GET("/me/statistics", userTestCtrl.GetUserStatistics)

		userAPIGroup.GET("/me/statistics/progress", userTestCtrl.GetProgressStatistics)

		// AI assessment
		userAPIGroup.POST("/assessments/bulk", assessmentCtrl.SubmitBulkAssessment)
		userAPIGroup.GET("/assessments/health", assessmentCtrl.GetScorerHealth)

		// Flashcards
		userAPIGroup.POST("/flashcards", flashcardCtrl.CreateFlashcard)
		userAPIGroup.GET("/flashcards", flashcardCtrl.GetFlashcards)
		userAPIGroup.DELETE("/flashcards/:flashcard_id", flashcardCtrl.DeleteFlashcard)
		userAPIGroup.POST("/flashcards/from-test", flashcardCtrl.AddFlashcardFromTest)
		userAPIGroup.POST("/flashcard-sets", flashcardCtrl.CreateFlashcardSet)
		userAPIGroup.GET("/flashcard-sets", flashcardCtrl.GetFlashcardSets)
		userAPIGroup.GET("/flashcard-sets/:set_id", flashcardCtrl.GetFlashcardSet)
		userAPIGroup.PUT("/flashcard-sets/:set_id", flashcardCtrl.UpdateFlashcardSet)
		userAPIGroup.DELETE("/flashcard-sets/:set_id", flashcardCtrl.DeleteFlashcardSet)
	}

	// HTTP Server Setup and Lifecycle
	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("ToeicGenius API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

// StartExpiryReaper runs the expired-session sweep loop for the whole
// application lifetime.
func StartExpiryReaper(lc fx.Lifecycle, reaper *service.ExpiryReaper) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go reaper.Run(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.Part{},
		&model.QuestionGroup{},
		&model.Question{},
		&model.Option{},
		&model.Test{},
		&model.TestQuestion{},
		&model.TestResult{},
		&model.UserTestSkillScore{},
		&model.UserAnswer{},
		&model.AIFeedback{},
		&model.FlashcardSet{},
		&model.Flashcard{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
