package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"strokesegapi/bootstrap"
	"strokesegapi/config"
	"strokesegapi/controllers"
	_ "strokesegapi/docs"
	"strokesegapi/pkg/logger"
	"strokesegapi/repository"
	"strokesegapi/services/evaluation"
	"strokesegapi/services/poller"
	"strokesegapi/services/prediction"
	"strokesegapi/services/slurm"
	"strokesegapi/services/submit"
	"strokesegapi/services/template"
	"strokesegapi/services/training"
	"strokesegapi/utils"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           strokesegapi
// @version         1.0
// @description     Stroke segmentation training, prediction and evaluation API

// @BasePath  /

func main() {
	// 1) Load config
	if err := config.LoadConfig(); err != nil {
		log.Fatalf("LoadConfig error: %v", err)
	}

	if err := config.ValidateTemplateFiles(); err != nil {
		log.Fatalf("Template validation error: %v", err)
	}

	// 2) Connect DB (GORM)
	if err := config.ConnectDB(); err != nil {
		log.Fatalf("ConnectDB error: %v", err)
	}
	if config.DB == nil {
		log.Fatal("Database is nil after ConnectDB")
	}

	if err := bootstrap.Migrate(); err != nil {
		log.Fatalf("Migration error: %v", err)
	}

	// 3) Init structured logger with config
	logLevel := logger.ParseLogLevel(config.Cfg.LogLevel)
	logFormat := logger.ParseLogFormat(config.Cfg.LogFormat)
	logger.InitWithConfig(
		config.Cfg.LogFile,
		logLevel,
		logFormat,
		config.Cfg.LogMaxSize,
		config.Cfg.LogMaxBackups,
		config.Cfg.LogMaxAge,
		config.Cfg.LogCompress,
	)
	logger.Infof("Starting Stroke Segmentation API with log level: %s", config.Cfg.LogLevel)

	// 4) Wire scheduler client and template renderers
	runner := slurm.NewRunner(config.Cfg.SlurmCommandTimeout)
	slurmClient := slurm.NewClient(runner)

	trainingGen, err := template.NewGenerator(config.TrainingTemplatePath())
	if err != nil {
		logger.Fatalf("Failed to load training template: %v", err)
	}
	inferenceGen, err := template.NewGenerator(config.InferenceTemplatePath())
	if err != nil {
		logger.Fatalf("Failed to load inference template: %v", err)
	}
	evaluationGen, err := template.NewGenerator(config.EvaluationTemplatePath())
	if err != nil {
		logger.Fatalf("Failed to load evaluation template: %v", err)
	}

	jobRepo := repository.NewJobRepository(config.DB)
	trainingRepo := repository.NewTrainingRepository(config.DB)
	modelRepo := repository.NewModelRepository(config.DB)
	inferenceRepo := repository.NewInferenceRepository(config.DB)
	evaluationRepo := repository.NewEvaluationRepository(config.DB)

	controllers.SetTrainingService(training.NewService(
		config.DB, jobRepo, trainingRepo,
		submit.NewTrainingSubmitter(trainingGen, slurmClient),
		config.Cfg.ModelsBasePath,
	))
	controllers.SetPredictionService(prediction.NewService(
		config.DB, jobRepo, inferenceRepo, modelRepo, trainingRepo,
		submit.NewPredictionSubmitter(inferenceGen, slurmClient),
		config.Cfg.ModelsBasePath,
	))
	controllers.SetEvaluationService(evaluation.NewService(
		config.DB, jobRepo, evaluationRepo, modelRepo, trainingRepo,
		submit.NewEvaluationSubmitter(evaluationGen, slurmClient),
		config.Cfg.ModelsBasePath,
	))

	// 5) Start the job monitors
	manager := poller.NewManager(poller.Deps{
		DB:           config.DB,
		Reconnect:    config.OpenDB,
		Client:       slurmClient,
		Jobs:         jobRepo,
		Trainings:    trainingRepo,
		Models:       modelRepo,
		Inferences:   inferenceRepo,
		Evaluations:  evaluationRepo,
		PollInterval: config.Cfg.SlurmPollInterval,
	})
	host := poller.NewHost(manager)
	if err := host.Start(); err != nil {
		logger.Fatalf("Failed to start job monitors: %v", err)
	}
	controllers.SetPollerHost(host)
	controllers.SetJobRepository(jobRepo)

	// 6) Setup Gin
	router := gin.Default()
	router.Use(utils.LoggerMiddleware())

	controllers.RegisterHealthRoutes(router)

	v1 := router.Group("/api/v1")
	{
		controllers.RegisterTrainingRoutes(v1)
		controllers.RegisterPredictionRoutes(v1)
		controllers.RegisterEvaluationRoutes(v1)
		controllers.RegisterJobRoutes(v1)
	}

	// 7) Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 8) Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Infof("Received shutdown signal, stopping job monitors...")
		host.Stop()
		logger.Infof("Application shutdown complete")
		os.Exit(0)
	}()

	// 9) Run
	logger.Infof("Starting server at port %s", config.Cfg.Port)
	router.Run("0.0.0.0:" + config.Cfg.Port)
}
