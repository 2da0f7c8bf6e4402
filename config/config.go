package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds application configuration loaded from environment variables and .env file.
type AppConfig struct {
	// Database config
	DBHost              string
	DBPort              int
	DBUser              string
	DBPass              string
	DBName              string
	DBMaxConnections    int           // Connection pool size
	DBStaleTimeout      time.Duration // Idle connections older than this are recycled
	DBConnectionTimeout time.Duration // Dial timeout for new connections

	// Logging config
	LogLevel      string
	LogFormat     string // standard|json
	LogFile       string
	LogMaxSize    int // MB
	LogMaxBackups int
	LogMaxAge     int // days
	LogCompress   bool

	// Scheduler config
	SlurmPollInterval   time.Duration // Interval between monitor ticks
	SlurmCommandTimeout time.Duration // Timeout for sbatch/scontrol invocations

	// Storage layout
	ModelsBasePath string // Root directory for trained model outputs
	TemplateDir    string // Directory holding bundled sbatch templates

	// HTTP config
	Port string
}

// Cfg is the global application configuration instance.
var Cfg AppConfig

// Template file names expected under TemplateDir.
const (
	TrainingTemplateFile   = "sbatch_train_template"
	InferenceTemplateFile  = "sbatch_inference_template"
	EvaluationTemplateFile = "sbatch_evaluation_template"
)

// LoadConfig loads and validates application configuration from .env file and environment variables.
func LoadConfig() error {
	err := godotenv.Load()
	if err != nil {
		// Use standard log here since logger is not initialized yet
		log.Printf("[WARN] .env file not found or cannot be loaded: %v", err)
	} else {
		log.Printf("[INFO] .env file loaded successfully")
	}

	Cfg.DBHost = getEnv("DB_HOST", "127.0.0.1")
	Cfg.DBPort = getEnvInt("DB_PORT", 3306)
	Cfg.DBUser = getEnv("DB_USER", "root")
	Cfg.DBPass = getEnv("DB_PASSWORD", "")
	Cfg.DBName = getEnv("DB_NAME", "stroke_seg")
	Cfg.DBMaxConnections = getEnvInt("DB_MAX_CONNECTIONS", 5)
	Cfg.DBStaleTimeout = time.Duration(getEnvInt("DB_STALE_TIMEOUT", 300)) * time.Second
	Cfg.DBConnectionTimeout = time.Duration(getEnvInt("DB_CONNECTION_TIMEOUT", 10)) * time.Second

	// Load logging config
	Cfg.LogLevel = getEnv("LOG_LEVEL", "INFO")
	Cfg.LogFormat = getEnv("LOG_FORMAT", "standard")
	Cfg.LogFile = getEnv("LOG_FILE", "/var/log/strokeseg/strokesegapi.log")
	Cfg.LogMaxSize = getEnvInt("LOG_MAX_SIZE", 10)
	Cfg.LogMaxBackups = getEnvInt("LOG_MAX_BACKUPS", 3)
	Cfg.LogMaxAge = getEnvInt("LOG_MAX_AGE", 28)
	Cfg.LogCompress = getEnvBool("LOG_COMPRESS", true)

	// Load scheduler config
	Cfg.SlurmPollInterval = time.Duration(getEnvInt("SLURM_POLL_INTERVAL", 30)) * time.Second
	Cfg.SlurmCommandTimeout = time.Duration(getEnvInt("SLURM_COMMAND_TIMEOUT", 30)) * time.Second

	Cfg.ModelsBasePath = getEnv("MODELS_BASE_PATH", "/var/lib/strokeseg/models")
	Cfg.TemplateDir = getEnv("TEMPLATE_DIR", "templates")

	Cfg.Port = getEnv("PORT", "8080")

	log.Printf("[INFO] Config loaded - DB: %s@%s:%d/%s, LogLevel: %s, PollInterval: %v",
		Cfg.DBUser, Cfg.DBHost, Cfg.DBPort, Cfg.DBName, Cfg.LogLevel, Cfg.SlurmPollInterval)

	return nil
}

// TrainingTemplatePath returns the full path of the training sbatch template.
func TrainingTemplatePath() string {
	return filepath.Join(Cfg.TemplateDir, TrainingTemplateFile)
}

// InferenceTemplatePath returns the full path of the inference sbatch template.
func InferenceTemplatePath() string {
	return filepath.Join(Cfg.TemplateDir, InferenceTemplateFile)
}

// EvaluationTemplatePath returns the full path of the evaluation sbatch template.
func EvaluationTemplatePath() string {
	return filepath.Join(Cfg.TemplateDir, EvaluationTemplateFile)
}

// ValidateTemplateFiles verifies that every bundled sbatch template exists.
// Startup must fail fast when one is missing.
func ValidateTemplateFiles() error {
	templates := map[string]string{
		"Training template":   TrainingTemplatePath(),
		"Inference template":  InferenceTemplatePath(),
		"Evaluation template": EvaluationTemplatePath(),
	}

	var missing []string
	for name, path := range templates {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			missing = append(missing, fmt.Sprintf("%s: %s", name, path))
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing template files:\n%s", strings.Join(missing, "\n"))
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if boolVal, err := strconv.ParseBool(val); err == nil {
			return boolVal
		}
	}
	return defaultVal
}
