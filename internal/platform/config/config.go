package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	apperrors "github.com/seplitsa/seplitsa-bot/internal/core/errors"
)

// Bot variants.
const (
	VariantInfo   = "info"
	VariantExpert = "expert"
)

// Profile reset policies applied when a user disputes the reviewed profile.
const (
	ResetKeepIdentity = "keep_identity"
	ResetClearAll     = "clear_all"
)

// Variant-dependent environment keys.
const (
	envWizardEnabled       = "WIZARD_ENABLED"
	envProgressEnabled     = "PROGRESS_ENABLED"
	envDetailsEnabled      = "DETAILS_ENABLED"
	envPromoEnabled        = "PROMO_ENABLED"
	envMinContainmentRunes = "MIN_CONTAINMENT_RUNES"
	envProfileResetPolicy  = "PROFILE_RESET_POLICY"
	envLLMMaxTokens        = "LLM_MAX_TOKENS"
)

const (
	infoMinContainmentRunes = 4
	expertLLMMaxTokens      = 2000
)

type Config struct {
	AppEnv         string `env:"APP_ENV" envDefault:"local"`
	BotToken       string `env:"BOT_TOKEN,required"`
	BotVariant     string `env:"BOT_VARIANT" envDefault:"info"`
	AuthorUsername string `env:"AUTHOR_USERNAME" envDefault:"alexpina76"`
	AuthorName     string `env:"AUTHOR_NAME" envDefault:"Алексей"`

	// Storage
	DataDir       string `env:"DATA_DIR" envDefault:"."`
	KnowledgeFile string `env:"KNOWLEDGE_FILE"`
	UserDataFile  string `env:"USER_DATA_FILE"`

	// Process lifecycle
	PIDFile   string `env:"PID_FILE" envDefault:"/tmp/seplitsa-bot.pid"`
	AllowRoot bool   `env:"ALLOW_ROOT" envDefault:"false"`

	// Text generation
	LLMProvider         string        `env:"LLM_PROVIDER" envDefault:"openai"`
	LLMAPIKey           string        `env:"LLM_API_KEY"`
	LLMBaseURL          string        `env:"LLM_BASE_URL" envDefault:"https://api.deepseek.com/v1"`
	LLMModel            string        `env:"LLM_MODEL" envDefault:"deepseek-chat"`
	LLMTemperature      float32       `env:"LLM_TEMPERATURE" envDefault:"0.7"`
	LLMMaxTokens        int           `env:"LLM_MAX_TOKENS" envDefault:"4000"`
	LLMTimeout          time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`
	LLMSystemPromptFile string        `env:"LLM_SYSTEM_PROMPT_FILE"`
	AnthropicAPIKey     string        `env:"ANTHROPIC_API_KEY"`
	AnthropicModel      string        `env:"ANTHROPIC_MODEL" envDefault:"claude-haiku-4-5"`
	GoogleAPIKey        string        `env:"GOOGLE_API_KEY"`
	GoogleModel         string        `env:"GOOGLE_MODEL" envDefault:"gemini-2.0-flash"`
	RateLimitRPS        int           `env:"RATE_LIMIT_RPS" envDefault:"2"`

	// Telegram transport
	TypingInterval     time.Duration `env:"TYPING_INTERVAL" envDefault:"4s"`
	HandlerConcurrency int           `env:"HANDLER_CONCURRENCY" envDefault:"4"`
	PollTimeout        int           `env:"POLL_TIMEOUT" envDefault:"60"`
	DropPendingUpdates bool          `env:"DROP_PENDING_UPDATES" envDefault:"true"`
	HealthPort         int           `env:"HEALTH_PORT" envDefault:"8080"`

	// Variant features; defaults depend on BOT_VARIANT when unset.
	WizardEnabled       bool   `env:"WIZARD_ENABLED"`
	ProgressEnabled     bool   `env:"PROGRESS_ENABLED"`
	DetailsEnabled      bool   `env:"DETAILS_ENABLED"`
	PromoEnabled        bool   `env:"PROMO_ENABLED"`
	PromoURL            string `env:"PROMO_URL" envDefault:"https://seplitsa.com"`
	ShortAnswerLimit    int    `env:"SHORT_ANSWER_LIMIT" envDefault:"300"`
	MinContainmentRunes int    `env:"MIN_CONTAINMENT_RUNES"`
	ProfileResetPolicy  string `env:"PROFILE_RESET_POLICY"`

	// Spreadsheet mirror
	SheetsEnabled         bool          `env:"SHEETS_ENABLED" envDefault:"false"`
	SheetsCredentialsFile string        `env:"SHEETS_CREDENTIALS_FILE"`
	SheetsSpreadsheetID   string        `env:"SHEETS_SPREADSHEET_ID"`
	SheetsRange           string        `env:"SHEETS_RANGE" envDefault:"Sheet1!A1"`
	SheetsTimeout         time.Duration `env:"SHEETS_TIMEOUT" envDefault:"15s"`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	applyLegacyAliases(cfg)

	if err := applyVariantDefaults(cfg); err != nil {
		return nil, err
	}

	applyPathDefaults(cfg)

	return cfg, nil
}

// IsExpert reports whether the expert variant is configured.
func (c *Config) IsExpert() bool {
	return c.BotVariant == VariantExpert
}

// applyLegacyAliases honors the variable names used by older deployments.
func applyLegacyAliases(cfg *Config) {
	if !hasEnv("DATA_DIR") {
		setStringFromEnv("SEPLITSA_DATA_DIR", &cfg.DataDir)
	}

	if !hasEnv("PID_FILE") {
		setStringFromEnv("SEPLITSA_PID_FILE", &cfg.PIDFile)
	}

	if !hasEnv("LLM_API_KEY") {
		setStringFromEnv("DEEPSEEK_API_KEY", &cfg.LLMAPIKey)
	}
}

func applyVariantDefaults(cfg *Config) error {
	cfg.BotVariant = strings.ToLower(strings.TrimSpace(cfg.BotVariant))

	switch cfg.BotVariant {
	case VariantInfo:
		setDefaultBool(envWizardEnabled, &cfg.WizardEnabled, true)
		setDefaultBool(envProgressEnabled, &cfg.ProgressEnabled, true)
		setDefaultBool(envDetailsEnabled, &cfg.DetailsEnabled, false)
		setDefaultBool(envPromoEnabled, &cfg.PromoEnabled, false)
		setDefaultInt(envMinContainmentRunes, &cfg.MinContainmentRunes, infoMinContainmentRunes)
		setDefaultString(envProfileResetPolicy, &cfg.ProfileResetPolicy, ResetKeepIdentity)
	case VariantExpert:
		setDefaultBool(envWizardEnabled, &cfg.WizardEnabled, false)
		setDefaultBool(envProgressEnabled, &cfg.ProgressEnabled, false)
		setDefaultBool(envDetailsEnabled, &cfg.DetailsEnabled, true)
		setDefaultBool(envPromoEnabled, &cfg.PromoEnabled, true)
		setDefaultInt(envMinContainmentRunes, &cfg.MinContainmentRunes, 0)
		setDefaultString(envProfileResetPolicy, &cfg.ProfileResetPolicy, ResetClearAll)
		setDefaultInt(envLLMMaxTokens, &cfg.LLMMaxTokens, expertLLMMaxTokens)
	default:
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidVariant, cfg.BotVariant)
	}

	return nil
}

func applyPathDefaults(cfg *Config) {
	if cfg.KnowledgeFile == "" {
		cfg.KnowledgeFile = filepath.Join(cfg.DataDir, cfg.BotVariant+"_knowledge.json")
	}

	if cfg.UserDataFile == "" {
		cfg.UserDataFile = filepath.Join(cfg.DataDir, "seplitsa_"+cfg.BotVariant+"_user_data.json")
	}

	if cfg.SheetsCredentialsFile == "" {
		cfg.SheetsCredentialsFile = filepath.Join(cfg.DataDir, "seplitsa-credentials.json")
	}
}

func hasEnv(key string) bool {
	_, ok := os.LookupEnv(key)
	return ok
}

func setDefaultBool(key string, target *bool, def bool) {
	if !hasEnv(key) {
		*target = def
	}
}

func setDefaultInt(key string, target *int, def int) {
	if !hasEnv(key) {
		*target = def
	}
}

func setDefaultString(key string, target *string, def string) {
	if !hasEnv(key) {
		*target = def
	}
}

func setStringFromEnv(key string, target *string) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}

	val = strings.TrimSpace(val)
	if val == "" {
		return
	}

	*target = val
}
