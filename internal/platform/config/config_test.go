package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/seplitsa/seplitsa-bot/internal/core/errors"
)

// Test environment variable keys.
const (
	testEnvBotToken   = "BOT_TOKEN"
	testEnvVariant    = "BOT_VARIANT"
	testEnvDataDir    = "DATA_DIR"
	testEnvLegacyDir  = "SEPLITSA_DATA_DIR"
	testEnvLegacyKey  = "DEEPSEEK_API_KEY"
	testEnvLLMAPIKey  = "LLM_API_KEY"
	testEnvPromo      = "PROMO_ENABLED"
	testEnvMaxTokens  = "LLM_MAX_TOKENS"
	testEnvKnowledge  = "KNOWLEDGE_FILE"
	testEnvPIDFile    = "PID_FILE"
	testEnvLegacyPID  = "SEPLITSA_PID_FILE"
	testEnvLLMTimeout = "LLM_TIMEOUT"
)

// Test values.
const (
	testBotToken   = "123456:ABC-DEF"
	testErrLoad    = "Load() error = %v"
	testDefaultEnv = "local"
	testDataDir    = "/var/lib/seplitsa"
)

func setRequiredEnvVars(t *testing.T) {
	t.Helper()

	t.Setenv(testEnvBotToken, testBotToken)
}

// unsetForTest clears a variable for the duration of the test.
func unsetForTest(t *testing.T, key string) {
	t.Helper()

	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestLoad_MissingRequired(t *testing.T) {
	unsetForTest(t, testEnvBotToken)

	_, err := Load()
	if err == nil {
		t.Error("expected error for missing required env vars")
	}
}

func TestLoad_InfoDefaults(t *testing.T) {
	setRequiredEnvVars(t)
	unsetForTest(t, testEnvVariant)
	unsetForTest(t, testEnvDataDir)
	unsetForTest(t, testEnvLegacyDir)
	unsetForTest(t, testEnvKnowledge)

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if cfg.AppEnv != testDefaultEnv {
		t.Errorf("AppEnv = %q, want %q", cfg.AppEnv, testDefaultEnv)
	}

	if cfg.BotVariant != VariantInfo {
		t.Errorf("BotVariant = %q, want %q", cfg.BotVariant, VariantInfo)
	}

	if !cfg.WizardEnabled || !cfg.ProgressEnabled {
		t.Error("info variant should enable the wizard and progress tracking")
	}

	if cfg.PromoEnabled {
		t.Error("info variant should not enable the promo")
	}

	if cfg.MinContainmentRunes != infoMinContainmentRunes {
		t.Errorf("MinContainmentRunes = %d, want %d", cfg.MinContainmentRunes, infoMinContainmentRunes)
	}

	if cfg.ProfileResetPolicy != ResetKeepIdentity {
		t.Errorf("ProfileResetPolicy = %q, want %q", cfg.ProfileResetPolicy, ResetKeepIdentity)
	}

	if cfg.LLMMaxTokens != 4000 {
		t.Errorf("LLMMaxTokens = %d, want 4000", cfg.LLMMaxTokens)
	}

	if cfg.LLMTimeout != 60*time.Second {
		t.Errorf("LLMTimeout = %v, want 60s", cfg.LLMTimeout)
	}

	if cfg.KnowledgeFile != filepath.Join(".", "info_knowledge.json") {
		t.Errorf("KnowledgeFile = %q", cfg.KnowledgeFile)
	}

	if cfg.UserDataFile != filepath.Join(".", "seplitsa_info_user_data.json") {
		t.Errorf("UserDataFile = %q", cfg.UserDataFile)
	}
}

func TestLoad_ExpertDefaults(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv(testEnvVariant, "Expert")
	unsetForTest(t, testEnvPromo)
	unsetForTest(t, testEnvMaxTokens)

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if !cfg.IsExpert() {
		t.Fatalf("BotVariant = %q, want %q", cfg.BotVariant, VariantExpert)
	}

	if cfg.WizardEnabled {
		t.Error("expert variant should not run the profile wizard")
	}

	if !cfg.PromoEnabled {
		t.Error("expert variant should enable the promo")
	}

	if cfg.LLMMaxTokens != expertLLMMaxTokens {
		t.Errorf("LLMMaxTokens = %d, want %d", cfg.LLMMaxTokens, expertLLMMaxTokens)
	}

	if cfg.MinContainmentRunes != 0 {
		t.Errorf("MinContainmentRunes = %d, want 0", cfg.MinContainmentRunes)
	}
}

func TestLoad_ExplicitOverridesWinOverVariant(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv(testEnvVariant, VariantExpert)
	t.Setenv(testEnvPromo, "false")
	t.Setenv(testEnvMaxTokens, "1234")
	t.Setenv(testEnvLLMTimeout, "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if cfg.PromoEnabled {
		t.Error("explicit PROMO_ENABLED=false should win over the expert default")
	}

	if cfg.LLMMaxTokens != 1234 {
		t.Errorf("LLMMaxTokens = %d, want 1234", cfg.LLMMaxTokens)
	}

	if cfg.LLMTimeout != 5*time.Second {
		t.Errorf("LLMTimeout = %v, want 5s", cfg.LLMTimeout)
	}
}

func TestLoad_InvalidVariant(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv(testEnvVariant, "unknown")

	_, err := Load()
	if !errors.Is(err, apperrors.ErrInvalidVariant) {
		t.Errorf("Load() error = %v, want %v", err, apperrors.ErrInvalidVariant)
	}
}

func TestLoad_LegacyAliases(t *testing.T) {
	setRequiredEnvVars(t)
	unsetForTest(t, testEnvVariant)
	unsetForTest(t, testEnvDataDir)
	unsetForTest(t, testEnvLLMAPIKey)
	unsetForTest(t, testEnvPIDFile)
	unsetForTest(t, testEnvKnowledge)
	t.Setenv(testEnvLegacyDir, testDataDir)
	t.Setenv(testEnvLegacyKey, "sk-legacy")
	t.Setenv(testEnvLegacyPID, "/run/seplitsa/bot.pid")

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if cfg.DataDir != testDataDir {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, testDataDir)
	}

	if cfg.LLMAPIKey != "sk-legacy" {
		t.Errorf("LLMAPIKey = %q, want %q", cfg.LLMAPIKey, "sk-legacy")
	}

	if cfg.PIDFile != "/run/seplitsa/bot.pid" {
		t.Errorf("PIDFile = %q", cfg.PIDFile)
	}

	if cfg.KnowledgeFile != filepath.Join(testDataDir, "info_knowledge.json") {
		t.Errorf("KnowledgeFile = %q", cfg.KnowledgeFile)
	}
}

func TestLoad_ExplicitPathsKept(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv(testEnvKnowledge, "/srv/knowledge.json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if cfg.KnowledgeFile != "/srv/knowledge.json" {
		t.Errorf("KnowledgeFile = %q, want %q", cfg.KnowledgeFile, "/srv/knowledge.json")
	}
}
