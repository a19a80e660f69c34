package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "slice-console.conf")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp config: %v", err)
	}
	return path
}

func TestLoad_EmptyPathUsesBuiltinCatalog(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(cfg.Profiles) != 6 {
		t.Errorf("Expected 6 built-in profiles, got %d", len(cfg.Profiles))
	}
	if len(cfg.Slices) != 3 {
		t.Errorf("Expected 3 built-in slices, got %d", len(cfg.Slices))
	}
	if len(cfg.Presets) != 4 {
		t.Errorf("Expected 4 built-in presets, got %d", len(cfg.Presets))
	}
	if err := cfg.ValidateConfig(); err != nil {
		t.Errorf("Expected built-in catalog to validate, got: %v", err)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/path/slice-console.conf"); err == nil {
		t.Error("Expected error for missing config file, got none")
	}
}

func TestLoadConfig_PartialFileFilledFromDefaults(t *testing.T) {
	path := writeTempConfig(t, `
[general]
step_timeout_seconds = 5
api_listen = "0.0.0.0:9000"

[[profile]]
profile_id = "lab-only"
name = "Lab Only"
bandwidth_down = "8mbit"
bandwidth_up = "4mbit"
priority = 1
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.General.StepTimeoutSeconds != 5 {
		t.Errorf("Expected step timeout 5, got %d", cfg.General.StepTimeoutSeconds)
	}
	if cfg.APIListenOrDefault() != "0.0.0.0:9000" {
		t.Errorf("Expected api listen 0.0.0.0:9000, got %s", cfg.APIListenOrDefault())
	}

	// The file redefines profiles, so the built-in profile catalog is replaced.
	if len(cfg.Profiles) != 1 || cfg.Profiles[0].ProfileID != "lab-only" {
		t.Errorf("Expected single lab-only profile, got %+v", cfg.Profiles)
	}

	// Sections absent from the file come from the built-in catalog.
	if len(cfg.Slices) != 3 {
		t.Errorf("Expected built-in slices to be filled in, got %d", len(cfg.Slices))
	}
	if cfg.Bottleneck == nil {
		t.Error("Expected built-in bottleneck to be filled in")
	}
}

func TestLoadConfig_PartialGeneralSectionKeepsFieldDefaults(t *testing.T) {
	path := writeTempConfig(t, `
[general]
api_listen = "0.0.0.0:9000"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// The omitted timeout falls back to its default instead of a zero value
	// that would fail validation.
	if cfg.General.StepTimeoutSeconds != DefaultStepTimeoutSeconds {
		t.Errorf("Expected default step timeout, got %d", cfg.General.StepTimeoutSeconds)
	}
	if cfg.General.APIListen != "0.0.0.0:9000" {
		t.Errorf("Expected api listen 0.0.0.0:9000, got %s", cfg.General.APIListen)
	}
	if err := cfg.ValidateConfig(); err != nil {
		t.Errorf("Expected partial general section to validate, got: %v", err)
	}
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	path := writeTempConfig(t, "[general\nstep_timeout_seconds = 5")
	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected parse error, got none")
	}
}

func TestValidateConfig_DuplicateIdentifiers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Profiles = append(cfg.Profiles, cfg.Profiles[0])
	cfg.Slices = append(cfg.Slices, cfg.Slices[0])

	err := cfg.ValidateConfig()
	if err == nil {
		t.Fatal("Expected validation errors, got none")
	}
	msg := err.Error()
	if !strings.Contains(msg, "duplicate profile id") {
		t.Errorf("Expected duplicate profile error, got: %v", msg)
	}
	if !strings.Contains(msg, "duplicate slice id") {
		t.Errorf("Expected duplicate slice error, got: %v", msg)
	}
}

func TestValidateConfig_DanglingUseCaseReferences(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UseCases = append(cfg.UseCases, &UseCaseConfig{
		UseCaseID: "broken",
		Slice:     "slice99",
		Profile:   "no-such-profile",
	})

	err := cfg.ValidateConfig()
	if err == nil {
		t.Fatal("Expected validation errors, got none")
	}
	msg := err.Error()
	if !strings.Contains(msg, "unknown slice: slice99") {
		t.Errorf("Expected unknown slice error, got: %v", msg)
	}
	if !strings.Contains(msg, "unknown profile: no-such-profile") {
		t.Errorf("Expected unknown profile error, got: %v", msg)
	}
}

func TestValidateConfig_InvalidRateExpression(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Profiles[0].BandwidthDown = "fast"

	err := cfg.ValidateConfig()
	if err == nil {
		t.Fatal("Expected validation errors, got none")
	}
	if !strings.Contains(err.Error(), "rate expression") {
		t.Errorf("Expected rate expression error, got: %v", err)
	}
}

func TestValidateConfig_PresetRateConsistency(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Presets[0].ClassA = &PresetClassConfig{Rate: "18mbit", Ceil: "10mbit", Prio: 1}

	err := cfg.ValidateConfig()
	if err == nil {
		t.Fatal("Expected validation errors, got none")
	}
	if !strings.Contains(err.Error(), "below guaranteed rate") {
		t.Errorf("Expected ceiling error, got: %v", err)
	}

	cfg = DefaultConfig()
	cfg.Presets[0].ClassA.Rate = "19mbit"
	cfg.Presets[0].ClassA.Ceil = "19mbit"
	err = cfg.ValidateConfig()
	if err == nil {
		t.Fatal("Expected validation errors for oversubscribed preset, got none")
	}
	if !strings.Contains(err.Error(), "exceed total rate") {
		t.Errorf("Expected oversubscription error, got: %v", err)
	}
}

func TestValidateConfig_PresetsRequireBottleneck(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bottleneck = nil

	err := cfg.ValidateConfig()
	if err == nil {
		t.Fatal("Expected validation errors, got none")
	}
	if !strings.Contains(err.Error(), "no bottleneck") {
		t.Errorf("Expected bottleneck error, got: %v", err)
	}
}

func TestValidateConfig_StepTimeoutBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.General.StepTimeoutSeconds = 30

	err := cfg.ValidateConfig()
	if err == nil {
		t.Fatal("Expected validation errors, got none")
	}
	if !strings.Contains(err.Error(), "step_timeout_seconds") {
		t.Errorf("Expected step timeout error, got: %v", err)
	}
}
