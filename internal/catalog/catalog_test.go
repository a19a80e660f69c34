package catalog

import (
	"testing"

	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/config"
	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/errors"
)

func TestCatalog_Lookups(t *testing.T) {
	c := New(config.DefaultConfig())

	profile, err := c.Profile("iot-default")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if profile.Priority != 3 {
		t.Errorf("Expected iot-default priority 3, got %d", profile.Priority)
	}

	slice, err := c.Slice("slice2")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if slice.Subnet != "10.46.0.0/16" {
		t.Errorf("Expected slice2 subnet 10.46.0.0/16, got %s", slice.Subnet)
	}

	uc, err := c.UseCase("vehicle-alerts")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if uc.Slice != "slice2" || uc.Profile != "emergency" {
		t.Errorf("Expected vehicle-alerts -> slice2/emergency, got %s/%s", uc.Slice, uc.Profile)
	}

	preset, err := c.Preset("iot-first")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if preset.ClassA.Rate != "14mbit" {
		t.Errorf("Expected iot-first class A rate 14mbit, got %s", preset.ClassA.Rate)
	}
}

func TestCatalog_UnknownIdentifiers(t *testing.T) {
	c := New(config.DefaultConfig())

	tests := []struct {
		name   string
		lookup func() error
	}{
		{"profile", func() error { _, err := c.Profile("nope"); return err }},
		{"slice", func() error { _, err := c.Slice("slice99"); return err }},
		{"use case", func() error { _, err := c.UseCase("nope"); return err }},
		{"preset", func() error { _, err := c.Preset("nope"); return err }},
	}

	for _, tt := range tests {
		err := tt.lookup()
		if err == nil {
			t.Errorf("%s: expected error, got none", tt.name)
			continue
		}
		if !errors.IsCode(err, errors.ErrCodeUnknownIdentifier) {
			t.Errorf("%s: expected UNKNOWN_IDENTIFIER, got: %v", tt.name, err)
		}
	}
}

func TestCatalog_SliceIDsOrder(t *testing.T) {
	c := New(config.DefaultConfig())
	ids := c.SliceIDs()
	expected := []string{"slice1", "slice2", "slice3"}
	if len(ids) != len(expected) {
		t.Fatalf("Expected %d slice ids, got %d", len(expected), len(ids))
	}
	for i := range expected {
		if ids[i] != expected[i] {
			t.Errorf("Expected slice id %s at %d, got %s", expected[i], i, ids[i])
		}
	}
}
