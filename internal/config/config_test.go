package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.App.Name != "ParkWatch" {
		t.Errorf("Expected APP_NAME default 'ParkWatch', got '%s'", cfg.App.Name)
	}
	if cfg.App.Environment != "development" {
		t.Errorf("Expected APP_ENV default 'development', got '%s'", cfg.App.Environment)
	}
	if cfg.Parking.DefaultOperatingFrom != "08:00" {
		t.Errorf("Expected PARKING_DEFAULT_OPERATING_FROM default '08:00', got '%s'", cfg.Parking.DefaultOperatingFrom)
	}
	if cfg.Parking.DefaultOperatingTo != "20:00" {
		t.Errorf("Expected PARKING_DEFAULT_OPERATING_TO default '20:00', got '%s'", cfg.Parking.DefaultOperatingTo)
	}
	if cfg.Queue.Enabled {
		t.Error("Expected RABBITMQ_ENABLED default false")
	}
	if cfg.Queue.Exchange != "parkwatch.events" {
		t.Errorf("Expected RABBITMQ_EXCHANGE default 'parkwatch.events', got '%s'", cfg.Queue.Exchange)
	}
}

func TestLoadOverrides(t *testing.T) {
	os.Clearenv()
	os.Setenv("APP_ENV", "production")
	os.Setenv("APP_PORT", "9090")
	os.Setenv("PARKING_DEFAULT_HOURLY_RATE", "7.5")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !IsProduction() {
		t.Error("Expected production environment")
	}
	if cfg.App.Port != 9090 {
		t.Errorf("Expected APP_PORT 9090, got %d", cfg.App.Port)
	}
	if cfg.Parking.DefaultHourlyRate != 7.5 {
		t.Errorf("Expected PARKING_DEFAULT_HOURLY_RATE 7.5, got %v", cfg.Parking.DefaultHourlyRate)
	}
}
