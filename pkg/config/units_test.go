package config

import (
	"math"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"10s", 10 * time.Second, false},
		{"1m", 1 * time.Minute, false},
		{"1.5h", 90 * time.Minute, false},
		{"1d", 24 * time.Hour, false},
		{"1w", 168 * time.Hour, false},
		{"2d2h", 50 * time.Hour, false},
		{"100ms", 100 * time.Millisecond, false},
		{"", 0, false},
		{"invalid", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDuration(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDuration(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestParseSpeed(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		wantErr  bool
	}{
		{"4km/h", 4, false},
		{"4.5 km/h", 4.5, false},
		{"5kmh", 5, false},
		{"1m/s", 3.6, false},
		{"1mph", 1.609344, false},
		{"3", 3, false},
		{"fast", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseSpeed(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSpeed(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("ParseSpeed(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestYAMLUnmarshal(t *testing.T) {
	type TestConfig struct {
		Time  Duration `yaml:"time"`
		Speed Speed    `yaml:"speed"`
		Bare  Speed    `yaml:"bare"`
	}

	yamlData := `
time: 2d
speed: 1.5m/s
bare: 6
`
	var cfg TestConfig
	if err := yaml.Unmarshal([]byte(yamlData), &cfg); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if time.Duration(cfg.Time) != 48*time.Hour {
		t.Errorf("Expected 48h, got %v", time.Duration(cfg.Time))
	}
	if math.Abs(float64(cfg.Speed)-5.4) > 1e-9 {
		t.Errorf("Expected 5.4 km/h, got %v", cfg.Speed)
	}
	if float64(cfg.Bare) != 6 {
		t.Errorf("Expected 6 km/h, got %v", cfg.Bare)
	}
}

func TestSpeedMarshalRoundTrip(t *testing.T) {
	out, err := yaml.Marshal(struct {
		Speed Speed `yaml:"speed"`
	}{Speed(4)})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "speed: 4km/h\n" {
		t.Errorf("unexpected yaml %q", out)
	}
}
