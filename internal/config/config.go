package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/kenger42-gif/uretim-planlayici/pkg/core/calendar"
)

// ShiftConfig defines one shift of the day
type ShiftConfig struct {
	Label string `yaml:"label" validate:"required"`
	Range string `yaml:"range,omitempty"`
}

// Config represents the planning configuration
type Config struct {
	ShiftDurationHours         float64       `yaml:"shiftDurationHours" validate:"gt=0"`
	Shifts                     []ShiftConfig `yaml:"shifts" validate:"required,min=1,dive"`
	DailyFTEHours              float64       `yaml:"dailyFTEHours" validate:"gte=0"`
	WeeklyFTEHours             float64       `yaml:"weeklyFTEHours" validate:"gte=0"`
	OvertimeAllowanceHours     float64       `yaml:"overtimeAllowanceHours" validate:"gte=0"`
	HorizonDays                int           `yaml:"horizonDays" validate:"min=1,max=28"`
	ContinueCalendarPerMachine bool          `yaml:"continueCalendarPerMachine"`
	ExportDir                  string        `yaml:"exportDir" validate:"required"`
}

const configFileName = "planner_config.yaml"

// ErrConfigNotFound is returned when no config file exists in the searched locations
var ErrConfigNotFound = errors.New("config file not found in current directory or home directory")

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Default returns the built-in configuration: three 7.5 hour shifts, a 7.5 hour
// FTE day, a 42.5 hour FTE week and a 7 day horizon
func Default() *Config {
	return &Config{
		ShiftDurationHours: 7.5,
		Shifts: []ShiftConfig{
			{Label: "12 vardiyası", Range: "08:00-16:00"},
			{Label: "35 vardiyası", Range: "16:00-24:00"},
			{Label: "51 vardiyası", Range: "24:00-08:00"},
		},
		DailyFTEHours:  7.5,
		WeeklyFTEHours: 42.5,
		HorizonDays:    7,
		ExportDir:      "exports",
	}
}

// Load loads and validates the configuration from planner_config.yaml.
// It looks for the config file in the current directory first, then in the user's
// home directory, and falls back to Default when neither has one.
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads planner_config.<env>.yaml, or planner_config.yaml when env is empty
func LoadWithEnv(env string) (*Config, error) {
	name := configFileName
	if env != "" {
		name = fmt.Sprintf("planner_config.%s.yaml", env)
	}

	configPath, err := findConfigFile(name)
	if errors.Is(err, ErrConfigNotFound) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path.
// Fields missing from the file keep their default values.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration struct and checks shift labels are unique
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	seen := make(map[string]bool, len(cfg.Shifts))
	for i, shift := range cfg.Shifts {
		if seen[shift.Label] {
			return fmt.Errorf("duplicate shift label in shifts[%d]: %q", i, shift.Label)
		}
		seen[shift.Label] = true
	}

	return nil
}

// Calendar builds the shift calendar described by the configuration
func (c *Config) Calendar() (*calendar.Calendar, error) {
	shifts := make([]calendar.ShiftDefinition, len(c.Shifts))
	for i, s := range c.Shifts {
		shifts[i] = calendar.ShiftDefinition{Label: s.Label, Range: s.Range}
	}

	cal, err := calendar.New(shifts, decimal.NewFromFloat(c.ShiftDurationHours))
	if err != nil {
		return nil, fmt.Errorf("failed to build shift calendar: %w", err)
	}
	return cal, nil
}

// WeeklyCap returns the most hours one person may work in a run:
// the weekly FTE hours plus the overtime allowance
func (c *Config) WeeklyCap() decimal.Decimal {
	return decimal.NewFromFloat(c.WeeklyFTEHours).Add(decimal.NewFromFloat(c.OvertimeAllowanceHours))
}

// DailyFTE returns the daily FTE baseline in hours
func (c *Config) DailyFTE() decimal.Decimal {
	return decimal.NewFromFloat(c.DailyFTEHours)
}

// WeeklyFTE returns the weekly FTE baseline in hours
func (c *Config) WeeklyFTE() decimal.Decimal {
	return decimal.NewFromFloat(c.WeeklyFTEHours)
}

// findConfigFile searches for the named config file in current directory and home directory
func findConfigFile(name string) (string, error) {
	// Check current directory
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, name)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", ErrConfigNotFound
}
