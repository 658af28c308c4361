// Package config loads the platform's recognized configuration options
// (spec §6), mirroring the teacher's pkg/config: env-tag decoding via
// envdecode, optional .env loading via godotenv, and an optional YAML
// overlay applied before env decoding so deployment files and
// environment overrides compose the way the teacher's services do.
package config

import (
	"os"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ServerConfig controls the demo admin HTTP surface in cmd/govctl.
type ServerConfig struct {
	Host string `yaml:"host" env:"SERVER_HOST"`
	Port int    `yaml:"port" env:"SERVER_PORT"`
}

// LoggingConfig controls structured logging output.
type LoggingConfig struct {
	Service string `yaml:"service" env:"LOG_SERVICE"`
	Level   string `yaml:"level" env:"LOG_LEVEL"`
	Format  string `yaml:"format" env:"LOG_FORMAT"`
	Output  string `yaml:"output" env:"LOG_OUTPUT"`
}

// AIEthicsConfig mirrors spec §6's aiethics_* recognized options.
type AIEthicsConfig struct {
	Enabled             bool `yaml:"enabled" env:"AIETHICS_ENABLED"`
	BiasDetection       bool `yaml:"bias_detection" env:"AIETHICS_BIAS_DETECTION"`
	FairnessMetrics     bool `yaml:"fairness_metrics" env:"AIETHICS_FAIRNESS_METRICS"`
	AutoAlert           bool `yaml:"auto_alert" env:"AIETHICS_AUTO_ALERT"`
	TransparencyReports bool `yaml:"transparency_reports" env:"AIETHICS_TRANSPARENCY_REPORTS"`
}

// ComplianceConfig mirrors spec §6's compliance_* recognized options.
type ComplianceConfig struct {
	Enabled          bool     `yaml:"enabled" env:"COMPLIANCE_ENABLED"`
	Frameworks       []string `yaml:"frameworks" env:"COMPLIANCE_FRAMEWORKS"`
	AutoRemediate    bool     `yaml:"auto_remediate" env:"COMPLIANCE_AUTO_REMEDIATE"`
	ReportFrequency  string   `yaml:"report_frequency" env:"COMPLIANCE_REPORT_FREQUENCY"`
	ConsentRequired  bool     `yaml:"consent_required" env:"COMPLIANCE_CONSENT_REQUIRED"`
}

// IncidentConfig mirrors spec §6's incident_* and related recognized options.
type IncidentConfig struct {
	Enabled            bool `yaml:"enabled" env:"INCIDENT_ENABLED"`
	AutoContain        bool `yaml:"auto_contain" env:"AUTO_CONTAIN"`
	ForensicCollection bool `yaml:"forensic_collection" env:"FORENSIC_COLLECTION"`
	PlaybookEnabled    bool `yaml:"playbook_enabled" env:"PLAYBOOK_ENABLED"`
	LessonLearning     bool `yaml:"lesson_learning" env:"LESSON_LEARNING"`
}

// Config is the top-level configuration tree for cmd/govctl.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
	AIEthics   AIEthicsConfig   `yaml:"aiethics"`
	Compliance ComplianceConfig `yaml:"compliance"`
	Incident   IncidentConfig   `yaml:"incident"`
}

// Default returns the recognized defaults listed in spec §6.
func Default() Config {
	return Config{
		Server:  ServerConfig{Host: "127.0.0.1", Port: 8080},
		Logging: LoggingConfig{Service: "govplatform", Level: "info", Format: "json", Output: "stdout"},
		AIEthics: AIEthicsConfig{
			Enabled: true, BiasDetection: true, FairnessMetrics: true,
			AutoAlert: true, TransparencyReports: true,
		},
		Compliance: ComplianceConfig{
			Enabled: true, Frameworks: []string{"gdpr"}, AutoRemediate: false,
			ReportFrequency: "monthly", ConsentRequired: true,
		},
		Incident: IncidentConfig{
			Enabled: true, AutoContain: true, ForensicCollection: true,
			PlaybookEnabled: true, LessonLearning: true,
		},
	}
}

// Load builds a Config starting from defaults, applying an optional YAML
// file, an optional .env file, and finally environment variable
// overrides — the same precedence order the teacher's services use.
func Load(yamlPath, envPath string) (Config, error) {
	cfg := Default()

	if yamlPath != "" {
		if data, err := os.ReadFile(yamlPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, err
			}
		} else if !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	if err := envdecode.Decode(&cfg); err != nil && err != envdecode.ErrNoTargetFieldsAreSet {
		return cfg, err
	}
	return cfg, nil
}
