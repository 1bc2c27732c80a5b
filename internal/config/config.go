package config

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Paths
		Records
		Parsing
		Logging
	}

	Paths struct {
		ClippingsPath string
		DocumentPath  string
		BackupPath    string // previous document is copied here, empty disables the backup
	}
	Records struct {
		Path   string
		Format string // json or yaml
	}
	Parsing struct {
		Timezone    string   // IANA name or "Local"
		DateLayouts []string // extra "Added on" layouts, tried after the built-in ones
		Strict      bool
		MergeNotes  bool
	}
	Logging struct {
		Level string
	}
)

// NewConfig reads the configuration from defaults, the optional YAML file,
// the environment and finally overrides, each taking precedence over the
// previous one. Overrides are keyed by the Key constants and usually come
// from command line flags.
func NewConfig(configFile string, overrides map[string]any) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault(KeyClippingsPath, DefaultClippingsPath)
	v.SetDefault(KeyDocumentPath, DefaultDocumentPath)
	v.SetDefault(KeyBackupPath, DefaultBackupPath)
	v.SetDefault(KeyRecordsPath, DefaultRecordsPath)
	v.SetDefault(KeyRecordsFormat, DefaultRecordsFormat)
	v.SetDefault(KeyMergeNotes, false)
	v.SetDefault(KeyStrict, false)
	v.SetDefault(KeyTimezone, DefaultTimezone)
	v.SetDefault(KeyDateLayouts, []string{})
	v.SetDefault(KeyLogLevel, DefaultLogLevel)

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	for key, value := range overrides {
		v.Set(key, value)
	}

	cfg := &Config{
		Paths: Paths{
			ClippingsPath: v.GetString(KeyClippingsPath),
			DocumentPath:  v.GetString(KeyDocumentPath),
			BackupPath:    v.GetString(KeyBackupPath),
		},
		Records: Records{
			Path:   v.GetString(KeyRecordsPath),
			Format: strings.ToLower(v.GetString(KeyRecordsFormat)),
		},
		Parsing: Parsing{
			Timezone:    v.GetString(KeyTimezone),
			DateLayouts: getDateLayouts(v),
			Strict:      v.GetBool(KeyStrict),
			MergeNotes:  v.GetBool(KeyMergeNotes),
		},
		Logging: Logging{
			Level: v.GetString(KeyLogLevel),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// getDateLayouts accepts a YAML list or, from the environment, a single
// string with layouts separated by ";" (layouts themselves contain spaces).
func getDateLayouts(v *viper.Viper) []string {
	raw, ok := v.Get(KeyDateLayouts).(string)
	if !ok {
		return v.GetStringSlice(KeyDateLayouts)
	}

	var layouts []string
	for _, layout := range strings.Split(raw, ";") {
		if layout = strings.TrimSpace(layout); layout != "" {
			layouts = append(layouts, layout)
		}
	}
	return layouts
}

func (c *Config) Validate() error {
	if err := c.Paths.Validate(); err != nil {
		return err
	}
	if err := c.Records.Validate(); err != nil {
		return err
	}
	if err := c.Parsing.Validate(); err != nil {
		return err
	}
	return c.Logging.Validate()
}

func (c *Paths) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ClippingsPath, validation.Required),
		validation.Field(&c.DocumentPath, validation.Required),
	)
}

func (c *Records) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Format, validation.Required, validation.In("json", "yaml")),
	)
}

func (c *Parsing) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Timezone, validation.Required, validation.By(func(value interface{}) error {
			if _, err := time.LoadLocation(value.(string)); err != nil {
				return fmt.Errorf("unknown time zone %q", value)
			}
			return nil
		})),
	)
}

func (c *Logging) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Level, validation.In("debug", "info", "warn", "warning", "error")),
	)
}

// Location returns the zone clipping dates are read in.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
