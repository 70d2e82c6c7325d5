package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateStage(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.RawDir == "" {
		return errors.New("paths.raw_dir must be set")
	}
	if c.Paths.WorkDir == "" {
		return errors.New("paths.work_dir must be set")
	}
	if c.Paths.CalibDir == "" {
		return errors.New("paths.calib_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateStage() error {
	if c.Stage.IDWidth < 1 || c.Stage.IDWidth > 10 {
		return fmt.Errorf("stage.id_width must be between 1 and 10, got %d", c.Stage.IDWidth)
	}
	if c.Stage.Workers < 1 {
		return fmt.Errorf("stage.workers must be at least 1, got %d", c.Stage.Workers)
	}
	if c.Stage.MinFreeGiB < 0 {
		return fmt.Errorf("stage.min_free_gib must not be negative, got %d", c.Stage.MinFreeGiB)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
