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
	if err := c.validateConverter(); err != nil {
		return err
	}
	if err := c.validateDispatcher(); err != nil {
		return err
	}
	if c.Server.MaxUploadMiB <= 0 {
		return errors.New("server.max_upload_mib must be positive")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.UploadDir == "" {
		return errors.New("paths.upload_dir must be set")
	}
	if c.Paths.ConvertedDir == "" {
		return errors.New("paths.converted_dir must be set")
	}
	if c.Paths.UploadDir == c.Paths.ConvertedDir {
		return errors.New("paths.upload_dir and paths.converted_dir must differ")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateConverter() error {
	if c.Converter.Binary == "" {
		return errors.New("converter.binary must be set")
	}
	if c.Converter.TimeoutSeconds <= 0 {
		return errors.New("converter.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateDispatcher() error {
	if err := ensurePositiveMap(map[string]int{
		"dispatcher.workers":        c.Dispatcher.Workers,
		"dispatcher.queue_capacity": c.Dispatcher.QueueCapacity,
	}); err != nil {
		return err
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
