package config

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"facecam/video/frame"
)

type Config struct {
	// Source is a camera index ("0") or a video file / stream URI.
	Source      string `json:"source" yaml:"source"`
	FrameWidth  int    `json:"frame_width" yaml:"frame_width"`
	FrameHeight int    `json:"frame_height" yaml:"frame_height"`

	CascadePath  string  `json:"cascade_path" yaml:"cascade_path"`
	ScaleFactor  float64 `json:"scale_factor" yaml:"scale_factor"`
	MinNeighbors int     `json:"min_neighbors" yaml:"min_neighbors"`
	// CropMode is "width" (rows sized by box width) or "height".
	CropMode string `json:"crop_mode" yaml:"crop_mode"`

	QueueCapacity    int `json:"queue_capacity" yaml:"queue_capacity"`
	BusyDelayMs      int `json:"busy_delay_ms" yaml:"busy_delay_ms"`
	IdleDelayMs      int `json:"idle_delay_ms" yaml:"idle_delay_ms"`
	MaxEmptyAttempts int `json:"max_empty_attempts" yaml:"max_empty_attempts"`

	PaneWidth  int `json:"pane_width" yaml:"pane_width"`
	PaneHeight int `json:"pane_height" yaml:"pane_height"`

	// ListenAddr hosts the MJPEG mirror, status and metrics. Empty disables it.
	ListenAddr string `json:"listen_addr" yaml:"listen_addr"`
	Headless   bool   `json:"headless" yaml:"headless"`
	LogLevel   string `json:"log_level" yaml:"log_level"`
}

func Default() *Config {
	return &Config{
		Source:           "0",
		FrameWidth:       640,
		FrameHeight:      480,
		CascadePath:      "data/lbpcascade_frontalface.xml",
		ScaleFactor:      1.1,
		MinNeighbors:     5,
		CropMode:         "width",
		QueueCapacity:    5,
		BusyDelayMs:      70,
		IdleDelayMs:      100,
		MaxEmptyAttempts: 51,
		PaneWidth:        200,
		PaneHeight:       200,
		ListenAddr:       ":8080",
		LogLevel:         "info",
	}
}

func (c *Config) Validate() error {
	if c.Source == "" {
		return fmt.Errorf("source is required")
	}
	if c.ScaleFactor <= 1 {
		return fmt.Errorf("scale_factor must be greater than 1, got %v", c.ScaleFactor)
	}
	if c.MinNeighbors < 0 {
		return fmt.Errorf("min_neighbors must not be negative, got %d", c.MinNeighbors)
	}
	if _, err := frame.ParseCropMode(c.CropMode); err != nil {
		return err
	}
	if c.QueueCapacity < 1 {
		return fmt.Errorf("queue_capacity must be at least 1, got %d", c.QueueCapacity)
	}
	if c.BusyDelayMs < 0 || c.IdleDelayMs < 0 {
		return fmt.Errorf("dispatch delays must not be negative")
	}
	if c.MaxEmptyAttempts < 0 {
		return fmt.Errorf("max_empty_attempts must not be negative, got %d", c.MaxEmptyAttempts)
	}
	if c.PaneWidth < 1 || c.PaneHeight < 1 {
		return fmt.Errorf("pane size must be positive, got %dx%d", c.PaneWidth, c.PaneHeight)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func (c *Config) BusyDelay() time.Duration {
	return time.Duration(c.BusyDelayMs) * time.Millisecond
}

func (c *Config) IdleDelay() time.Duration {
	return time.Duration(c.IdleDelayMs) * time.Millisecond
}

func (c *Config) Crop() frame.CropMode {
	m, _ := frame.ParseCropMode(c.CropMode)
	return m
}
