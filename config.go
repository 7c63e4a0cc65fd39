package main

import (
	"log"
	"os"

	"gopkg.in/yaml.v2"
)

// Config defines a configuration for the application. Values come from
// conf.yaml when present; environment variables win over the file.
type Config struct {
	Listen     string `yaml:"listen"`
	Port       string `yaml:"port"`
	UseSSL     bool   `yaml:"use_ssl"`
	UploadsDir string `yaml:"uploads_dir"`
	StaticDir  string `yaml:"static_dir"`
	PublicURL  string `yaml:"public_url"`
}

func (c *Config) read() *Config {
	// Defaults
	c.Port = "5000"
	c.UploadsDir = "uploads"
	c.StaticDir = "static"

	yamlFile, err := os.ReadFile("conf.yaml")
	if err == nil {
		err = yaml.Unmarshal(yamlFile, c)
		if err != nil {
			log.Fatalf("Unmarshal: %v", err)
		}
	}

	// Environment overrides
	if listen, exists := os.LookupEnv("LISTEN"); exists {
		c.Listen = listen
	}
	if port, exists := os.LookupEnv("PORT"); exists {
		c.Port = port
	}
	if sslString, exists := os.LookupEnv("USE_SSL"); exists {
		c.UseSSL = sslString == "true" || sslString == "yes"
	}
	if uploads, exists := os.LookupEnv("UPLOADS_DIR"); exists {
		c.UploadsDir = uploads
	}
	if static, exists := os.LookupEnv("STATIC_DIR"); exists {
		c.StaticDir = static
	}
	if public, exists := os.LookupEnv("PUBLIC_URL"); exists {
		c.PublicURL = public
	}

	return c
}
