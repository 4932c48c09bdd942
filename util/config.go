package util

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

const Name = "hive"
const ConfigFileName = "config.yaml"

//go:embed config_default.yaml
var embeddedConfig []byte

type AppConfig struct {
	Conf struct {
		Host                string
		HttpPort            int    `yaml:"httpPort"`
		Domain              string `yaml:"domain"`
		StoragePublicPath   string `yaml:"storagePublicPath"`
		DeliveryTimeoutSecs int    `yaml:"deliveryTimeoutSecs"`
		WorkerIntervalSecs  int    `yaml:"workerIntervalSecs"`
		WithFederation      bool   `yaml:"withFederation"`
	}
}

// BaseURI returns the public base URI of this instance, e.g. "https://hive.example".
func (c *AppConfig) BaseURI() string {
	return fmt.Sprintf("https://%s", c.Conf.Domain)
}

func ReadConf() (*AppConfig, error) {

	c := &AppConfig{}

	// Try to resolve config file path (local first, then user dir)
	configPath := ResolveFilePath(ConfigFileName)

	var buf []byte
	var err error

	// Try to read from resolved path
	buf, err = os.ReadFile(configPath)
	if err != nil {
		// If file doesn't exist, use embedded config and create user config file
		log.Info("Config file not found, using embedded defaults", "path", configPath)
		buf = embeddedConfig

		// Try to write default config to user config directory
		configDir, dirErr := GetConfigDir()
		if dirErr == nil {
			userConfigPath := configDir + "/" + ConfigFileName
			writeErr := os.WriteFile(userConfigPath, embeddedConfig, 0644)
			if writeErr != nil {
				log.Warn("Could not write default config", "path", userConfigPath, "err", writeErr)
			} else {
				log.Info("Created default config file", "path", userConfigPath)
			}
		}
	}

	err = yaml.Unmarshal(buf, c)
	if err != nil {
		return nil, fmt.Errorf("in config file: %w", err)
	}

	envHost := os.Getenv("HIVE_HOST")
	envHttpPort := os.Getenv("HIVE_HTTPPORT")
	envDomain := os.Getenv("HIVE_DOMAIN")
	envStoragePath := os.Getenv("HIVE_STORAGE_PUBLIC_PATH")
	envDeliveryTimeout := os.Getenv("HIVE_DELIVERY_TIMEOUT_SECS")
	envWorkerInterval := os.Getenv("HIVE_WORKER_INTERVAL_SECS")
	envWithFederation := os.Getenv("HIVE_WITH_FEDERATION")

	if envHost != "" {
		c.Conf.Host = envHost
	}

	if envHttpPort != "" {
		v, err := strconv.Atoi(envHttpPort)
		if err != nil {
			fmt.Println(err)
		}
		c.Conf.HttpPort = v
	}

	if envDomain != "" {
		c.Conf.Domain = envDomain
	}

	if envStoragePath != "" {
		c.Conf.StoragePublicPath = envStoragePath
	}

	if envDeliveryTimeout != "" {
		v, err := strconv.Atoi(envDeliveryTimeout)
		if err != nil {
			fmt.Println(err)
		}
		c.Conf.DeliveryTimeoutSecs = v
	}

	if envWorkerInterval != "" {
		v, err := strconv.Atoi(envWorkerInterval)
		if err != nil {
			fmt.Println(err)
		}
		c.Conf.WorkerIntervalSecs = v
	}

	if envWithFederation == "true" {
		c.Conf.WithFederation = true
	}

	if c.Conf.DeliveryTimeoutSecs <= 0 {
		c.Conf.DeliveryTimeoutSecs = 10
	}

	if c.Conf.WorkerIntervalSecs <= 0 {
		c.Conf.WorkerIntervalSecs = 10
	}

	return c, nil
}
