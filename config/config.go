package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v4"
)

type Config struct {
	Redis      RedisConfig      `yaml:"redis"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	GistStore  GistStoreConfig  `yaml:"gist_store"`
	ParcelDesk ParcelDeskConfig `yaml:"parceldesk"`
}

type RedisConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type KafkaConfig struct {
	Host                         string `yaml:"host"`
	Port                         int    `yaml:"port"`
	ParcelStatusUpdatedTopicName string `yaml:"parcel_status_updated_topic_name"`
}

type GistStoreConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`

	// Document id of the remote backup. Empty until the first save creates one.
	DocumentID string `yaml:"document_id"`
}

type ParcelDeskConfig struct {
	HTTPAddr  string `yaml:"http_addr"`
	JWTSecret string `yaml:"jwt_secret"`

	// Fixed-size paging window for list views.
	PageSize int `yaml:"page_size"`

	TokenTTLSeconds int `yaml:"token_ttl_seconds"`
}

func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	return &config, nil
}
