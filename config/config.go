package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
		Mode string `yaml:"mode"`
	} `yaml:"server"`
	MySQL struct {
		DSN string `yaml:"dsn"`
	} `yaml:"mysql"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
	} `yaml:"redis"`
	Worker struct {
		Addr string `yaml:"addr"`
	} `yaml:"worker"`
	Session struct {
		Secret string `yaml:"secret"`
	} `yaml:"session"`
	Seed bool `yaml:"seed"`
}

var AppConfig *Config

func InitConfig() {
	// .env 可选，用于本地覆盖敏感配置
	_ = godotenv.Load()

	f, err := os.Open("config/config.yaml")
	if err != nil {
		log.Fatalf("配置文件读取失败: %v", err)
	}
	defer f.Close()
	decoder := yaml.NewDecoder(f)
	AppConfig = &Config{}
	if err := decoder.Decode(AppConfig); err != nil {
		log.Fatalf("配置文件解析失败: %v", err)
	}

	// 环境变量优先于 yaml
	if dsn := os.Getenv("MYSQL_DSN"); dsn != "" {
		AppConfig.MySQL.DSN = dsn
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		AppConfig.Redis.Addr = addr
	}
	if secret := os.Getenv("SESSION_SECRET"); secret != "" {
		AppConfig.Session.Secret = secret
	}
}
