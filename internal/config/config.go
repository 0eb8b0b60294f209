package config

import (
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	Pg               Pg            `yaml:"pg"`
	JwtTTL           time.Duration `yaml:"jwt_ttl"`
	LogLevel         string        `yaml:"log_level"`
	LogJSON          bool          `yaml:"log_json"`
	SecureCookies    bool          `yaml:"secure_cookies"`
	MaxFileSizeBytes int64         `yaml:"max_file_size_bytes"` // per input file cap
	MaxBatchFiles    int           `yaml:"max_batch_files"`
	AllowedMimeTypes []string      `yaml:"allowed_mime_types"`
	RenderScale      float64       `yaml:"render_scale"` // pdf rasterization upscale factor
	Assets           Assets        `yaml:"assets"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
	InitPath string `yaml:"initpath"`
}

// Assets selects and configures the remote asset backend.
// backend "http" posts to an external image host, "local" writes to disk
// and serves files under /media/.
type Assets struct {
	Backend       string `yaml:"backend"`
	UploadURL     string `yaml:"upload_url"`
	UploadPreset  string `yaml:"upload_preset"`
	Folder        string `yaml:"folder"`
	LocalRoot     string `yaml:"local_root"`
	PublicBaseURL string `yaml:"public_base_url"`
}

type Private struct {
	JwtKey            string `yaml:"jwt_key"`
	AdminEmail        string `yaml:"admin_email"`
	AdminPasswordHash string `yaml:"admin_password_hash"` // bcrypt
}

func (c *Config) JwtKey() string {
	return c.Private.JwtKey
}

func (c *Config) JwtTTL() time.Duration {
	return c.Public.JwtTTL
}

const (
	DefaultMaxFileSizeBytes = 10 << 20 // 10 MB, hardcoded policy
	DefaultMaxBatchFiles    = 10
	DefaultRenderScale      = 2.0
)

func (p *Public) applyDefaults() {
	if p.MaxFileSizeBytes == 0 {
		p.MaxFileSizeBytes = DefaultMaxFileSizeBytes
	}
	if p.MaxBatchFiles == 0 {
		p.MaxBatchFiles = DefaultMaxBatchFiles
	}
	if len(p.AllowedMimeTypes) == 0 {
		p.AllowedMimeTypes = []string{"application/pdf", "image/jpeg", "image/png"}
	}
	if p.RenderScale == 0 {
		p.RenderScale = DefaultRenderScale
	}
	if p.LogLevel == "" {
		p.LogLevel = "info"
	}
	if p.Assets.Backend == "" {
		p.Assets.Backend = "local"
	}
	if p.Assets.LocalRoot == "" {
		p.Assets.LocalRoot = "media"
	}
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)

	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file")
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)
	public.applyDefaults()

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	return &Config{public, private}
}
