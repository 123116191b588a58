package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const defaultPath = "."

// Configはアプリ全体の設定
// 起動時に1回だけ読み込み、必要なところへ渡す
type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"` // dev/prod
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port         int           `json:"port" yaml:"port"` // サーバーポート（8080）
		ReadTimeout  time.Duration `json:"readTimeout" yaml:"readTimeout"`
		WriteTimeout time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
	} `json:"http" yaml:"http"`

	Database Database `json:"database" yaml:"database"`
	Auth     Auth     `json:"auth" yaml:"auth"`
	Oracle   Oracle   `json:"oracle" yaml:"oracle"`
	Mail     Mail     `json:"mail" yaml:"mail"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

type Database struct {
	Driver   string `json:"driver" yaml:"driver"` // postgres / sqlite
	DSN      string `json:"dsn" yaml:"dsn"`       // あれば最優先
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`
	Name     string `json:"name" yaml:"name"`
	SSLMode  string `json:"sslMode" yaml:"sslMode"`
}

type Auth struct {
	JWTSecret  string        `json:"jwtSecret" yaml:"jwtSecret"` // JWT署名シークレット
	AccessTTL  time.Duration `json:"accessTTL" yaml:"accessTTL"`
	BcryptCost int           `json:"bcryptCost" yaml:"bcryptCost"`
}

// 外部マーケットの検索API
type Oracle struct {
	BaseURL        string        `json:"baseURL" yaml:"baseURL"`
	AppID          string        `json:"appID" yaml:"appID"`
	SiteID         string        `json:"siteID" yaml:"siteID"`
	Timeout        time.Duration `json:"timeout" yaml:"timeout"`
	MaxConcurrency int           `json:"maxConcurrency" yaml:"maxConcurrency"`
}

type Mail struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"` // falseならログに出すだけ
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	From     string `json:"from" yaml:"from"`
	BaseURL  string `json:"baseURL" yaml:"baseURL"` // メール本文のリンク先
}

// Loadは.env → config.yaml → 環境変数の順で読み込む
func Load() (Config, error) {
	//.envは無くてもよい
	_ = godotenv.Load()

	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return Config{}, err
	}
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return *cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Auth.AccessTTL == 0 {
		cfg.Auth.AccessTTL = 15 * time.Minute
	}
	if cfg.Oracle.Timeout == 0 {
		cfg.Oracle.Timeout = 5 * time.Second
	}
	if cfg.Oracle.MaxConcurrency <= 0 {
		cfg.Oracle.MaxConcurrency = 8
	}
	if cfg.Env.Log.Level == "" {
		cfg.Env.Log.Level = "info"
	}
}

// 必須チェック
func (c *Config) validate() error {
	if c.Env.Env == "" {
		return errors.New("env.env is required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwtSecret is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.DSN == "" {
			return errors.New("database.dsn is required for sqlite")
		}
	case "postgres":
		if c.Database.DSN != "" {
			break
		}
		if c.Database.Host == "" {
			return errors.New("database.host is required")
		}
		if c.Database.User == "" {
			return errors.New("database.user is required")
		}
		if c.Database.Name == "" {
			return errors.New("database.name is required")
		}
	default:
		return errors.Errorf("unknown database.driver: %s", c.Database.Driver)
	}

	if c.Oracle.BaseURL == "" {
		return errors.New("oracle.baseURL is required")
	}
	if c.Mail.Enabled && (c.Mail.Host == "" || c.Mail.From == "") {
		return errors.New("mail.host and mail.from are required when mail is enabled")
	}
	return nil
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](name string, configPath ...string) (*T, error) {
	cfg := new(T)
	k := koanf.New(".")

	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			searchPaths = append(searchPaths, filepath.Join(pwd, path))
		}
	}

	var configFile string
	for _, path := range searchPaths {
		candidate := filepath.Join(path, name+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			break
		}
	}
	if configFile == "" {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", name)
	}

	if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", name)
	}

	existing := k.Raw()

	//環境変数で上書き（DATABASE_SSLMODE -> database.sslMode）
	if err := k.Load(env.Provider(".", env.Opt{
		TransformFunc: func(key, v string) (string, any) {
			return canonicalizeEnvKey(key, existing), v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", name)
	}

	return cfg, nil
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}
		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (string, map[string]any, bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}
		child, _ := value.(map[string]any)
		return key, child, true
	}
	return "", nil, false
}

func normalizeToken(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
