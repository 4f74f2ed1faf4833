package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/wfunc/slot-replay/internal/errors"
)

// Config 全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Replay   ReplayConfig   `mapstructure:"replay"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxUploadSize   int64         `mapstructure:"max_upload_size"`
	EnableSwagger   bool          `mapstructure:"enable_swagger"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogLevel        string        `mapstructure:"log_level"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level   string            `mapstructure:"level"`
	Format  string            `mapstructure:"format"`
	Output  string            `mapstructure:"output"`
	File    LogFileConfig     `mapstructure:"file"`
	Modules map[string]string `mapstructure:"modules"`
}

// LogFileConfig 日志文件配置
type LogFileConfig struct {
	Path       string `mapstructure:"path"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// ReplayConfig 脚本回放配置
type ReplayConfig struct {
	Variant      string  `mapstructure:"variant"`       // cluster | ways
	ScriptsPath  string  `mapstructure:"scripts_path"`  // 脚本文件
	ExportPath   string  `mapstructure:"export_path"`   // 结果导出文件
	Workers      int     `mapstructure:"workers"`       // 并行回放数
	DisplayLimit int     `mapstructure:"display_limit"` // 详细打印的不一致脚本数
	Cost         float64 `mapstructure:"cost"`
	Volatility   string  `mapstructure:"volatility"` // low | high

	MultiplierTablePath string `mapstructure:"multiplier_table_path"`
	MysteryTriggerPath  string `mapstructure:"mystery_trigger_path"`

	FGTriggerProbability   float64 `mapstructure:"fg_trigger_probability"`
	FGRetriggerProbability float64 `mapstructure:"fg_retrigger_probability"`

	// 回放结果写入数据库
	Persist bool `mapstructure:"persist"`
}

var (
	cfg  *Config
	once sync.Once
	mu   sync.RWMutex
	v    *viper.Viper
)

// Init 初始化全局配置
func Init(configPath string) error {
	var err error
	once.Do(func() {
		var loaded *Config
		v, loaded, err = load(configPath)
		if err != nil {
			return
		}
		mu.Lock()
		cfg = loaded
		mu.Unlock()
	})

	return err
}

// Load 读取配置文件（不影响全局配置），文件不存在时使用默认值
func Load(configPath string) (*Config, error) {
	_, c, err := load(configPath)
	return c, err
}

func load(configPath string) (*viper.Viper, *Config, error) {
	vp := viper.New()

	// 设置配置文件路径
	if configPath != "" {
		vp.SetConfigFile(configPath)
	} else {
		vp.SetConfigName("config")
		vp.SetConfigType("yaml")
		vp.AddConfigPath("./config")
		vp.AddConfigPath(".")
	}

	// 设置环境变量前缀
	vp.SetEnvPrefix("SLOT_REPLAY")
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vp.AutomaticEnv()

	setDefaults(vp)

	if err := vp.ReadInConfig(); err != nil {
		// 如果配置文件不存在，使用默认配置
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, nil, errors.Wrap(err, errors.ErrConfigLoad)
		}
	}

	c := &Config{}
	if err := vp.Unmarshal(c); err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrConfigParse)
	}
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}
	return vp, c, nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	// 服务器默认配置
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "development")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.max_upload_size", 64<<20)
	v.SetDefault("server.enable_swagger", false)

	// 数据库默认配置
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./data/slot-replay.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.auto_migrate", true)

	// 日志默认配置
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file.path", "./logs")
	v.SetDefault("log.file.filename", "slot-replay.log")
	v.SetDefault("log.file.max_size", 100)
	v.SetDefault("log.file.max_age", 30)
	v.SetDefault("log.file.max_backups", 7)
	v.SetDefault("log.file.compress", true)

	// 回放默认配置
	v.SetDefault("replay.variant", "cluster")
	v.SetDefault("replay.scripts_path", "./scripts.json")
	v.SetDefault("replay.export_path", "./script_results.json")
	v.SetDefault("replay.workers", 4)
	v.SetDefault("replay.display_limit", 5)
	v.SetDefault("replay.cost", 20)
	v.SetDefault("replay.volatility", "low")
	v.SetDefault("replay.multiplier_table_path", "./multiplier_table.json")
	v.SetDefault("replay.mystery_trigger_path", "./mystery_trigger.json")
	v.SetDefault("replay.fg_trigger_probability", 0.005)
	v.SetDefault("replay.fg_retrigger_probability", 0.03)
	v.SetDefault("replay.persist", false)
}

// Validate 校验配置
func (c *Config) Validate() error {
	switch c.Replay.Variant {
	case "cluster", "ways":
	default:
		return errors.Newf(errors.ErrConfigValidate, "replay.variant 无效: %q", c.Replay.Variant)
	}
	if c.Replay.Workers < 1 {
		return errors.Newf(errors.ErrConfigValidate, "replay.workers 必须大于0: %d", c.Replay.Workers)
	}
	if c.Replay.DisplayLimit < 0 {
		return errors.Newf(errors.ErrConfigValidate, "replay.display_limit 不能为负: %d", c.Replay.DisplayLimit)
	}
	p := c.Replay.FGTriggerProbability
	if p < 0 || p >= 1 {
		return errors.Newf(errors.ErrConfigValidate, "replay.fg_trigger_probability 超出范围: %v", p)
	}
	r := c.Replay.FGRetriggerProbability
	if r < 0 || r*10 >= 1 {
		return errors.Newf(errors.ErrConfigValidate, "replay.fg_retrigger_probability 超出范围: %v", r)
	}
	return nil
}

// Get 获取配置实例
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// Watch 监听配置文件变化
func Watch(callback func(*Config)) {
	if v == nil {
		return
	}
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		mu.Lock()
		defer mu.Unlock()

		newCfg := &Config{}
		if err := v.Unmarshal(newCfg); err != nil {
			fmt.Printf("配置重载失败: %v\n", err)
			return
		}
		if err := newCfg.Validate(); err != nil {
			fmt.Printf("配置重载失败: %v\n", err)
			return
		}

		cfg = newCfg

		if callback != nil {
			callback(cfg)
		}

		fmt.Printf("配置已重新加载: %s\n", e.Name)
	})
}
