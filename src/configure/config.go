package configure

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/robert-clayton/audiobook/src/fileutil"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// defaults are marshalled with the mapstructure tags so viper sees the same
// keys it unmarshals into.
var json = jsoniter.Config{TagKey: "mapstructure"}.Froze()

type SynthesizerCfg struct {
	Backend     string        `mapstructure:"backend"`
	URL         string        `mapstructure:"url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	RedisURI    string        `mapstructure:"redis_uri"`
	TaskSetKey  string        `mapstructure:"task_set_key"`
	OutputEvent string        `mapstructure:"output_event"`
}

type ScrapeCfg struct {
	PoliteDelay time.Duration `mapstructure:"polite_delay"`
	UserAgent   string        `mapstructure:"user_agent"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type Settings struct {
	Level         string `mapstructure:"level"`
	LogFormat     string `mapstructure:"log_format"`
	LogFile       string `mapstructure:"log_file"`
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb"`
	LogMaxBackups int    `mapstructure:"log_max_backups"`

	InputDir  string `mapstructure:"input_dir"`
	OutputDir string `mapstructure:"output_dir"`
	TmpDir    string `mapstructure:"tmp_dir"`
	VoicesDir string `mapstructure:"voices_dir"`

	Language        string  `mapstructure:"language"`
	Speed           float64 `mapstructure:"speed"`
	MaxChunkSize    int     `mapstructure:"max_chunk_size"`
	Codec           string  `mapstructure:"codec"`
	FFmpegPath      string  `mapstructure:"ffmpeg_path"`
	Assembler       string  `mapstructure:"assembler"`
	UnmappedSpeaker string  `mapstructure:"unmapped_speaker"`
	ScrapeWorkers   int     `mapstructure:"scrape_workers"`

	Synthesizer SynthesizerCfg `mapstructure:"synthesizer"`
	Scrape      ScrapeCfg      `mapstructure:"scrape"`
}

// Config is the whole persisted document. Settings are read through viper
// so they can be overridden from the environment; the series list is owned
// by this package and written back verbatim on Save.
type Config struct {
	Path     string
	Settings Settings
	Series   []SeriesConfig

	settingsNode yaml.Node
}

type document struct {
	Config yaml.Node      `yaml:"config"`
	Series []SeriesConfig `yaml:"series"`
}

// default config
var defaultConf = Settings{
	Level:         "info",
	LogFormat:     "text",
	LogMaxSizeMB:  20,
	LogMaxBackups: 3,

	InputDir:  "inputs",
	OutputDir: "output",
	TmpDir:    "tmp",
	VoicesDir: "speakers",

	Language:        "en",
	Speed:           1.0,
	MaxChunkSize:    250,
	Codec:           "mp3",
	FFmpegPath:      "ffmpeg",
	Assembler:       "ffmpeg",
	UnmappedSpeaker: "prompt",
	ScrapeWorkers:   4,

	Synthesizer: SynthesizerCfg{
		Backend:     "xtts",
		URL:         "http://localhost:8020",
		Timeout:     5 * time.Minute,
		TaskSetKey:  "audiobook:tts:tasks",
		OutputEvent: "audiobook:tts:results",
	},
	Scrape: ScrapeCfg{
		PoliteDelay: time.Second,
		UserAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
		Timeout:     30 * time.Second,
	},
}

// Load reads the config document at path. A missing file yields defaults
// and an empty series list.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Default config
	b, err := json.Marshal(map[string]interface{}{"config": defaultConf})
	if err != nil {
		return nil, err
	}
	v.SetConfigType("json")
	if err := v.ReadConfig(bytes.NewReader(b)); err != nil {
		return nil, err
	}

	cfg := &Config{Path: path}

	// File
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.WithField("path", path).Warn("config file not found, using defaults")
	case err != nil:
		return nil, err
	default:
		v.SetConfigType("yaml")
		if err := v.MergeConfig(bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		doc := document{}
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		cfg.Series = doc.Series
		cfg.settingsNode = doc.Config
	}

	sub := v.Sub("config")
	if sub == nil {
		return nil, fmt.Errorf("parse %s: missing config section", path)
	}

	// Environment
	bindEnv(sub)
	if err := sub.Unmarshal(&cfg.Settings); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the series list back to Path, keeping the settings section as
// it was read. The write goes through a temp file so an interrupt never
// leaves a truncated config behind.
func Save(cfg *Config) error {
	doc := document{Config: cfg.settingsNode, Series: cfg.Series}
	if doc.Config.Kind == 0 {
		b, err := json.Marshal(cfg.Settings)
		if err != nil {
			return err
		}
		settings := map[string]interface{}{}
		if err := json.Unmarshal(b, &settings); err != nil {
			return err
		}
		if err := doc.Config.Encode(settings); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}

	return fileutil.WriteAtomic(cfg.Path, buf.Bytes())
}

// Enabled returns the indexes of enabled series in config order.
func (c *Config) Enabled() []int {
	idx := []int{}
	for i := range c.Series {
		if c.Series[i].IsEnabled() {
			idx = append(idx, i)
		}
	}
	return idx
}

// bindEnv enables AUDIOBOOK_CONFIG_* overrides on the config sub tree.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("audiobook_config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()
	for _, key := range v.AllKeys() {
		_ = v.BindEnv(key)
	}
}
