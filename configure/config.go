package configure

import (
	"fmt"
	"os"
	"strings"

	"github.com/gwuhaolin/amf0kit/utils/dump"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

/*
input: stream.flv
format: flv
output: yaml
level: info
limit: 0
*/

// Input formats
const (
	FormatRaw = "raw"
	FormatFLV = "flv"
)

// DefaultConfigFile is read when present and no other file is named
const DefaultConfigFile = "amf0dump.yaml"

// Config of amf0dump
type Config struct {
	Input      string `mapstructure:"input"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	Level      string `mapstructure:"level"`
	JSONLog    bool   `mapstructure:"json_log"`
	Limit      int    `mapstructure:"limit"`
	ConfigFile string `mapstructure:"config_file"`
}

var defaultConf = Config{
	Format:     FormatRaw,
	Output:     dump.FormatPretty,
	Level:      "info",
	ConfigFile: DefaultConfigFile,
}

// Load builds the config from args, the environment and the config
// file, in decreasing priority. A single positional argument sets the
// input. pflag.ErrHelp is returned as is for -h.
func Load(args []string) (*Config, error) {
	flags := pflag.NewFlagSet("amf0dump", pflag.ContinueOnError)
	flags.String("config_file", defaultConf.ConfigFile, "configure filename")
	flags.String("input", "", "file to decode")
	flags.String("format", defaultConf.Format, "input format: raw or flv")
	flags.String("output", defaultConf.Output, "output format: "+strings.Join(dump.Formats, ", "))
	flags.String("level", defaultConf.Level, "log level")
	flags.Bool("json_log", false, "log as json")
	flags.Int("limit", 0, "max values or script tags to dump, 0 for all")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetDefault("input", "")
	v.SetDefault("format", defaultConf.Format)
	v.SetDefault("output", defaultConf.Output)
	v.SetDefault("level", defaultConf.Level)
	v.SetDefault("json_log", false)
	v.SetDefault("limit", 0)
	v.SetDefault("config_file", defaultConf.ConfigFile)
	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}
	switch flags.NArg() {
	case 0:
	case 1:
		v.Set("input", flags.Arg(0))
	default:
		return nil, fmt.Errorf("unexpected argument: %s", flags.Arg(1))
	}

	v.SetEnvPrefix("AMF0DUMP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	file := v.GetString("config_file")
	explicit := flags.Changed("config_file") || file != DefaultConfigFile
	if _, err := os.Stat(file); err == nil || explicit {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
		log.Debugf("Using config file: %s", file)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks every key holds a usable value
func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("no input file")
	}
	switch c.Format {
	case FormatRaw, FormatFLV:
	default:
		return fmt.Errorf("invalid input format: %q", c.Format)
	}
	valid := false
	for _, f := range dump.Formats {
		if c.Output == f {
			valid = true
		}
	}
	if !valid {
		return fmt.Errorf("invalid output format: %q", c.Output)
	}
	if _, err := log.ParseLevel(c.Level); err != nil {
		return err
	}
	if c.Limit < 0 {
		return fmt.Errorf("invalid limit: %d", c.Limit)
	}
	return nil
}

// InitLog applies the log settings to the standard logger
func (c *Config) InitLog() {
	if c.JSONLog {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{
			FullTimestamp: true,
		})
	}
	if l, err := log.ParseLevel(c.Level); err == nil {
		log.SetLevel(l)
		log.SetReportCaller(l == log.DebugLevel)
	}
}
