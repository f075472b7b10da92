package domain

import (
	"flag"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	configKit "github.com/gookit/config/v2"
	"github.com/gookit/config/v2/yaml"
	"github.com/imdario/mergo"
	"github.com/mitchellh/mapstructure"
	yamlv2 "gopkg.in/yaml.v2"
)

const (
	OptionName    = "name"
	OptionDefault = "default"
	OptionDesc    = "description"

	DefaultTimeoutScanInterval = time.Second * 5
	DefaultStuckThreshold      = time.Hour * 2
	DefaultEvictionInterval    = time.Second * 60
	DefaultRetentionWindow     = time.Hour
	DefaultSendQueueCapacity   = 64
)

type Configuration struct {
	YAML string `name:"yaml" yaml:"-" description:"Path to config file in the yml format."`

	ServerPort     int    `name:"server-port" yaml:"server-port" description:"Port of the HTTP/WebSocket server."`
	AllowedOrigins string `name:"allowed-origins" yaml:"allowed-origins" description:"Comma-separated list of origins permitted to open WebSocket connections. Empty means any origin is accepted."`
	LogLevel       string `name:"log-level" yaml:"log-level" description:"Minimum log level (debug, info, warn, error)."`
	EnablePprof    bool   `name:"enable-pprof" yaml:"enable-pprof" description:"If true, expose the pprof routes under /dev/pprof."`

	TimeoutScanInterval string `name:"timeout-scan-interval" yaml:"timeout-scan-interval" description:"How frequently running sessions are scanned for timeouts and refreshed with executor metrics."`
	StuckThreshold      string `name:"stuck-threshold" yaml:"stuck-threshold" description:"How long a session may remain RUNNING before a TIMEOUT event is emitted for it."`
	EvictionInterval    string `name:"eviction-interval" yaml:"eviction-interval" description:"How frequently finished sessions are considered for eviction."`
	RetentionWindow     string `name:"retention-window" yaml:"retention-window" description:"How long a finished session stays resident before it is evicted."`

	SendQueueCapacity int `name:"send-queue-capacity" yaml:"send-queue-capacity" description:"Maximum number of outbound messages buffered per WebSocket connection."`
}

// GetDefaultConfig returns a Configuration populated with the default value of every option.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		ServerPort:          8000,
		LogLevel:            "debug",
		TimeoutScanInterval: DefaultTimeoutScanInterval.String(),
		StuckThreshold:      DefaultStuckThreshold.String(),
		EvictionInterval:    DefaultEvictionInterval.String(),
		RetentionWindow:     DefaultRetentionWindow.String(),
		SendQueueCapacity:   DefaultSendQueueCapacity,
	}
}

func (opts *Configuration) String() string {
	out, err := yamlv2.Marshal(opts)
	if err != nil {
		panic(err)
	}

	return string(out)
}

// CheckUsage registers a command-line flag for every tagged field of the Configuration, parses the flags,
// and then merges in the contents of the YAML file (if one was specified).
func (opts *Configuration) CheckUsage() {
	opts.CheckUsageWith(flag.CommandLine, os.Args[1:])
}

// CheckUsageWith is CheckUsage against an explicit flag set and argument list.
func (opts *Configuration) CheckUsageWith(flagSet *flag.FlagSet, args []string) {
	var printInfo bool
	flagSet.BoolVar(&printInfo, "h", false, "help info?")

	oType := reflect.TypeOf(opts).Elem()
	oVal := reflect.ValueOf(opts).Elem()
	numField := oType.NumField()
	for i := 0; i < numField; i++ {
		field := oType.Field(i)
		if field.PkgPath != "" {
			continue
		}

		name := field.Tag.Get(OptionName)
		if name == "" {
			continue
		}
		desc := field.Tag.Get(OptionDesc)
		opt := oVal.Field(i)
		switch field.Type.Kind() {
		case reflect.Bool:
			flagSet.BoolVar(opt.Addr().Interface().(*bool), name, opt.Bool(), desc)
		case reflect.Int:
			flagSet.IntVar(opt.Addr().Interface().(*int), name, int(opt.Int()), desc)
		case reflect.Int64:
			flagSet.Int64Var(opt.Addr().Interface().(*int64), name, opt.Int(), desc)
		case reflect.Float64:
			flagSet.Float64Var(opt.Addr().Interface().(*float64), name, opt.Float(), desc)
		case reflect.String:
			flagSet.StringVar(opt.Addr().Interface().(*string), name, opt.String(), desc)
		default:
			panic(fmt.Errorf("unsupported config type: %v", field.Type.Kind()))
		}
	}

	if err := flagSet.Parse(args); err != nil {
		panic(err)
	}

	if printInfo {
		fmt.Fprintf(os.Stderr, "Usage: ./server [options]\n")
		fmt.Fprintf(os.Stderr, "Available options:\n")
		flagSet.PrintDefaults()
		os.Exit(0)
	}

	if opts.YAML != "" {
		if err := opts.MergeFile(opts.YAML); err != nil {
			panic(err)
		}
	}
}

// MergeFile loads the YAML file at the given path and merges any non-zero values it contains over the
// current contents of the Configuration.
func (opts *Configuration) MergeFile(path string) error {
	loader := configKit.NewWithOptions("execution-monitor", func(opt *configKit.Options) {
		opt.TagName = OptionName
		// No TagName is applied by configKit if DecoderConfig is nil.
		opt.DecoderConfig = &mapstructure.DecoderConfig{}
	})
	loader.AddDriver(yaml.Driver)

	if err := loader.LoadFiles(path); err != nil {
		return err
	}

	fileOpts := &Configuration{}
	if err := loader.BindStruct("", fileOpts); err != nil {
		return err
	}

	return mergo.Merge(opts, fileOpts, mergo.WithOverride)
}

// TimeoutScanIntervalDuration returns the parsed timeout-scan-interval option.
func (opts *Configuration) TimeoutScanIntervalDuration() time.Duration {
	return parseDurationOrDefault(opts.TimeoutScanInterval, DefaultTimeoutScanInterval)
}

// StuckThresholdDuration returns the parsed stuck-threshold option.
func (opts *Configuration) StuckThresholdDuration() time.Duration {
	return parseDurationOrDefault(opts.StuckThreshold, DefaultStuckThreshold)
}

// EvictionIntervalDuration returns the parsed eviction-interval option.
func (opts *Configuration) EvictionIntervalDuration() time.Duration {
	return parseDurationOrDefault(opts.EvictionInterval, DefaultEvictionInterval)
}

// RetentionWindowDuration returns the parsed retention-window option.
func (opts *Configuration) RetentionWindowDuration() time.Duration {
	return parseDurationOrDefault(opts.RetentionWindow, DefaultRetentionWindow)
}

// AllowedOriginList returns the allowed-origins option split on commas. An empty list means any origin is accepted.
func (opts *Configuration) AllowedOriginList() []string {
	origins := make([]string, 0)
	for _, origin := range strings.Split(opts.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}

	return origins
}

// SendQueueCapacityOrDefault returns the send-queue-capacity option, or the default if it is not positive.
func (opts *Configuration) SendQueueCapacityOrDefault() int {
	if opts.SendQueueCapacity <= 0 {
		return DefaultSendQueueCapacity
	}

	return opts.SendQueueCapacity
}

func parseDurationOrDefault(value string, defaultValue time.Duration) time.Duration {
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil || duration <= 0 {
		fmt.Fprintf(os.Stderr, "[WARN] Invalid duration \"%s\"; using default of %v.\n", value, defaultValue)
		return defaultValue
	}

	return duration
}
