package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/BioSina/MAPle/errors"
	"github.com/BioSina/MAPle/logger"
)

// EnvPrefix prefixes environment variables overriding file values.
const EnvPrefix = "MAPLE"

// FileSystem interface for file operations (useful for testing).
type FileSystem interface {
	Exists(path string) bool
	Open(path string) (io.ReadCloser, error)
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem using actual file operations.
type RealFileSystem struct{}

func (rfs *RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (rfs *RealFileSystem) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

func (rfs *RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	EnvFile    string // Direct env file path (optional)
	Logger     *logger.Logger
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithLogger sets the logger receiving warnings about the file.
func WithLogger(l *logger.Logger) LoaderOption {
	return func(lc *LoaderConfig) { lc.Logger = l }
}

// fileConfig mirrors the configuration keys as Viper decodes them. Flags
// stay strings so the "only False is false" rule can be applied.
type fileConfig struct {
	Name string `mapstructure:"name"`

	FastQC     string `mapstructure:"fastqc"`
	Gzip       string `mapstructure:"gzip"`
	Perl       string `mapstructure:"perl"`
	Prinseq    string `mapstructure:"prinseq"`
	Megan      string `mapstructure:"megan"`
	Diamond    string `mapstructure:"diamond"`
	Malt       string `mapstructure:"malt"`
	MeganTools string `mapstructure:"megantools"`
	Metaxa     string `mapstructure:"metaxa"`

	DiamondIndex string `mapstructure:"diamondindex"`
	Taxonomy     string `mapstructure:"taxonomy"`
	EggNOG       string `mapstructure:"eggnog"`
	InterPro     string `mapstructure:"interpro"`
	Seed         string `mapstructure:"seed"`
	HostDB       string `mapstructure:"hostdb"`
	MaltBase     string `mapstructure:"maltbase"`

	TrimWindow    int    `mapstructure:"trimwindow"`
	TrimQual      int    `mapstructure:"trimqual"`
	MinLength     int    `mapstructure:"minlength"`
	LeftTrim      int    `mapstructure:"lefttrim"`
	TrimSwapMates string `mapstructure:"trimswapmates"`

	MaxEValue   float64 `mapstructure:"maxeval"`
	MinSupport  float64 `mapstructure:"minsupp"`
	MaltEValue  float64 `mapstructure:"malteval"`
	MaltSupport float64 `mapstructure:"maltsupp"`
	Threads     int     `mapstructure:"threads"`
	Threads16S  int     `mapstructure:"threads16s"`

	RawAbsolute  int     `mapstructure:"rawabsolute"`
	Raw2TrimLoss float64 `mapstructure:"raw2trimloss"`

	PairID1 string `mapstructure:"pairid1"`
	PairID2 string `mapstructure:"pairid2"`

	Basic      string `mapstructure:"basic"`
	FilterHost string `mapstructure:"filterhost"`
	SixteenS   string `mapstructure:"16s"`
	KeepRaw    string `mapstructure:"keepraw"`
	Compressed string `mapstructure:"compressed"`

	StageTimeout        string `mapstructure:"stagetimeout"`
	GracePeriod         string `mapstructure:"graceperiod"`
	Retries             int    `mapstructure:"retries"`
	SampleWorkers       int    `mapstructure:"sampleworkers"`
	SubpipelineParallel int    `mapstructure:"subpipelineparallel"`

	OTLPEndpoint string `mapstructure:"otlpendpoint"`
	OTLPInsecure string `mapstructure:"otlpinsecure"`

	logger.Config `mapstructure:",squash"`
}

var lineRe = regexp.MustCompile(`^\s*([^=\s]+)\s*=\s*(.*?)\s*$`)

// Load reads the configuration file at path, overlays environment
// variables and returns the validated Config.
func Load(path string, opts ...LoaderOption) (Config, error) {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = &RealFileSystem{}
	}
	if lc.Logger == nil {
		lc.Logger = logger.WithComponent("config")
	}

	if !lc.FileSystem.Exists(path) {
		return Config{}, errors.InvalidConfig(fmt.Sprintf("configuration file %s does not exist", path)).
			WithDetail("path", path)
	}

	envFile := lc.EnvFile
	if envFile == "" {
		envFile = filepath.Join(filepath.Dir(path), ".env")
	}
	if lc.FileSystem.Exists(envFile) {
		if err := lc.FileSystem.LoadEnv(envFile); err != nil {
			lc.Logger.Warn("failed to load .env file", logger.Fields("path", envFile, logger.FieldError, err.Error()))
		}
	}

	f, err := lc.FileSystem.Open(path)
	if err != nil {
		return Config{}, errors.InvalidConfig(fmt.Sprintf("configuration file %s cannot be read", path)).WithCause(err)
	}
	defer f.Close()

	values, err := Parse(f)
	if err != nil {
		return Config{}, err
	}
	return fromValues(values, lc.Logger, true)
}

// Parse reads "key = value" assignments. Comment lines starting with '#'
// and blank lines are skipped. Later assignments win.
func Parse(r io.Reader) (map[string]string, error) {
	values := make(map[string]string)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}
		m := lineRe.FindStringSubmatch(line)
		if m == nil {
			return nil, errors.InvalidConfig(fmt.Sprintf("line %d is not a key = value assignment", lineNo)).
				WithDetail("line", lineNo)
		}
		values[m[1]] = m[2]
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.InvalidConfig("configuration file cannot be read").WithCause(err)
	}
	return values, nil
}

func fromValues(values map[string]string, log *logger.Logger, env bool) (Config, error) {
	v := viper.New()
	defaults := Defaults()
	for key, value := range defaults {
		v.SetDefault(strings.ToLower(key), value)
	}
	if env {
		v.SetEnvPrefix(EnvPrefix)
		v.AutomaticEnv()
	}

	fileValues := make(map[string]any, len(values))
	var unknown []string
	for key, value := range values {
		if _, ok := knownKeys[strings.ToLower(key)]; !ok {
			unknown = append(unknown, key)
			continue
		}
		fileValues[strings.ToLower(key)] = value
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		log.Warn("ignoring unknown configuration key", logger.Fields("key", key))
	}
	if err := v.MergeConfigMap(fileValues); err != nil {
		return Config{}, errors.InvalidConfig("configuration values cannot be merged").WithCause(err)
	}

	var raw fileConfig
	if err := v.Unmarshal(&raw); err != nil {
		return Config{}, errors.InvalidConfig("configuration values have the wrong type").WithCause(err)
	}

	cfg, err := raw.toConfig()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (r fileConfig) toConfig() (Config, error) {
	stageTimeout, err := parseDuration("stageTimeout", r.StageTimeout)
	if err != nil {
		return Config{}, err
	}
	grace, err := parseDuration("gracePeriod", r.GracePeriod)
	if err != nil {
		return Config{}, err
	}

	logging := r.Config
	logging.ApplyDefaults()

	return Config{
		Name: r.Name,
		Tools: Tools{
			FastQC:     r.FastQC,
			Gzip:       r.Gzip,
			Perl:       r.Perl,
			Prinseq:    r.Prinseq,
			Megan:      r.Megan,
			Diamond:    r.Diamond,
			Malt:       r.Malt,
			MeganTools: r.MeganTools,
			Metaxa:     r.Metaxa,
		},
		References: References{
			DiamondIndex: r.DiamondIndex,
			Taxonomy:     r.Taxonomy,
			EggNOG:       r.EggNOG,
			InterPro:     r.InterPro,
			Seed:         r.Seed,
			HostDB:       r.HostDB,
			MaltBase:     r.MaltBase,
		},
		Trim: Trim{
			Window:    r.TrimWindow,
			Quality:   r.TrimQual,
			MinLength: r.MinLength,
			Left:      r.LeftTrim,
			SwapMates: Flag(r.TrimSwapMates),
		},
		Alignment: Alignment{
			MaxEValue:   r.MaxEValue,
			MinSupport:  r.MinSupport,
			MaltEValue:  r.MaltEValue,
			MaltSupport: r.MaltSupport,
			Threads:     r.Threads,
			Threads16S:  r.Threads16S,
		},
		Thresholds: Thresholds{
			RawAbsolute:  r.RawAbsolute,
			Raw2TrimLoss: r.Raw2TrimLoss,
		},
		Naming: NewNaming(r.PairID1, r.PairID2),
		Modules: Modules{
			Basic:      Flag(r.Basic),
			FilterHost: Flag(r.FilterHost),
			SixteenS:   Flag(r.SixteenS),
		},
		Runtime: Runtime{
			StageTimeout:        stageTimeout,
			GracePeriod:         grace,
			Attempts:            r.Retries,
			SampleWorkers:       r.SampleWorkers,
			SubpipelineParallel: r.SubpipelineParallel,
		},
		Telemetry: Telemetry{
			OTLPEndpoint: r.OTLPEndpoint,
			Insecure:     Flag(r.OTLPInsecure),
		},
		Logging:    logging,
		KeepRaw:    Flag(r.KeepRaw),
		Compressed: Flag(r.Compressed),
	}, nil
}

// Flag interprets a switch value: only the literal "False" disables it.
func Flag(value string) bool {
	return value != "False"
}

func parseDuration(key, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, errors.InvalidConfig(fmt.Sprintf("%s: %q is not a duration", key, value)).WithCause(err)
	}
	return d, nil
}
