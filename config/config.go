package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/google/uuid"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	defaultPath               = "."
	defaultMaxRequestBodySize = "100KB"

	defaultTimeZone          = "America/New_York"
	defaultMaxBatchSize      = 400
	defaultStoreBatchLimit   = 500
	defaultLeaseTTL          = 15 * time.Minute
	defaultPayrollBatchLimit = 100
	defaultPayPeriodAnchor   = "2025-04-13"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port               int    `json:"port" yaml:"port"`
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	// Firebase project used by the Firestore store
	Firebase *FirebaseConfig `json:"firebase" yaml:"firebase"`

	// Store selects the document store backend
	Store *StoreConfig `json:"store" yaml:"store"`

	// Schedule configures the daily service generation run
	Schedule *ScheduleConfig `json:"schedule" yaml:"schedule"`

	// Payroll configures pay periods and payroll processing
	Payroll *PayrollConfig `json:"payroll" yaml:"payroll"`

	// PubSub configuration for trigger events
	PubSub *PubSubConfig `json:"pubsub" yaml:"pubsub"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// FirebaseConfig defines the Firebase project and credentials
type FirebaseConfig struct {
	ProjectID       string `json:"projectId" yaml:"projectId"`
	CredentialsPath string `json:"credentialsPath" yaml:"credentialsPath"`
}

// StoreConfig defines which document store backs the repositories
type StoreConfig struct {
	// Provider type: "firestore" or "memory"
	Provider string `json:"provider" yaml:"provider"`

	// Optional JSON fixture loaded into the memory store on startup
	SeedPath string `json:"seedPath" yaml:"seedPath"`
}

// ScheduleConfig defines the recurring service generation run
type ScheduleConfig struct {
	// IANA time zone of the business; weekdays and "today" are computed in it
	TimeZone string `json:"timeZone" yaml:"timeZone"`

	// Maximum writes per committed batch
	MaxBatchSize int `json:"maxBatchSize" yaml:"maxBatchSize"`

	// Maximum writes the store accepts in one atomic batch
	StoreBatchLimit int `json:"storeBatchLimit" yaml:"storeBatchLimit"`

	// Maximum batches committing at once (0 = unlimited)
	CommitConcurrency int `json:"commitConcurrency" yaml:"commitConcurrency"`

	// How long a run lease is held while a run is in progress
	LeaseTTL time.Duration `json:"leaseTTL" yaml:"leaseTTL"`

	// Identifies this worker as a lease holder (defaults to hostname)
	WorkerID string `json:"workerId" yaml:"workerId"`
}

// Location loads the configured business time zone.
func (c *ScheduleConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid schedule time zone %q", c.TimeZone)
	}

	return loc, nil
}

// PayrollConfig defines pay periods and payroll processing
type PayrollConfig struct {
	// First day (a Sunday, YYYY-MM-DD) of pay period zero
	AnchorDate string `json:"anchorDate" yaml:"anchorDate"`

	// Maximum completed services processed per payroll run
	BatchLimit int `json:"batchLimit" yaml:"batchLimit"`
}

// Anchor parses the configured anchor date.
func (c *PayrollConfig) Anchor() (time.Time, error) {
	anchor, err := time.Parse(time.DateOnly, c.AnchorDate)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid payroll anchor date %q", c.AnchorDate)
	}

	return anchor, nil
}

// PubSubConfig defines Pub/Sub configuration for trigger events
type PubSubConfig struct {
	// Provider type: "local" for local HTTP or "google" for Google Pub/Sub
	Provider string `json:"provider" yaml:"provider"`

	// Google Cloud project ID (for google provider)
	ProjectID string `json:"projectId" yaml:"projectId"`

	// Pub/Sub topic ID (for google provider)
	TopicID string `json:"topicId" yaml:"topicId"`

	// Local HTTP endpoint for development (for local provider)
	LocalEndpoint string `json:"localEndpoint" yaml:"localEndpoint"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: SCHEDULE_MAXBATCHSIZE -> schedule.maxBatchSize (not schedule.maxbatchsize)
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.HTTP.MaxRequestBodySize) == "" {
		cfg.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}

	if cfg.Store == nil {
		cfg.Store = &StoreConfig{}
	}

	if cfg.Schedule == nil {
		cfg.Schedule = &ScheduleConfig{}
	}
	if cfg.Schedule.TimeZone == "" {
		cfg.Schedule.TimeZone = defaultTimeZone
	}
	if cfg.Schedule.MaxBatchSize == 0 {
		cfg.Schedule.MaxBatchSize = defaultMaxBatchSize
	}
	if cfg.Schedule.StoreBatchLimit == 0 {
		cfg.Schedule.StoreBatchLimit = defaultStoreBatchLimit
	}
	if cfg.Schedule.LeaseTTL == 0 {
		cfg.Schedule.LeaseTTL = defaultLeaseTTL
	}
	if cfg.Schedule.WorkerID == "" {
		cfg.Schedule.WorkerID = defaultWorkerID()
	}

	if cfg.Payroll == nil {
		cfg.Payroll = &PayrollConfig{}
	}
	if cfg.Payroll.AnchorDate == "" {
		cfg.Payroll.AnchorDate = defaultPayPeriodAnchor
	}
	if cfg.Payroll.BatchLimit == 0 {
		cfg.Payroll.BatchLimit = defaultPayrollBatchLimit
	}
}

func (cfg *Config) validate() error {
	schedule := cfg.Schedule
	if schedule.MaxBatchSize < 2 || schedule.MaxBatchSize >= schedule.StoreBatchLimit {
		return errors.Errorf("schedule.maxBatchSize must be at least 2 and below %d, got %d", schedule.StoreBatchLimit, schedule.MaxBatchSize)
	}
	if schedule.CommitConcurrency < 0 {
		return errors.Errorf("schedule.commitConcurrency must not be negative, got %d", schedule.CommitConcurrency)
	}
	if _, err := schedule.Location(); err != nil {
		return err
	}
	if _, err := cfg.Payroll.Anchor(); err != nil {
		return err
	}
	if cfg.Payroll.BatchLimit < 1 {
		return errors.Errorf("payroll.batchLimit must be positive, got %d", cfg.Payroll.BatchLimit)
	}

	return nil
}

func defaultWorkerID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}

	return host + "-" + uuid.New().String()[:8]
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

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
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
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
