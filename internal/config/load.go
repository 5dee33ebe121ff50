package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rxtech-lab/argo-trading-env/pkg/errors"
	"github.com/rxtech-lab/argo-trading-env/pkg/marketdata"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultEnvFile holds the credentials and is read before the configuration file.
	DefaultEnvFile = "Nycklar.env"
	// ModeEnv selects the configuration file: config.json for live, config_<mode>.json otherwise.
	ModeEnv     = "CONFIG_MODE"
	DefaultMode = "live"

	EnvBinanceAPIKey    = "BINANCE_API_KEY"
	EnvBinanceSecretKey = "BINANCE_SECRET_KEY"
	EnvPolygonAPIKey    = "POLYGON_API_KEY"
)

// Format is the encoding of a configuration file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Section lists the keys a configuration section must contain.
type Section struct {
	Name string
	Keys []string
}

// RequiredSections are checked for presence, not value: a key set to zero is present.
var RequiredSections = []Section{
	{Name: "binance", Keys: []string{"api_key", "api_secret"}},
	{Name: "training", Keys: []string{"learning_rate", "gamma", "gae_lambda", "ent_coef", "total_timesteps", "checkpoint_interval"}},
	{Name: "environment", Keys: []string{"min_volume", "fee", "timeframe", "data_limit", "risk_limit", "growth_limit"}},
	{Name: "market", Keys: []string{"min_volume"}},
}

// RequiredCredentials must be non-empty in the environment or the dotenv file.
var RequiredCredentials = []string{EnvBinanceAPIKey, EnvBinanceSecretKey}

// Loader resolves, reads and validates the configuration of a working directory.
type Loader struct {
	// Dir holds the configuration files.
	Dir string
	// EnvFile is read before anything else. Relative paths are resolved against Dir.
	EnvFile string
	// LookupEnv reads the process environment. Defaults to os.LookupEnv.
	LookupEnv func(key string) (string, bool)
}

// NewLoader creates a loader reading dir and its Nycklar.env.
func NewLoader(dir string) *Loader {
	return &Loader{
		Dir:       dir,
		EnvFile:   DefaultEnvFile,
		LookupEnv: os.LookupEnv,
	}
}

// Load reads the configuration of the current directory.
func Load() (*Config, error) {
	return NewLoader(".").Load()
}

// FileName returns the configuration file name of a mode.
func FileName(mode string) string {
	if mode == "" || mode == DefaultMode {
		return "config.json"
	}

	return "config_" + mode + ".json"
}

// Load resolves the file for the current mode, parses it and validates it together
// with the credentials. Every problem is reported in one *errors.ConfigError.
func (l *Loader) Load() (*Config, error) {
	env, err := l.environment()
	if err != nil {
		return nil, err
	}

	path := l.Path(env[ModeEnv])

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrapf(errors.ErrCodeConfigFileUnreadable, err, "failed to read %s", path)
	}

	// a missing file is an empty document, so every required key is reported
	cfg, err := Parse(data, FormatOf(path), path)
	if err != nil && !errors.IsConfigError(err) {
		return nil, err
	}

	missing := cfg.setCredentials(env)

	cfgErr, invalid := asConfigError(err)

	switch {
	case invalid && len(missing) > 0:
		cfgErr.Fields = append(cfgErr.Fields, missing...)

		return nil, cfgErr
	case invalid:
		return nil, cfgErr
	case len(missing) > 0:
		return nil, errors.NewConfigError(path, missing)
	}

	return cfg, nil
}

// Path returns the file for mode inside Dir. A YAML variant is used when it exists
// and the JSON file does not.
func (l *Loader) Path(mode string) string {
	path := filepath.Join(l.Dir, FileName(mode))
	if _, err := os.Stat(path); err == nil {
		return path
	}

	base := strings.TrimSuffix(path, ".json")
	for _, ext := range []string{".yaml", ".yml"} {
		if _, err := os.Stat(base + ext); err == nil {
			return base + ext
		}
	}

	return path
}

// environment merges the dotenv file under the process environment. Non-empty
// process variables win.
func (l *Loader) environment() (map[string]string, error) {
	env := map[string]string{}

	if l.EnvFile != "" {
		path := l.EnvFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(l.Dir, path)
		}

		values, err := godotenv.Read(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrCodeConfigFileUnreadable, err, "failed to read %s", path)
		}

		for k, v := range values {
			env[k] = v
		}
	}

	lookup := l.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	keys := append([]string{ModeEnv, EnvPolygonAPIKey}, RequiredCredentials...)
	for _, key := range keys {
		if v, ok := lookup(key); ok && v != "" {
			env[key] = v
		}
	}

	return env, nil
}

// FormatOf picks the format from the file extension; anything but .yaml/.yml is JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Parse decodes and validates a configuration document. Keys the document leaves
// out keep their Default value. source names the document in errors.
func Parse(data []byte, format Format, source string) (*Config, error) {
	document := map[string]any{}
	cfg := Default()

	if len(strings.TrimSpace(string(data))) > 0 {
		if err := decode(data, format, &document); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeConfigFileUnreadable, err, "failed to parse %s", source)
		}

		if err := decode(data, format, &cfg); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to decode %s", source)
		}
	}

	cfg.Source = source

	fields := missingKeys(document)
	for _, field := range validationErrors(&cfg) {
		if !covered(fields, field) {
			fields = append(fields, field)
		}
	}

	if len(fields) > 0 {
		return &cfg, errors.NewConfigError(source, fields)
	}

	return &cfg, nil
}

func decode(data []byte, format Format, out any) error {
	if format == FormatYAML {
		return yaml.Unmarshal(data, out)
	}

	return json.Unmarshal(data, out)
}

// missingKeys reports a missing section by name and a missing key as section.key.
func missingKeys(document map[string]any) []string {
	var missing []string

	for _, section := range RequiredSections {
		values, ok := document[section.Name].(map[string]any)
		if !ok || len(values) == 0 {
			missing = append(missing, section.Name)

			continue
		}

		for _, key := range section.Keys {
			if _, ok := values[key]; !ok {
				missing = append(missing, section.Name+"."+key)
			}
		}
	}

	return missing
}

// covered reports whether field or one of its parent sections is already listed.
func covered(fields []string, field string) bool {
	return slices.ContainsFunc(fields, func(f string) bool {
		return f == field || strings.HasPrefix(field, f+".") || strings.HasPrefix(field, f+"[")
	})
}

// Validate checks value ranges and enumerations. It does not check presence.
func (c *Config) Validate() error {
	fields := validationErrors(c)
	if len(fields) > 0 {
		return errors.NewConfigError(c.Source, fields)
	}

	return nil
}

func newValidator() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	// registration only fails for empty tags
	_ = validate.RegisterValidation("timespan", func(fl validator.FieldLevel) bool {
		return marketdata.Timespan(fl.Field().String()).Validate() == nil
	})

	return validate
}

// validationErrors returns the dotted path of every field failing its validate tag.
func validationErrors(c *Config) []string {
	err := newValidator().Struct(c)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return []string{err.Error()}
	}

	fields := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		namespace := fe.Namespace()
		if i := strings.Index(namespace, "."); i >= 0 {
			namespace = namespace[i+1:]
		}

		fields = append(fields, namespace)
	}

	return fields
}

// RequireCredentials copies the credentials of env into c and reports every missing
// required credential in one *errors.ConfigError.
func (c *Config) RequireCredentials(env map[string]string, source string) error {
	if missing := c.setCredentials(env); len(missing) > 0 {
		return errors.NewConfigError(source, missing)
	}

	return nil
}

func (c *Config) setCredentials(env map[string]string) []string {
	c.Credentials = Credentials{
		BinanceAPIKey:    env[EnvBinanceAPIKey],
		BinanceSecretKey: env[EnvBinanceSecretKey],
		PolygonAPIKey:    env[EnvPolygonAPIKey],
	}

	var missing []string

	for _, key := range RequiredCredentials {
		if env[key] == "" {
			missing = append(missing, "env."+key)
		}
	}

	return missing
}

func asConfigError(err error) (*errors.ConfigError, bool) {
	var cfgErr *errors.ConfigError
	if errors.As(err, &cfgErr) {
		return cfgErr, true
	}

	return nil, false
}
