package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	defaultPath        = "."
	defaultLogoutGrace = 100 * time.Millisecond
	defaultAPITimeout  = 15 * time.Second
	defaultScheme      = "campus"
	defaultLanding     = "Landing"
	defaultHomeTab     = "Home"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	// API configures the identity backend client.
	API *APIConfig `json:"api" yaml:"api"`

	// Vault configures the durable secure credential storage.
	Vault *VaultConfig `json:"vault" yaml:"vault"`

	// Session configures session-transition behaviour.
	Session *SessionConfig `json:"session" yaml:"session"`

	// Links configures the inbound deep link / web URL surface.
	Links *LinksConfig `json:"links" yaml:"links"`

	// Navigation configures the reset targets produced by the core.
	Navigation *NavigationConfig `json:"navigation" yaml:"navigation"`

	// GoogleOAuth configures Google Sign-In credential inspection.
	GoogleOAuth *GoogleOAuthConfig `json:"googleOAuth" yaml:"googleOAuth"`

	// AppleOAuth configures Sign in with Apple credential inspection.
	AppleOAuth *AppleOAuthConfig `json:"appleOAuth" yaml:"appleOAuth"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// APIConfig defines the identity backend endpoint settings.
type APIConfig struct {
	BaseURL string        `json:"baseUrl" yaml:"baseUrl"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// VaultConfig defines where and how credentials are stored at rest.
type VaultConfig struct {
	// Path is the vault directory. Empty means ~/.campus/credentials.
	Path string `json:"path" yaml:"path"`
	// Secret seeds the symmetric key that encrypts values at rest.
	Secret string `json:"secret" yaml:"secret"`
}

// SessionConfig defines session-transition tunables.
type SessionConfig struct {
	// LogoutGrace bounds the window during which IsLoggingOut stays true
	// when no mounted guard confirms the forced navigation reset.
	LogoutGrace time.Duration `json:"logoutGrace" yaml:"logoutGrace"`
}

// LinksConfig defines the recognized inbound URL surface.
type LinksConfig struct {
	// Scheme is the custom URL scheme, without "://".
	Scheme string `json:"scheme" yaml:"scheme"`
	// WebHosts lists the https hosts whose paths are treated as app links.
	WebHosts []string `json:"webHosts" yaml:"webHosts"`
	// ListenPort is the loopback port the live link listener binds to.
	ListenPort int `json:"listenPort" yaml:"listenPort"`
	// InitialURL is the URL the process was cold started with, if any.
	InitialURL string `json:"initialUrl" yaml:"initialUrl"`
}

// NavigationConfig defines the destinations the core can reset to.
type NavigationConfig struct {
	// LandingScreen is the public landing container.
	LandingScreen string `json:"landingScreen" yaml:"landingScreen"`
	// HomeTab is the default tab of the main container after login.
	HomeTab string `json:"homeTab" yaml:"homeTab"`
	// TabScreens lists destinations hosted inside the main container's tab
	// bar; everything else is a stack destination.
	TabScreens []string `json:"tabScreens" yaml:"tabScreens"`
}

// GoogleOAuthConfig defines Google Sign-In settings.
type GoogleOAuthConfig struct {
	ClientID string `json:"clientId" yaml:"clientId"`
}

// AppleOAuthConfig defines Sign in with Apple settings.
type AppleOAuthConfig struct {
	// BundleID is the expected audience of Apple identity tokens.
	BundleID string `json:"bundleId" yaml:"bundleId"`
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
			// Example: LINKS_LISTENPORT -> links.listenPort (not links.listenport)
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

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Env.Log.Level) == "" {
		cfg.Env.Log.Level = "info"
	}

	if cfg.API == nil {
		cfg.API = &APIConfig{}
	}
	if cfg.API.Timeout <= 0 {
		cfg.API.Timeout = defaultAPITimeout
	}

	if cfg.Session == nil {
		cfg.Session = &SessionConfig{}
	}
	if cfg.Session.LogoutGrace <= 0 {
		cfg.Session.LogoutGrace = defaultLogoutGrace
	}

	if cfg.Links == nil {
		cfg.Links = &LinksConfig{}
	}
	if strings.TrimSpace(cfg.Links.Scheme) == "" {
		cfg.Links.Scheme = defaultScheme
	}

	if cfg.Navigation == nil {
		cfg.Navigation = &NavigationConfig{}
	}
	if strings.TrimSpace(cfg.Navigation.LandingScreen) == "" {
		cfg.Navigation.LandingScreen = defaultLanding
	}
	if strings.TrimSpace(cfg.Navigation.HomeTab) == "" {
		cfg.Navigation.HomeTab = defaultHomeTab
	}
	if len(cfg.Navigation.TabScreens) == 0 {
		cfg.Navigation.TabScreens = []string{"Library", "Profile", "Dashboard"}
	}
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
