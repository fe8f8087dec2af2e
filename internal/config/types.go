package config

const (
	DefaultLocale                = "en"
	DefaultLogLevel              = "info"
	DefaultLogFile               = "accomplish.log"
	DefaultStoreFile             = "accomplish.db"
	DefaultRefreshIntervalMillis = 250

	MinRefreshIntervalMillis = 50
	MaxRefreshIntervalMillis = 5000

	EnvPrefix     = "ACCOMPLISH"
	EnvConfigPath = "ACCOMPLISH_CONFIG"
)

// Config is the resolved application configuration.
type Config struct {
	E2E        bool              `mapstructure:"e2e" yaml:"e2e,omitempty"`
	Locale     string            `mapstructure:"locale" yaml:"locale,omitempty"`
	Store      StoreConfig       `mapstructure:"store" yaml:"store,omitempty"`
	Log        LogConfig         `mapstructure:"log" yaml:"log,omitempty"`
	Voice      VoiceConfig       `mapstructure:"voice" yaml:"voice,omitempty"`
	TUI        TUIConfig         `mapstructure:"tui" yaml:"tui,omitempty"`
	Skills     []SkillConfig     `mapstructure:"skills" yaml:"skills,omitempty"`
	Connectors []ConnectorConfig `mapstructure:"connectors" yaml:"connectors,omitempty"`
	Providers  ProvidersConfig   `mapstructure:"providers" yaml:"providers,omitempty"`
}

type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path,omitempty"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level,omitempty"`
	File  string `mapstructure:"file" yaml:"file,omitempty"`
}

type VoiceConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

type TUIConfig struct {
	RefreshIntervalMillis int `mapstructure:"refreshIntervalMillis" yaml:"refreshIntervalMillis,omitempty"`
}

// SkillConfig is a slash command that can be prepended to a prompt.
type SkillConfig struct {
	Command     string `mapstructure:"command" yaml:"command"`
	Description string `mapstructure:"description" yaml:"description,omitempty"`
}

type ConnectorConfig struct {
	Name string `mapstructure:"name" yaml:"name"`
	URL  string `mapstructure:"url" yaml:"url,omitempty"`
}

type ProvidersConfig struct {
	Active    string                    `mapstructure:"active" yaml:"active,omitempty"`
	Connected map[string]ProviderConfig `mapstructure:"connected" yaml:"connected,omitempty"`
}

type ProviderConfig struct {
	APIKey  string `mapstructure:"apiKey" yaml:"apiKey,omitempty"`
	Model   string `mapstructure:"model" yaml:"model,omitempty"`
	BaseURL string `mapstructure:"baseURL" yaml:"baseURL,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Locale: DefaultLocale,
		Log: LogConfig{
			Level: DefaultLogLevel,
			File:  DefaultLogFile,
		},
		TUI: TUIConfig{
			RefreshIntervalMillis: DefaultRefreshIntervalMillis,
		},
		Providers: ProvidersConfig{
			Connected: map[string]ProviderConfig{},
		},
	}
}
