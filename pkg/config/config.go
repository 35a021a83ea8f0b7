package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete engine configuration.
type Config struct {
	StoragePath string         `mapstructure:"storage_path"`
	Offline     bool           `mapstructure:"offline"`
	RestAPI     RestAPIConfig  `mapstructure:"rest_api"`
	Logging     LoggingConfig  `mapstructure:"logging"`
	Embedder    EmbedderConfig `mapstructure:"embedder"`
	Entities    EntitiesConfig `mapstructure:"entities"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
	Graph       GraphConfig    `mapstructure:"graph"`
	Tiers       TierConfig     `mapstructure:"tiers"`
	Retrieval   RetrievalConfig `mapstructure:"retrieval"`
	Importance  ImportanceConfig `mapstructure:"importance"`
	Vector      VectorConfig   `mapstructure:"vector"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
}

// RestAPIConfig holds HTTP server settings.
type RestAPIConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	CORS    bool   `mapstructure:"cors"`
	APIKey  string `mapstructure:"api_key"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// EmbedderConfig configures the embedding collaborator.
type EmbedderConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// EntitiesConfig configures the entity-extraction collaborator.
type EntitiesConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// MaintenanceConfig governs the background maintenance loop.
type MaintenanceConfig struct {
	IntervalSecs          int     `mapstructure:"interval_secs"`
	ActivationDecayPerTick float64 `mapstructure:"activation_decay_per_tick"`
	ReplayTopK            int     `mapstructure:"replay_top_k"`
	ConsolidateAfterDays  int     `mapstructure:"consolidate_after_days"`
	ConsolidateMaxActivationCount uint32 `mapstructure:"consolidate_max_activation_count"`
	ConsolidateMaxImportance      float32 `mapstructure:"consolidate_max_importance"`
}

// GraphConfig governs Hebbian strengthening, LTP, and decay.
type GraphConfig struct {
	HebbianEta               float32 `mapstructure:"hebbian_eta"`
	LTPThreshold             uint32  `mapstructure:"ltp_threshold"`
	LTPBonus                 float32 `mapstructure:"ltp_bonus"`
	MinStrength              float32 `mapstructure:"min_strength"`
	NormalHalfLifeHours      float64 `mapstructure:"normal_half_life_hours"`
	PotentiatedHalfLifeHours float64 `mapstructure:"potentiated_half_life_hours"`
	NodeActivationDecayPerDay float64 `mapstructure:"node_activation_decay_per_day"`
	MaxHops                  int     `mapstructure:"max_hops"`
	Damping                  float64 `mapstructure:"damping"`
}

// TierConfig governs working/session/long-term capacity and eviction.
type TierConfig struct {
	WorkingCapacity     int     `mapstructure:"working_capacity"`
	SessionByteBudget   int64   `mapstructure:"session_byte_budget"`
	EvictionWeightRecency    float64 `mapstructure:"eviction_weight_recency"`
	EvictionWeightImportance float64 `mapstructure:"eviction_weight_importance"`
	EvictionWeightActivation float64 `mapstructure:"eviction_weight_activation"`
	SkipToLongTermImportance float32 `mapstructure:"skip_to_long_term_importance"`
	SessionPromoteImportance float32 `mapstructure:"session_promote_importance"`
	SessionPromoteActivationCount uint32 `mapstructure:"session_promote_activation_count"`
}

// RetrievalConfig governs hybrid-score weighting.
type RetrievalConfig struct {
	WeightSimilarity float64 `mapstructure:"weight_similarity"`
	WeightActivation float64 `mapstructure:"weight_activation"`
	WeightImportance float64 `mapstructure:"weight_importance"`
	WeightRecency    float64 `mapstructure:"weight_recency"`
	WeightType       float64 `mapstructure:"weight_type"`
	RecencyHalfLifeDays float64 `mapstructure:"recency_half_life_days"`
	DefaultLimit     int     `mapstructure:"default_limit"`
}

// ImportanceConfig governs importance reinforcement on recall: the
// ceiling it cannot exceed and the largest increase one recall applies.
type ImportanceConfig struct {
	ReinforcementCeiling  float32 `mapstructure:"reinforcement_ceiling"`
	MaxReinforcementDelta float32 `mapstructure:"max_reinforcement_delta"`
}

// VectorConfig governs Vamana graph construction and search.
type VectorConfig struct {
	MaxDegree       int     `mapstructure:"max_degree"`       // R
	BuildBeamWidth  int     `mapstructure:"build_beam_width"`  // L
	SearchBeamWidth int     `mapstructure:"search_beam_width"` // L_q
	Alpha           float64 `mapstructure:"alpha"`
}

// RateLimitConfig governs the HTTP surface's token-bucket limiter.
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	BurstSize         int     `mapstructure:"burst_size"`
}

// DefaultConfig returns configuration with the engine's default values.
func DefaultConfig() *Config {
	return &Config{
		StoragePath: "./shodh_memory_data",
		Offline:     false,
		RestAPI: RestAPIConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    3030,
			CORS:    true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
		Embedder: EmbedderConfig{
			BaseURL: "",
			Timeout: 10 * time.Second,
		},
		Entities: EntitiesConfig{
			BaseURL: "",
			Timeout: 10 * time.Second,
		},
		Maintenance: MaintenanceConfig{
			IntervalSecs:                  300,
			ActivationDecayPerTick:        0.95,
			ReplayTopK:                    20,
			ConsolidateAfterDays:          7,
			ConsolidateMaxActivationCount: 2,
			ConsolidateMaxImportance:      0.5,
		},
		Graph: GraphConfig{
			HebbianEta:                0.15,
			LTPThreshold:              5,
			LTPBonus:                  0.15,
			MinStrength:               0.05,
			NormalHalfLifeHours:       168,
			PotentiatedHalfLifeHours:  840,
			NodeActivationDecayPerDay: 0.02,
			MaxHops:                   3,
			Damping:                   0.5,
		},
		Tiers: TierConfig{
			WorkingCapacity:               100,
			SessionByteBudget:             500 * 1024 * 1024,
			EvictionWeightRecency:         0.4,
			EvictionWeightImportance:      0.4,
			EvictionWeightActivation:      0.2,
			SkipToLongTermImportance:      0.9,
			SessionPromoteImportance:      0.5,
			SessionPromoteActivationCount: 3,
		},
		Retrieval: RetrievalConfig{
			WeightSimilarity:    0.50,
			WeightActivation:    0.20,
			WeightImportance:    0.15,
			WeightRecency:       0.10,
			WeightType:          0.05,
			RecencyHalfLifeDays: 14,
			DefaultLimit:        10,
		},
		Importance: ImportanceConfig{
			ReinforcementCeiling:  1.0,
			MaxReinforcementDelta: 0.05,
		},
		Vector: VectorConfig{
			MaxDegree:       64,
			BuildBeamWidth:  100,
			SearchBeamWidth: 100,
			Alpha:           1.2,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 20,
			BurstSize:         40,
		},
	}
}

// Load builds a Config from defaults, an optional YAML file, and
// environment variables, in that order of increasing precedence.
// Recognized environment variables: STORAGE_PATH, PORT,
// MAINTENANCE_INTERVAL_SECS, ACTIVATION_DECAY, OFFLINE.
func Load(configFile string) (*Config, error) {
	def := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, def)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
			}
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	_ = v.BindEnv("storage_path", "STORAGE_PATH")
	_ = v.BindEnv("rest_api.port", "PORT")
	_ = v.BindEnv("maintenance.interval_secs", "MAINTENANCE_INTERVAL_SECS")
	_ = v.BindEnv("maintenance.activation_decay_per_tick", "ACTIVATION_DECAY")
	_ = v.BindEnv("offline", "OFFLINE")

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, def *Config) {
	v.SetDefault("storage_path", def.StoragePath)
	v.SetDefault("offline", def.Offline)
	v.SetDefault("rest_api", def.RestAPI)
	v.SetDefault("logging", def.Logging)
	v.SetDefault("embedder", def.Embedder)
	v.SetDefault("entities", def.Entities)
	v.SetDefault("maintenance", def.Maintenance)
	v.SetDefault("graph", def.Graph)
	v.SetDefault("tiers", def.Tiers)
	v.SetDefault("retrieval", def.Retrieval)
	v.SetDefault("importance", def.Importance)
	v.SetDefault("vector", def.Vector)
	v.SetDefault("rate_limit", def.RateLimit)
}
