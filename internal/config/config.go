package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// SnapshotConfig holds configuration for fetching pool snapshots.
type SnapshotConfig struct {
	RPCURL       string
	Vault        string
	Pool         string
	Buffer       bool
	Block        uint64
	HookType     string
	Hook         string
	Out          string
	MaxRetries   int
	RetryBackoff time.Duration
	LogLevel     string
}

// QuoteConfig holds configuration for quoting against a stored snapshot.
type QuoteConfig struct {
	Snapshot string
	TokenIn  string
	TokenOut string
	Amounts  []string
	ExactOut bool
	Out      string
	PGDSN    string
	LogLevel string
}

// Load merges config file, environment variables, and flags into SnapshotConfig.
func Load(cfgFile string, flags *pflag.FlagSet) (SnapshotConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"vault":         "0xbA1333333333a1BA1108E8412f11850A5C319bA9",
		"out":           "./data/snapshot.json",
		"max-retries":   5,
		"retry-backoff": 500 * time.Millisecond,
		"log-level":     "info",
	})
	if err != nil {
		return SnapshotConfig{}, err
	}

	cfg := SnapshotConfig{
		RPCURL:       v.GetString("rpc"),
		Vault:        v.GetString("vault"),
		Pool:         v.GetString("pool"),
		Buffer:       v.GetBool("buffer"),
		Block:        v.GetUint64("block"),
		HookType:     v.GetString("hook-type"),
		Hook:         v.GetString("hook"),
		Out:          v.GetString("out"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		LogLevel:     v.GetString("log-level"),
	}

	return cfg, nil
}

// LoadQuote merges config file, environment variables, and flags into QuoteConfig.
func LoadQuote(cfgFile string, flags *pflag.FlagSet) (QuoteConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"snapshot":  "./data/snapshot.json",
		"out":       "./data/quotes.jsonl",
		"log-level": "info",
	})
	if err != nil {
		return QuoteConfig{}, err
	}

	cfg := QuoteConfig{
		Snapshot: v.GetString("snapshot"),
		TokenIn:  v.GetString("token-in"),
		TokenOut: v.GetString("token-out"),
		Amounts:  getStringSlice(v, "amount"),
		ExactOut: v.GetBool("exact-out"),
		Out:      v.GetString("out"),
		PGDSN:    v.GetString("pg-dsn"),
		LogLevel: v.GetString("log-level"),
	}

	return cfg, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet, defaults map[string]interface{}) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("QUOTER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
