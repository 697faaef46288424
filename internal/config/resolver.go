package config

import (
	"github.com/spf13/viper"

	"github.com/calder-f/statement-resolver/internal/resolver"
)

// ResolverConfig builds the pipeline configuration from viper, falling back
// to defaults for anything unset. All the heuristics' tuning knobs live
// here rather than in code.
func ResolverConfig() resolver.Config {
	cfg := resolver.DefaultConfig()

	if v := viper.GetInt("window.line_radius"); v > 0 {
		cfg.Window.LineRadius = v
	}
	if v := viper.GetInt("window.char_radius"); v > 0 {
		cfg.Window.CharRadius = v
	}
	if v := viper.GetInt("classifier.keyword_proximity"); v > 0 {
		cfg.Classifier.KeywordProximity = v
	}
	if v := viper.GetFloat64("classifier.plausible_min"); v > 0 {
		cfg.Classifier.PlausibleMin = v
	}
	if v := viper.GetFloat64("classifier.plausible_max"); v > 0 {
		cfg.Classifier.PlausibleMax = v
	}
	if v := viper.GetFloat64("fusion.zscore_threshold"); v > 0 {
		cfg.Fusion.ZScoreThreshold = v
	}
	if v := viper.GetFloat64("validator.pass_threshold"); v > 0 {
		cfg.Validator.PassThreshold = v
	}
	if v := viper.GetFloat64("validator.warn_threshold"); v > 0 {
		cfg.Validator.WarnThreshold = v
	}
	if v := viper.GetString("currency.default"); v != "" {
		cfg.DefaultCurrency = v
	}
	if v := viper.GetStringSlice("tokenizer.currencies"); len(v) > 0 {
		cfg.Tokenizer.Currencies = v
	}
	if v := viper.GetStringSlice("tokenizer.keywords"); len(v) > 0 {
		cfg.Tokenizer.Keywords = v
	}

	return cfg
}

// DatabasePath resolves the corrections database location from viper or
// the platform default.
func DatabasePath() string {
	if p := viper.GetString("database.path"); p != "" {
		return ExpandPath(p)
	}
	return DefaultDatabasePath()
}
