package settings

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/skhdtools/skhdctl/pkg/errors"
	"github.com/skhdtools/skhdctl/pkg/paths"
)

//go:embed embedded/defaults.toml
var defaultSettings []byte

// envPrefix namespaces the environment layer
const envPrefix = "SKHDCTL_"

type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, fmt.Errorf("not implemented")
}

// Load resolves the settings layers in order: embedded defaults, the
// user's config.toml, SKHDCTL_* environment variables, then overrides.
// A nil or empty overrides map skips the final layer.
func Load(overrides map[string]interface{}) (*Settings, error) {
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultSettings}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrSettingsLoad, "failed to load embedded defaults")
	}

	if p, err := paths.New(); err == nil {
		settingsFile := p.SettingsFile()
		if _, statErr := os.Stat(settingsFile); statErr == nil {
			if err := k.Load(file.Provider(settingsFile), toml.Parser()); err != nil {
				return nil, errors.Wrapf(err, errors.ErrSettingsLoad,
					"failed to load settings from %s", settingsFile)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKeyToPath), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrSettingsLoad, "failed to load environment settings")
	}

	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrSettingsLoad, "failed to load overrides")
		}
	}

	var s Settings
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &s,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &s, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrSettingsLoad, "failed to unmarshal settings")
	}

	postProcess(&s)
	return &s, nil
}

// envKeyToPath maps SKHDCTL_RELOAD_VERIFY_ATTEMPTS to
// reload.verify_attempts. Section names never contain underscores, so
// only the first underscore is a separator.
func envKeyToPath(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.Replace(key, "_", ".", 1)
}

// postProcess floors nonsensical values back to the defaults so a bad
// user file degrades instead of breaking the engine.
func postProcess(s *Settings) {
	if s.Backup.Retention < 1 {
		s.Backup.Retention = 10
	}
	if s.Daemon.Label == "" {
		s.Daemon.Label = paths.DefaultDaemonLabel
	}
	if s.Reload.VerifyAttempts < 1 {
		s.Reload.VerifyAttempts = 5
	}
	if s.Reload.VerifyDelay <= 0 {
		s.Reload.VerifyDelay = 200 * time.Millisecond
	}
	if s.Watch.Debounce <= 0 {
		s.Watch.Debounce = 300 * time.Millisecond
	}
}
