package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/reelkit/reel/color"
	"github.com/reelkit/reel/constant"
	"github.com/reelkit/reel/key"
	"github.com/reelkit/reel/media"
	"github.com/reelkit/reel/style"
	"github.com/samber/lo"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Check rejects a value a field cannot hold.
type Check func(v any) error

// Field is a registered configuration key with its default and help text.
type Field struct {
	Key         string
	Value       any
	Description string
	checks      []Check
}

// Validate runs the field's checks against v.
func (f *Field) Validate(v any) error {
	for _, check := range f.checks {
		if err := check(v); err != nil {
			return fmt.Errorf("%s: %w", f.Key, err)
		}
	}
	return nil
}

// Pretty renders the field for `reel config info`.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable bound to this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Reel + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Env         string `json:"env"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Env:         f.Env(),
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        typeName(f.Value),
	})
}

func typeName(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case bool:
		return "bool"
	case float64:
		return "float"
	case []string:
		return "[]string"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Default holds every registered field by key.
var Default = make(map[string]Field)

// EnvExposed lists keys bound to environment variables.
var EnvExposed []string

func between(low, high float64) Check {
	return func(v any) error {
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return err
		}
		if f < low || f > high {
			return fmt.Errorf("%v is outside [%v, %v]", f, low, high)
		}
		return nil
	}
}

func quality(v any) error {
	s := cast.ToString(v)
	if s == "" {
		return nil
	}
	_, err := media.ParseQuality(s)
	return err
}

func init() {
	register := func(k string, v any, desc string, checks ...Check) {
		if _, exists := Default[k]; exists {
			panic("duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc, checks: checks}
		EnvExposed = append(EnvExposed, k)
	}

	register(key.PlayerStartWhenPrepared, true, "Start playback as soon as the engine reports prepared")
	register(key.PlayerLooping, false, "Restart from the beginning when playback completes")
	register(key.PlayerVolume, 1.0, "Initial volume, from 0.0 to 1.0", between(0, 1))
	register(key.PlayerSpeed, 1.0, "Initial playback speed multiplier", between(0.25, 4))
	register(key.PlayerEngine, "mpv", "Decoding engine used for new sessions")
	register(key.MpvPath, "mpv", "Path or name of the mpv executable")
	register(key.MpvExtraFlags, []string{}, "Extra flags passed to mpv on launch.\nOnly --long-form flags are kept")
	register(key.SelectorMaxQuality, "1080p", "Highest quality selected for playback.\nExamples: 480p, 720p, 1080p, 4k", quality)
	register(key.SelectorPreloadMaxQuality, "480p", "Highest quality selected when prefetching", quality)
	register(key.SelectorPreferred, "", "Preferred quality label, matched fuzzily against track labels")
	register(key.ProgressEnabled, true, "Remember playback positions and resume from them")
	register(key.ProgressMinPosition, 5, "Positions below this many seconds are not recorded", between(0, 3600))
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"key":      style.Fg(color.Purple),
	"label":    style.Fg(color.Blue),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": typeName,
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			return lo.Ternary(value, style.Fg(color.Green), style.Fg(color.Red))(cast.ToString(value))
		case string:
			return style.Fg(color.Yellow)(fmt.Sprintf("%q", value))
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ key .Key }} {{ faint (typename .Value) }}
{{ faint .Description }}
{{ label "env" }}     {{ .Env }}
{{ label "value" }}   {{ hl (value .Key) }}
{{ label "default" }} {{ hl .Value }}`))
