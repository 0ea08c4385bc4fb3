package dworld

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/datawire/dworld/dcodec"
	"github.com/datawire/dworld/derror"
	"github.com/datawire/dworld/dlocale"
)

// Config selects the values that Live hands out.  Empty fields mean "whatever the environment
// says" (for Locale and TimeZone) or the default noted on the field.
type Config struct {
	// Locale is a locale identifier such as "en_US" or "de-DE"; see dlocale.ParseLocale.
	Locale string `yaml:"locale"`
	// TimeZone is an IANA time zone name such as "Europe/Berlin", or "UTC".
	TimeZone string `yaml:"timeZone"`
	// Calendar is "gregorian" (the default) or "iso8601".
	Calendar string `yaml:"calendar"`
	// DateLayout is a time.Format layout; the default is RFC 3339.
	DateLayout string `yaml:"dateLayout"`
	// FractionDigits caps the fraction digits of formatted numbers; zero means the locale's
	// default.
	FractionDigits int `yaml:"fractionDigits"`
	// Codec is one of the names that dcodec.ByName accepts; the default is "json".
	Codec string `yaml:"codec"`
	// JSONIndent, if set, makes the "json" and "jsonc" encoders pretty-print.
	JSONIndent string `yaml:"jsonIndent"`

	HTTP HTTPConfig `yaml:"http"`
}

// HTTPConfig is the "http" section of a Config.
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	DisableHTTP2 bool          `yaml:"disableHTTP2"`
}

const maxFractionDigits = 20

func (cfg Config) calendarID() dlocale.CalendarID {
	if cfg.Calendar == "" {
		return dlocale.Gregorian
	}
	return dlocale.CalendarID(cfg.Calendar)
}

func (cfg Config) codec() string {
	if cfg.Codec == "" {
		return dcodec.NameJSON
	}
	return cfg.Codec
}

// Validate reports every problem with cfg, not just the first.  The returned error, if any, is a
// derror.MultiError.
func (cfg Config) Validate() error {
	var errs derror.MultiError
	if _, err := dlocale.ParseLocale(cfg.Locale); err != nil {
		errs = append(errs, errors.Wrap(err, "locale"))
	}
	if _, err := dlocale.LoadTimeZone(cfg.TimeZone); err != nil {
		errs = append(errs, errors.Wrap(err, "timeZone"))
	}
	if _, err := dlocale.NewCalendar(cfg.calendarID(), nil, dlocale.POSIX); err != nil {
		errs = append(errs, errors.Wrap(err, "calendar"))
	}
	if cfg.FractionDigits < 0 || cfg.FractionDigits > maxFractionDigits {
		errs = append(errs, errors.Errorf("fractionDigits: %d is not between 0 and %d",
			cfg.FractionDigits, maxFractionDigits))
	}
	if _, _, err := dcodec.ByName(cfg.codec()); err != nil {
		errs = append(errs, errors.Wrap(err, "codec"))
	}
	if cfg.HTTP.Timeout < 0 {
		errs = append(errs, errors.Errorf("http.timeout: %v is negative", cfg.HTTP.Timeout))
	}
	return errs.ErrorOrNil()
}

// LoadConfig reads a YAML Config from path on fs, and validates it.  Unknown keys are an error.
func LoadConfig(fs afero.Fs, path string) (Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}
	var cfg Config
	if len(data) > 0 {
		if err := (dcodec.YAMLDecoder{KnownFields: true}).Decode(data, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "parse config %q", path)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrapf(err, "invalid config %q", path)
	}
	return cfg, nil
}
