// worldinfo prints what a live World produces on this machine: the current time, locale, time
// zone, calendar, and formatters, followed by a summary encoded with the configured codec.
//
// Usage:
//
//	worldinfo [--config FILE] [--locale LOCALE] [--timezone ZONE] [--codec NAME] [--number N]
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"

	"github.com/datawire/dworld/dcodec"
	"github.com/datawire/dworld/dlog"
	"github.com/datawire/dworld/dworld"
)

// summary is what gets run through the World's Encoder.
type summary struct {
	Now          string `json:"now" yaml:"now" cbor:"now"`
	Locale       string `json:"locale" yaml:"locale" cbor:"locale"`
	TimeZone     string `json:"timeZone" yaml:"timeZone" cbor:"timeZone"`
	Calendar     string `json:"calendar" yaml:"calendar" cbor:"calendar"`
	FirstWeekday string `json:"firstWeekday" yaml:"firstWeekday" cbor:"firstWeekday"`
	StartOfWeek  string `json:"startOfWeek" yaml:"startOfWeek" cbor:"startOfWeek"`
	Number       string `json:"number" yaml:"number" cbor:"number"`
}

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	ctx := dlog.WithLogger(context.Background(), dlog.WrapLogrus(logger))

	if err := run(ctx, afero.NewOsFs(), os.Stdout, os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		dlog.Errorln(ctx, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, fs afero.Fs, stdout io.Writer, args []string) error {
	var (
		configFile string
		locale     string
		timeZone   string
		codec      string
		num        float64
		verbose    bool
	)
	flags := pflag.NewFlagSet("worldinfo", pflag.ContinueOnError)
	flags.StringVar(&configFile, "config", "", "YAML file to read the world configuration from")
	flags.StringVar(&locale, "locale", "", "override the locale, such as de_DE")
	flags.StringVar(&timeZone, "timezone", "", "override the time zone, such as Europe/Berlin")
	flags.StringVar(&codec, "codec", "", "override the codec: json, jsonc, cbor, or yaml")
	flags.Float64Var(&num, "number", 1234567.891, "number to format")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() > 0 {
		return errors.Errorf("unexpected argument: %q", flags.Arg(0))
	}
	if verbose {
		logger := logrus.New()
		logger.SetOutput(os.Stderr)
		logger.SetLevel(logrus.DebugLevel)
		ctx = dlog.WithLogger(ctx, dlog.WrapLogrus(logger))
	}

	var cfg dworld.Config
	if configFile != "" {
		var err error
		if cfg, err = dworld.LoadConfig(fs, configFile); err != nil {
			return err
		}
	}
	if flags.Changed("locale") {
		cfg.Locale = locale
	}
	if flags.Changed("timezone") {
		cfg.TimeZone = timeZone
	}
	if flags.Changed("codec") {
		cfg.Codec = codec
	}

	world, err := dworld.Live(ctx, cfg)
	if err != nil {
		return err
	}
	return report(world, stdout, num)
}

func report(world *dworld.World, stdout io.Writer, num float64) error {
	now := world.Now()
	cal := world.Calendar()
	date := world.DateFormatter()
	s := summary{
		Now:          date.Format(now),
		Locale:       world.Locale().ID(),
		TimeZone:     world.TimeZone().String(),
		Calendar:     string(cal.ID),
		FirstWeekday: cal.FirstWeekday.String(),
		StartOfWeek:  date.Format(cal.StartOfWeek(now)),
		Number:       world.NumberFormatter().Format(num),
	}

	fmt.Fprintf(stdout, "now:            %s\n", s.Now)
	fmt.Fprintf(stdout, "locale:         %s\n", s.Locale)
	fmt.Fprintf(stdout, "time zone:      %s\n", s.TimeZone)
	fmt.Fprintf(stdout, "calendar:       %s (weeks start on %s)\n", s.Calendar, s.FirstWeekday)
	fmt.Fprintf(stdout, "start of week:  %s\n", s.StartOfWeek)
	fmt.Fprintf(stdout, "number:         %s\n", s.Number)

	data, err := world.Encoder().Encode(s)
	if err != nil {
		return err
	}
	if _, binary := world.Encoder().(dcodec.CBOREncoder); binary {
		_, err = fmt.Fprintf(stdout, "%x\n", data)
		return err
	}
	_, err = fmt.Fprintf(stdout, "%s\n", data)
	return err
}
