// Package config gathers the bridge's settings from flags and CHESSBRIDGE_*
// environment variables. Flags win over the environment.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	envPrefix = "CHESSBRIDGE_"

	PortAuto  = "auto"
	PortStdio = "-"

	DefaultBaud        = 115200
	DefaultSettle      = 2500 * time.Millisecond
	DefaultEngine      = "stockfish"
	DefaultSkillLevel  = 20
	DefaultThreads     = 1
	DefaultEvalBudget  = 200 * time.Millisecond
	DefaultReplyBudget = time.Second
	DefaultLogPath     = "./log"
	DefaultTheme       = "basic"
)

type Config struct {
	Port        string        `validate:"required"`
	Baud        int           `validate:"oneof=9600 19200 38400 57600 115200 230400"`
	Settle      time.Duration `validate:"gte=0,lte=30s"`
	Engine      string        `validate:"required"`
	EngineDebug bool
	SkillLevel  int           `validate:"gte=0,lte=20"`
	Threads     int           `validate:"gte=1,lte=64"`
	EvalBudget  time.Duration `validate:"gte=100ms,lte=10s"`
	ReplyBudget time.Duration `validate:"gte=100ms,lte=60s"`
	StartFEN    string
	LogPath     string `validate:"required"`
	Theme       string `validate:"oneof=basic green mono"`
	Headless    bool
	Console     bool
	HistoryFile string
}

var validate = validator.New()

// Load parses args (without the program name). The environment supplies the
// defaults that flags then override.
func Load(args []string) (*Config, error) {
	env := &envReader{}
	cfg := &Config{
		Port:        env.String("PORT", PortAuto),
		Baud:        env.Int("BAUD", DefaultBaud),
		Settle:      env.Duration("SETTLE", DefaultSettle),
		Engine:      env.String("ENGINE", DefaultEngine),
		EngineDebug: env.Bool("ENGINE_DEBUG", false),
		SkillLevel:  env.Int("SKILL_LEVEL", DefaultSkillLevel),
		Threads:     env.Int("THREADS", DefaultThreads),
		EvalBudget:  env.Duration("EVAL_BUDGET", DefaultEvalBudget),
		ReplyBudget: env.Duration("REPLY_BUDGET", DefaultReplyBudget),
		StartFEN:    env.String("START_FEN", ""),
		LogPath:     env.String("LOG", DefaultLogPath),
		Theme:       env.String("THEME", DefaultTheme),
		Headless:    env.Bool("HEADLESS", false),
		Console:     env.Bool("CONSOLE", false),
		HistoryFile: env.String("HISTORY", ""),
	}
	if len(env.problems) > 0 {
		return nil, fmt.Errorf("config: %s", strings.Join(env.problems, "; "))
	}

	fs := flag.NewFlagSet("chessbridge", flag.ContinueOnError)
	fs.StringVar(&cfg.Port, "port", cfg.Port, `serial device, "auto" to search, or "-" for stdin/stdout`)
	fs.IntVar(&cfg.Baud, "baud", cfg.Baud, "serial baud rate")
	fs.DurationVar(&cfg.Settle, "settle", cfg.Settle, "wait after opening the port while the board resets")
	fs.StringVar(&cfg.Engine, "engine", cfg.Engine, "path to a UCI engine")
	fs.BoolVar(&cfg.EngineDebug, "engine-debug", cfg.EngineDebug, "log the UCI conversation")
	fs.IntVar(&cfg.SkillLevel, "skill", cfg.SkillLevel, "engine skill level, 0-20")
	fs.IntVar(&cfg.Threads, "threads", cfg.Threads, "engine search threads")
	fs.DurationVar(&cfg.EvalBudget, "eval-time", cfg.EvalBudget, "time spent evaluating each position")
	fs.DurationVar(&cfg.ReplyBudget, "move-time", cfg.ReplyBudget, "time the engine gets to choose a reply")
	fs.StringVar(&cfg.StartFEN, "fen", cfg.StartFEN, "start every game from this position")
	fs.StringVar(&cfg.LogPath, "log", cfg.LogPath, "path to log file")
	fs.StringVar(&cfg.Theme, "theme", cfg.Theme, "board theme: basic, green or mono")
	fs.BoolVar(&cfg.Headless, "headless", cfg.Headless, "print a running commentary instead of drawing the board")
	fs.BoolVar(&cfg.Console, "console", cfg.Console, "type board commands at a prompt instead of using a serial port")
	fs.StringVar(&cfg.HistoryFile, "history", cfg.HistoryFile, "console history file")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("config: unexpected arguments %v", fs.Args())
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field and reports all problems in one error.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}

	var details strings.Builder
	for _, e := range errs {
		if details.Len() > 0 {
			details.WriteString("; ")
		}
		switch e.Tag() {
		case "required":
			fmt.Fprintf(&details, "%s is required", e.Field())
		case "oneof":
			fmt.Fprintf(&details, "%s must be one of [%s]", e.Field(), e.Param())
		case "gte", "min":
			fmt.Fprintf(&details, "%s must be at least %s", e.Field(), e.Param())
		case "lte", "max":
			fmt.Fprintf(&details, "%s must be at most %s", e.Field(), e.Param())
		default:
			fmt.Fprintf(&details, "%s failed %s validation", e.Field(), e.Tag())
		}
		if e.Kind() != reflect.String {
			fmt.Fprintf(&details, " (got %v)", e.Value())
		}
	}
	return fmt.Errorf("config: %s", details.String())
}

// envReader reads CHESSBRIDGE_* variables and remembers the ones it could
// not parse.
type envReader struct {
	problems []string
}

func (r *envReader) lookup(key string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(envPrefix + key))
	return raw, raw != ""
}

func (r *envReader) String(key, fallback string) string {
	if raw, ok := r.lookup(key); ok {
		return raw
	}
	return fallback
}

func (r *envReader) Int(key string, fallback int) int {
	raw, ok := r.lookup(key)
	if !ok {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		r.problems = append(r.problems, fmt.Sprintf("%s%s must be an integer, got %q", envPrefix, key, raw))
		return fallback
	}
	return v
}

func (r *envReader) Duration(key string, fallback time.Duration) time.Duration {
	raw, ok := r.lookup(key)
	if !ok {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		r.problems = append(r.problems, fmt.Sprintf("%s%s must be a duration, got %q", envPrefix, key, raw))
		return fallback
	}
	return v
}

func (r *envReader) Bool(key string, fallback bool) bool {
	raw, ok := r.lookup(key)
	if !ok {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		r.problems = append(r.problems, fmt.Sprintf("%s%s must be a boolean, got %q", envPrefix, key, raw))
		return fallback
	}
	return v
}
