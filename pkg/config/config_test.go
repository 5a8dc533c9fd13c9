package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %s", err)
	}
	if cfg.Port != PortAuto || cfg.Baud != DefaultBaud || cfg.Engine != DefaultEngine {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.EvalBudget != 200*time.Millisecond || cfg.ReplyBudget != time.Second {
		t.Errorf("budgets = %s / %s", cfg.EvalBudget, cfg.ReplyBudget)
	}
}

func TestEnvAndFlags(t *testing.T) {
	t.Setenv("CHESSBRIDGE_PORT", "/dev/ttyACM1")
	t.Setenv("CHESSBRIDGE_SKILL_LEVEL", "5")
	t.Setenv("CHESSBRIDGE_REPLY_BUDGET", "3s")

	cfg, err := Load([]string{"-skill", "7", "-headless"})
	if err != nil {
		t.Fatalf("Load failed: %s", err)
	}
	if cfg.Port != "/dev/ttyACM1" {
		t.Errorf("port = %q, want the environment's", cfg.Port)
	}
	if cfg.SkillLevel != 7 {
		t.Errorf("skill = %d, want the flag's", cfg.SkillLevel)
	}
	if cfg.ReplyBudget != 3*time.Second || !cfg.Headless {
		t.Errorf("reply budget %s, headless %v", cfg.ReplyBudget, cfg.Headless)
	}
}

func TestBadEnvironment(t *testing.T) {
	t.Setenv("CHESSBRIDGE_BAUD", "fast")
	t.Setenv("CHESSBRIDGE_EVAL_BUDGET", "soon")

	_, err := Load(nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	for _, want := range []string{"CHESSBRIDGE_BAUD", "CHESSBRIDGE_EVAL_BUDGET"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestValidation(t *testing.T) {
	for _, d := range []struct {
		args []string
		want string
	}{
		{[]string{"-baud", "1234"}, "Baud must be one of"},
		{[]string{"-skill", "21"}, "SkillLevel must be at most 20"},
		{[]string{"-threads", "0"}, "Threads must be at least 1"},
		{[]string{"-eval-time", "5ms"}, "EvalBudget must be at least 100ms"},
		{[]string{"-move-time", "2m"}, "ReplyBudget must be at most 60s"},
		{[]string{"-engine", ""}, "Engine is required"},
		{[]string{"-theme", "neon"}, "Theme must be one of"},
		{[]string{"stray"}, "unexpected arguments"},
	} {
		_, err := Load(d.args)
		if err == nil || !strings.Contains(err.Error(), d.want) {
			t.Errorf("Load(%v) error = %v, want %q", d.args, err, d.want)
		}
	}
}

func TestValidationCollectsAll(t *testing.T) {
	_, err := Load([]string{"-skill", "-1", "-threads", "100"})
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "SkillLevel") || !strings.Contains(err.Error(), "Threads") {
		t.Errorf("error %q should report both fields", err)
	}
}
