package config_test

import (
	"strings"
	"testing"

	"github.com/hanwoori/sorikiosk/internal/config"
	"github.com/hanwoori/sorikiosk/internal/menu"
)

const validYAML = `
server:
  listen_addr: ":8080"
  log_level: info
catalog:
  path: configs/menu.yaml
  reload_seconds: 10
parser:
  window_runes: 10
  fuzzy:
    enabled: true
    phonetic_threshold: 0.7
    similar_threshold: 0.85
store:
  fallback_path: orders.jsonl
recommend:
  set_menus:
    - id: set-1
      title:
        ko: 든든한 한식 세트
        en: Hearty Korean Set
      item_ids: [kimchi-jjigae, rice]
      discount_percent: 15
`

func TestLoadFromReader_Valid(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader(validYAML))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("listen_addr = %q, want :8080", cfg.Server.ListenAddr)
	}
	if !cfg.Parser.Fuzzy.Enabled {
		t.Error("fuzzy.enabled = false, want true")
	}
	if len(cfg.Recommend.SetMenus) != 1 || cfg.Recommend.SetMenus[0].ID != "set-1" {
		t.Errorf("set menus = %+v, want one set-1", cfg.Recommend.SetMenus)
	}
}

func TestLoadFromReader_UnknownField(t *testing.T) {
	t.Parallel()

	const doc = `
server:
  listen_addr: ":8080"
  surprise: true
`
	if _, err := config.LoadFromReader(strings.NewReader(doc)); err == nil {
		t.Fatal("unknown fields should fail to decode")
	}
}

func TestValidate_CollectsAllFailures(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	cfg.Server.LogLevel = "loud"
	cfg.Server.Languages = []menu.Lang{"fr"}
	cfg.Parser.Fuzzy.PhoneticThreshold = 1.5
	cfg.Recommend.SetMenus = []config.SetMenuConfig{
		{ID: "", DiscountPercent: 120},
	}

	err := config.Validate(cfg)
	if err == nil {
		t.Fatal("Validate: err=nil, want joined failures")
	}
	for _, want := range []string{"log_level", "languages[0]", "phonetic_threshold", "id is required", "discount_percent", "item_ids"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %q, got:\n%v", want, err)
		}
	}
}

func TestValidate_DuplicateSetID(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	cfg.Recommend.SetMenus = []config.SetMenuConfig{
		{ID: "set-1", ItemIDs: []string{"rice"}},
		{ID: "set-1", ItemIDs: []string{"cola"}},
	}
	err := config.Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("Validate: err=%v, want duplicate set ID failure", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := config.Load("does/not/exist.yaml"); err == nil {
		t.Fatal("Load of missing file should fail")
	}
}
