package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/gonewx/slaglegion/pkg/companion"
)

func TestLoadCompanionAnimConfig(t *testing.T) {
	cfg, err := LoadCompanionAnimConfig(CompanionAnimConfigPath)
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	t.Run("活动位置", func(t *testing.T) {
		locs := cfg.ActiveLocations()
		if len(locs) != 2 || locs[0] != companion.LocationSidePanel || locs[1] != "control_room" {
			t.Errorf("期望 [side_panel control_room]，实际为 %v", locs)
		}
	})

	t.Run("每个情绪都有条目", func(t *testing.T) {
		for _, e := range companion.AllEmotions() {
			if _, ok := cfg.Emotions[string(e)]; !ok {
				t.Errorf("缺少情绪 %s", e)
			}
		}
	})

	t.Run("默认值", func(t *testing.T) {
		spec, ok := cfg.Animation("control_seated")
		if !ok {
			t.Fatal("control_seated 不存在")
		}
		if spec.FPS != DefaultAnimationFPS || spec.Pattern != DefaultAnimationGlob {
			t.Errorf("默认值未生效: fps=%v pattern=%q", spec.FPS, spec.Pattern)
		}
		if spec.UsableAt(companion.LocationSidePanel) {
			t.Error("控制室专属动画不应在侧边栏可用")
		}
	})

	t.Run("控制室显式 null", func(t *testing.T) {
		key, explicitNull, present := cfg.LocationEntry(companion.EmotionHappy, "control_room")
		if !present || !explicitNull || key != "" {
			t.Errorf("期望显式 null，实际 key=%q null=%v present=%v", key, explicitNull, present)
		}
		if _, _, present := cfg.LocationEntry(companion.EmotionHappy, companion.LocationSidePanel); present {
			t.Error("侧边栏不应有位置条目")
		}
	})

	t.Run("姿势覆盖", func(t *testing.T) {
		if key, ok := cfg.PoseOverride("control_room", companion.PoseSeated); !ok || key != "control_seated" {
			t.Errorf("seated 覆盖错误: %q %v", key, ok)
		}
		if _, ok := cfg.PoseOverride("control_room", companion.PoseStanding); ok {
			t.Error("standing 不应有覆盖")
		}
		if key, ok := cfg.PoseDefault("control_room", companion.PoseStanding); !ok || key != "control_standing" {
			t.Errorf("standing 默认动画错误: %q %v", key, ok)
		}
	})
}

func TestFallbacksForUnknown(t *testing.T) {
	cfg, err := ParseCompanionAnimConfig([]byte(`
locations: [side_panel]
animations:
  n: { dir: assets/n }
emotions:
  neutral: { primary: n, fallbacks: [calm] }
`))
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	got := cfg.Fallbacks(companion.EmotionUnknown)
	if len(got) != 2 || got[0] != companion.EmotionNeutral || got[1] != companion.EmotionCalm {
		t.Errorf("unknown 无条目时应先尝试 neutral 再沿用其备选链，实际 %v", got)
	}
	if fb := cfg.Fallbacks(companion.EmotionSad); len(fb) != 0 {
		t.Errorf("无条目的情绪不应有备选，实际 %v", fb)
	}
}

func TestCompanionAnimConfigValidation(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		emotion  string
		location string
		reason   string
	}{
		{
			name: "缺少 neutral",
			yaml: `
locations: [side_panel]
animations: { a: { dir: x } }
emotions: { happy: { primary: a } }
`,
			emotion: "neutral",
			reason:  "neutral entry is required",
		},
		{
			name: "未知情绪",
			yaml: `
locations: [side_panel]
animations: { a: { dir: x } }
emotions:
  neutral: { primary: a }
  grumpy: { primary: a }
`,
			emotion: "grumpy",
			reason:  "not a known emotion",
		},
		{
			name: "引用未定义动画",
			yaml: `
locations: [side_panel]
animations: { a: { dir: x } }
emotions:
  neutral: { primary: a }
  sad: { primary: missing }
`,
			emotion: "sad",
			reason:  `primary animation "missing" is not defined`,
		},
		{
			name: "非法播放模式",
			yaml: `
locations: [side_panel]
animations: { a: { dir: x, loop: bounce } }
emotions: { neutral: { primary: a } }
`,
			reason: `invalid loop mode "bounce"`,
		},
		{
			name: "位置专属动画被用在其他位置",
			yaml: `
locations: [side_panel, control_room]
animations:
  a: { dir: x }
  cr: { dir: y, location: control_room }
emotions:
  neutral:
    primary: a
    locations: { side_panel: cr }
`,
			emotion:  "neutral",
			location: "side_panel",
			reason:   `belongs to location "control_room"`,
		},
		{
			name: "控制室无法解析 neutral",
			yaml: `
locations: [side_panel, control_room]
animations:
  a: { dir: x, location: side_panel }
emotions:
  neutral: { primary: a }
`,
			emotion: "neutral",
			reason:  "location-specific",
		},
		{
			name: "未知姿势",
			yaml: `
locations: [side_panel]
animations: { a: { dir: x } }
poses:
  side_panel:
    overrides: { lying: a }
emotions: { neutral: { primary: a } }
`,
			location: "side_panel",
			reason:   `unknown pose "lying"`,
		},
		{
			name: "拼错的字段名",
			yaml: `
locations: [side_panel]
animations: { a: { dir: x } }
emotions:
  neutral: { primary: a }
  happy:
    primery: a
    fallbaks: [neutral]
`,
			emotion: "happy",
			reason:  "field primery not found",
		},
		{
			name: "空情绪条目",
			yaml: `
locations: [side_panel]
animations: { a: { dir: x } }
emotions:
  neutral: { primary: a }
  sad: {}
`,
			emotion: "sad",
			reason:  "no primary, fallbacks or locations",
		},
		{
			name: "动画字段拼错",
			yaml: `
locations: [side_panel]
animations: { a: { dir: x, fsp: 12 } }
emotions: { neutral: { primary: a } }
`,
			reason: "field fsp not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCompanionAnimConfig([]byte(tt.yaml))
			if err == nil {
				t.Fatal("期望返回错误，但没有错误")
			}

			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("期望 *ConfigError，实际 %T: %v", err, err)
			}
			if !strings.Contains(err.Error(), tt.reason) {
				t.Errorf("错误信息应包含 %q，实际 %q", tt.reason, err.Error())
			}
			if tt.emotion != "" && !strings.Contains(err.Error(), "emotion="+tt.emotion) {
				t.Errorf("错误信息应标明情绪 %s: %v", tt.emotion, err)
			}
			if tt.location != "" && !strings.Contains(err.Error(), "location="+tt.location) {
				t.Errorf("错误信息应标明位置 %s: %v", tt.location, err)
			}
		})
	}
}
