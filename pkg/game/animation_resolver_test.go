package game

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/gonewx/slaglegion/pkg/companion"
	"github.com/gonewx/slaglegion/pkg/components"
	"github.com/gonewx/slaglegion/pkg/config"
	"github.com/hajimehoshi/ebiten/v2"
)

// fakeFrameSource 为每个目录返回固定数量的帧，missing 中的目录加载失败
type fakeFrameSource struct {
	frames  int
	missing map[string]bool
	loads   map[string]int
}

func newFakeFrameSource(frames int, missing ...string) *fakeFrameSource {
	f := &fakeFrameSource{frames: frames, missing: map[string]bool{}, loads: map[string]int{}}
	for _, m := range missing {
		f.missing[m] = true
	}
	return f
}

func (f *fakeFrameSource) LoadFrames(dir, pattern string, scale float64) ([]*ebiten.Image, error) {
	f.loads[dir]++
	if f.missing[dir] {
		return nil, fmt.Errorf("no frames in %s", dir)
	}
	out := make([]*ebiten.Image, f.frames)
	for i := range out {
		out[i] = ebiten.NewImage(2, 2)
	}
	return out, nil
}

func mustParseConfig(t *testing.T, src string) *config.CompanionAnimConfig {
	t.Helper()
	cfg, err := config.ParseCompanionAnimConfig([]byte(src))
	if err != nil {
		t.Fatalf("解析配置失败: %v", err)
	}
	return cfg
}

const resolverTestConfig = `
locations: [side_panel, control_room]
animations:
  n:        { dir: n }
  happy:    { dir: happy, loop: once }
  friendly: { dir: friendly }
  calm:     { dir: calm }
  ranged:   { dir: ranged, start_frame: 2, end_frame: 5, hold_frame: 1, loop: hold_last_frame, fps: 20 }
  cr_stand: { dir: cr_stand, location: control_room }
  cr_sit:   { dir: cr_sit, location: control_room }
  cr_happy: { dir: cr_happy, location: control_room }
poses:
  control_room:
    overrides: { seated: cr_sit }
    defaults:  { standing: cr_stand, chair: cr_sit }
emotions:
  neutral:
    primary: n
    locations: { control_room: null }
  happy:
    primary: happy
    fallbacks: [friendly, calm]
    locations: { control_room: cr_happy }
  friendly: { primary: friendly }
  calm:     { primary: calm }
  sad:
    fallbacks: [calm]
    locations: { control_room: null }
  serious:  { primary: ranged }
`

func TestResolveEveryEmotionFromShippedConfig(t *testing.T) {
	initTestFS(t, nil)
	cfg, err := config.LoadCompanionAnimConfig(config.CompanionAnimConfigPath)
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	r := NewAnimationResolver(cfg, newFakeFrameSource(3))

	if err := r.Preflight(); err != nil {
		t.Fatalf("Preflight 失败: %v", err)
	}

	emotions := append(companion.AllEmotions(), companion.EmotionUnknown)
	for _, loc := range cfg.ActiveLocations() {
		for _, e := range emotions {
			for _, p := range companion.AllPoses() {
				anim := r.Resolve(loc, e, p)
				if anim == nil || anim.CurrentImage() == nil {
					t.Errorf("Resolve(%s, %s, %s) 返回空动画", loc, e, p)
					continue
				}
				if loc == "control_room" && anim.Clip.Location != "control_room" {
					t.Errorf("控制室不应使用侧边栏动画: %s", anim.Key())
				}
			}
		}
	}
}

func TestResolvePoseOverrideWins(t *testing.T) {
	r := NewAnimationResolver(mustParseConfig(t, resolverTestConfig), newFakeFrameSource(3))

	tests := []struct {
		name    string
		emotion companion.Emotion
		pose    companion.Pose
		want    string
	}{
		{"坐姿覆盖优先于情绪条目", companion.EmotionHappy, companion.PoseSeated, "cr_sit"},
		{"站立时使用情绪条目", companion.EmotionHappy, companion.PoseStanding, "cr_happy"},
		{"显式 null 使用姿势默认动画", companion.EmotionNeutral, companion.PoseStanding, "cr_stand"},
		{"显式 null 与椅子姿势", companion.EmotionNeutral, companion.PoseChair, "cr_sit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Resolve("control_room", tt.emotion, tt.pose).Key(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveFallbackChain(t *testing.T) {
	t.Run("primary 缺失时使用第一个可用备选", func(t *testing.T) {
		r := NewAnimationResolver(mustParseConfig(t, resolverTestConfig), newFakeFrameSource(3, "happy"))
		if got := r.Resolve(companion.LocationSidePanel, companion.EmotionHappy, companion.PoseSeated).Key(); got != "friendly" {
			t.Errorf("got %q, want friendly", got)
		}
	})

	t.Run("primary 与两个备选都缺失时回退到 neutral", func(t *testing.T) {
		src := newFakeFrameSource(3, "happy", "friendly", "calm")
		r := NewAnimationResolver(mustParseConfig(t, resolverTestConfig), src)

		for i := 0; i < 3; i++ {
			anim := r.Resolve(companion.LocationSidePanel, companion.EmotionHappy, companion.PoseSeated)
			if anim == nil || anim.Key() != "n" {
				t.Fatalf("第 %d 次解析应得到 neutral, got %v", i, anim.Key())
			}
		}
		if len(r.misses) != 1 {
			t.Errorf("同一缺失只应记录一次, got %d", len(r.misses))
		}
		if src.loads["happy"] != 1 {
			t.Errorf("加载失败的动画不应重复尝试, got %d", src.loads["happy"])
		}
	})

	t.Run("位置专属动画不会用于其他位置", func(t *testing.T) {
		r := NewAnimationResolver(mustParseConfig(t, resolverTestConfig), newFakeFrameSource(3))
		if got := r.Resolve(companion.LocationSidePanel, companion.EmotionSad, companion.PoseStanding).Key(); got != "calm" {
			t.Errorf("got %q, want calm", got)
		}
	})

	t.Run("没有条目的情绪回退到 neutral", func(t *testing.T) {
		r := NewAnimationResolver(mustParseConfig(t, resolverTestConfig), newFakeFrameSource(3))
		if got := r.Resolve(companion.LocationSidePanel, companion.EmotionDetached, companion.PoseSeated).Key(); got != "n" {
			t.Errorf("got %q, want n", got)
		}
		if got := r.Resolve(companion.LocationSidePanel, companion.EmotionUnknown, companion.PoseSeated).Key(); got != "n" {
			t.Errorf("unknown: got %q, want n", got)
		}
	})
}

func TestResolveUnknownPrefersNeutralPrimary(t *testing.T) {
	cfg := mustParseConfig(t, `
locations: [side_panel]
animations:
  n:    { dir: n }
  calm: { dir: calm }
emotions:
  neutral: { primary: n, fallbacks: [calm] }
  calm:    { primary: calm }
`)
	r := NewAnimationResolver(cfg, newFakeFrameSource(3))
	if got := r.Resolve(companion.LocationSidePanel, companion.EmotionUnknown, companion.PoseSeated).Key(); got != "n" {
		t.Errorf("unknown 应先尝试 neutral 的 primary, got %q", got)
	}
}

func TestResolveSharesClipButNotCursor(t *testing.T) {
	src := newFakeFrameSource(4)
	r := NewAnimationResolver(mustParseConfig(t, resolverTestConfig), src)

	a := r.Resolve(companion.LocationSidePanel, companion.EmotionHappy, companion.PoseSeated)
	a.Advance(1)
	b := r.Resolve(companion.LocationSidePanel, companion.EmotionHappy, companion.PoseSeated)

	if a == b {
		t.Fatal("每次解析都应返回新的播放游标")
	}
	if a.Clip != b.Clip {
		t.Error("同一位置同一动画应共享 clip")
	}
	if b.CurrentFrame != 0 || b.IsFinished {
		t.Errorf("新游标应从第 0 帧开始, got frame=%d finished=%v", b.CurrentFrame, b.IsFinished)
	}
	if src.loads["happy"] != 1 {
		t.Errorf("帧只应加载一次, got %d", src.loads["happy"])
	}
}

func TestResolveFrameRange(t *testing.T) {
	r := NewAnimationResolver(mustParseConfig(t, resolverTestConfig), newFakeFrameSource(10))

	clip := r.ResolveClip(companion.LocationSidePanel, companion.EmotionSerious, companion.PoseSeated)
	if clip == nil {
		t.Fatal("serious 应解析成功")
	}
	if len(clip.Frames) != 4 {
		t.Errorf("start_frame=2 end_frame=5 应得到 4 帧, got %d", len(clip.Frames))
	}
	if clip.HoldFrame != 1 || clip.Loop != components.LoopHoldLastFrame {
		t.Errorf("hold_frame/loop 未生效: %d %s", clip.HoldFrame, clip.Loop)
	}
	if clip.FrameDuration != 1.0/20 {
		t.Errorf("FrameDuration = %v, want 0.05", clip.FrameDuration)
	}
}

func TestSelectFrames(t *testing.T) {
	all := []int{0, 1, 2, 3, 4}
	five := 5
	two := 2

	tests := []struct {
		name    string
		spec    config.AnimationSpec
		want    []int
		wantErr bool
	}{
		{"全部", config.AnimationSpec{}, all, false},
		{"跳过第一帧", config.AnimationSpec{SkipFirstFrame: true}, []int{1, 2, 3, 4}, false},
		{"结束帧超出范围", config.AnimationSpec{StartFrame: 3, EndFrame: &five}, []int{3, 4}, false},
		{"起止相同", config.AnimationSpec{StartFrame: 2, EndFrame: &two}, []int{2}, false},
		{"起始帧越界", config.AnimationSpec{StartFrame: 7}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := selectFrames(all, tt.spec)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if fmt.Sprint(got) != fmt.Sprint(tt.want) && !tt.wantErr {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPreflightFailsWithoutNeutral(t *testing.T) {
	t.Run("共享 neutral 缺失", func(t *testing.T) {
		r := NewAnimationResolver(mustParseConfig(t, resolverTestConfig), newFakeFrameSource(3, "n"))

		err := r.Preflight()
		if err == nil {
			t.Fatal("neutral 无法加载时 Preflight 应失败")
		}
		var cfgErr *config.ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("期望 *config.ConfigError, got %T", err)
		}
		if cfgErr.Location != "side_panel" || cfgErr.Emotion != "neutral" {
			t.Errorf("错误定位不正确: %+v", cfgErr)
		}
		if strings.Contains(err.Error(), "location=control_room") {
			t.Errorf("控制室的姿势动画都可用，不应报错: %v", err)
		}
	})

	t.Run("控制室站立姿势也缺失", func(t *testing.T) {
		r := NewAnimationResolver(mustParseConfig(t, resolverTestConfig), newFakeFrameSource(3, "n", "cr_stand"))

		err := r.Preflight()
		if err == nil || !strings.Contains(err.Error(), "location=control_room") {
			t.Fatalf("期望控制室报错, got %v", err)
		}
		if !strings.Contains(err.Error(), "pose standing") {
			t.Errorf("错误信息应包含姿势: %v", err)
		}
	})

	t.Run("全部可用", func(t *testing.T) {
		r := NewAnimationResolver(mustParseConfig(t, resolverTestConfig), newFakeFrameSource(3))
		if err := r.Preflight(); err != nil {
			t.Errorf("Preflight 不应失败: %v", err)
		}
		if r.CachedClips() == 0 {
			t.Error("Preflight 应预加载动画")
		}
	})
}
