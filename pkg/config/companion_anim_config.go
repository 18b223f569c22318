package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/gonewx/slaglegion/pkg/companion"
	"github.com/gonewx/slaglegion/pkg/embedded"
	"gopkg.in/yaml.v3"
)

// CompanionAnimConfigPath 情绪 -> 动画映射表的默认路径
const CompanionAnimConfigPath = "data/companion_animations.yaml"

// 动画默认参数（配置未指定时使用）
const (
	DefaultAnimationFPS   = 10.0
	DefaultAnimationGlob  = "frame_*.png"
	DefaultAnimationScale = 1.0
)

// 合法的播放模式，与 components.LoopMode 的取值一致
var validLoopModes = map[string]bool{
	"once":            true,
	"loop":            true,
	"ping_pong":       true,
	"hold_last_frame": true,
}

// ConfigError 映射表中的结构性错误，启动时视为致命错误
type ConfigError struct {
	Emotion  string // 相关情绪，可为空
	Location string // 相关位置，可为空
	Reason   string
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("companion animation config")
	if e.Emotion != "" {
		fmt.Fprintf(&b, " [emotion=%s]", e.Emotion)
	}
	if e.Location != "" {
		fmt.Fprintf(&b, " [location=%s]", e.Location)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	return b.String()
}

// CompanionAnimConfig 映射表的顶层结构
type CompanionAnimConfig struct {
	// Locations 需要显示伴侣的视觉上下文，每个都必须能解析出 neutral
	Locations  []string                 `yaml:"locations"`
	Emotions   map[string]EmotionEntry  `yaml:"emotions"`
	Poses      map[string]PoseEntry     `yaml:"poses"`
	Animations map[string]AnimationSpec `yaml:"animations"`
}

// EmotionEntry 单个情绪的映射
type EmotionEntry struct {
	Primary   string   `yaml:"primary"`   // 共享动画键
	Fallbacks []string `yaml:"fallbacks"` // 备选情绪（按顺序尝试它们的 primary）
	// Locations 按位置覆盖：值为动画键；显式 null 表示使用该位置的姿势默认动画
	Locations map[string]*string `yaml:"locations"`
}

// PoseEntry 某个位置的姿势映射
type PoseEntry struct {
	Overrides map[string]string `yaml:"overrides"` // 无论情绪如何都优先使用
	Defaults  map[string]string `yaml:"defaults"`  // 情绪条目显式为 null 时使用
}

// AnimationSpec 单个动画的资源描述
type AnimationSpec struct {
	Location       string  `yaml:"location,omitempty"` // 非空时只能在该位置使用
	Dir            string  `yaml:"dir"`                // 帧目录，例如 assets/companion/side/happy
	Pattern        string  `yaml:"pattern,omitempty"`  // 帧文件匹配模式，默认 frame_*.png
	FPS            float64 `yaml:"fps,omitempty"`
	Loop           string  `yaml:"loop,omitempty"` // once / loop / ping_pong / hold_last_frame
	StartFrame     int     `yaml:"start_frame,omitempty"`
	EndFrame       *int    `yaml:"end_frame,omitempty"` // 包含；nil 表示到最后一帧
	SkipFirstFrame bool    `yaml:"skip_first_frame,omitempty"`
	HoldFrame      *int    `yaml:"hold_frame,omitempty"` // 播放结束后保持的帧（相对裁剪后的帧序号）
	Scale          float64 `yaml:"scale,omitempty"`
}

// LoadCompanionAnimConfig 从 embedded FS 读取并校验映射表
func LoadCompanionAnimConfig(path string) (*CompanionAnimConfig, error) {
	data, err := embedded.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法读取配置文件 %s: %w", path, err)
	}
	return ParseCompanionAnimConfig(data)
}

// rawCompanionAnimConfig 情绪条目先保留为节点，逐个解码以便错误信息带上情绪名
type rawCompanionAnimConfig struct {
	Locations  []string                 `yaml:"locations"`
	Emotions   map[string]yaml.Node     `yaml:"emotions"`
	Poses      map[string]PoseEntry     `yaml:"poses"`
	Animations map[string]AnimationSpec `yaml:"animations"`
}

// ParseCompanionAnimConfig 解析并校验 YAML 内容
// 未知字段（例如拼错的 primery）视为配置错误
func ParseCompanionAnimConfig(data []byte) (*CompanionAnimConfig, error) {
	var raw rawCompanionAnimConfig
	if err := decodeStrict(data, &raw); err != nil {
		return nil, &ConfigError{Reason: "无法解析伴侣动画配置: " + describeYAMLError(err)}
	}

	cfg := CompanionAnimConfig{
		Locations:  raw.Locations,
		Emotions:   make(map[string]EmotionEntry, len(raw.Emotions)),
		Poses:      raw.Poses,
		Animations: raw.Animations,
	}
	var errs []error
	for _, name := range sortedKeys(raw.Emotions) {
		node := raw.Emotions[name]
		var entry EmotionEntry
		if err := decodeNode(&node, &entry); err != nil {
			errs = append(errs, &ConfigError{Emotion: name, Reason: fmt.Sprintf("line %d: %s", node.Line, describeYAMLError(err))})
			continue
		}
		cfg.Emotions[name] = entry
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// decodeNode 严格解码单个节点（yaml.Node.Decode 不检查未知字段）
func decodeNode(node *yaml.Node, out any) error {
	data, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	return decodeStrict(data, out)
}

// describeYAMLError 去掉 yaml.v3 的 "line N:" 前缀（节点重新编码后行号不再对应原文件）
func describeYAMLError(err error) string {
	var typeErr *yaml.TypeError
	if !errors.As(err, &typeErr) {
		return err.Error()
	}
	msgs := make([]string, len(typeErr.Errors))
	for i, m := range typeErr.Errors {
		if strings.HasPrefix(m, "line ") {
			if _, rest, ok := strings.Cut(m, ": "); ok {
				m = rest
			}
		}
		msgs[i] = m
	}
	return strings.Join(msgs, "; ")
}

func (c *CompanionAnimConfig) applyDefaults() {
	for key, spec := range c.Animations {
		if spec.FPS <= 0 {
			spec.FPS = DefaultAnimationFPS
		}
		if spec.Pattern == "" {
			spec.Pattern = DefaultAnimationGlob
		}
		if spec.Loop == "" {
			spec.Loop = "loop"
		}
		if spec.Scale <= 0 {
			spec.Scale = DefaultAnimationScale
		}
		c.Animations[key] = spec
	}
}

// Validate 检查映射表的结构完整性，返回所有发现的问题（errors.Join）
// 每个问题都是 *ConfigError，可用 errors.As 取出第一个
func (c *CompanionAnimConfig) Validate() error {
	var errs []error
	fail := func(emotion, location, format string, args ...any) {
		errs = append(errs, &ConfigError{Emotion: emotion, Location: location, Reason: fmt.Sprintf(format, args...)})
	}

	if len(c.Locations) == 0 {
		fail("", "", "no active locations declared")
	}

	neutral, ok := c.Emotions[string(companion.EmotionNeutral)]
	if !ok {
		fail("neutral", "", "neutral entry is required")
	} else if neutral.Primary == "" {
		fail("neutral", "", "neutral must declare a primary animation")
	}

	// 动画本身
	for _, key := range sortedKeys(c.Animations) {
		spec := c.Animations[key]
		if spec.Dir == "" {
			fail("", spec.Location, "animation %q has no dir", key)
		}
		if !validLoopModes[spec.Loop] {
			fail("", spec.Location, "animation %q has invalid loop mode %q", key, spec.Loop)
		}
		if spec.StartFrame < 0 {
			fail("", spec.Location, "animation %q has negative start_frame", key)
		}
		if spec.EndFrame != nil && *spec.EndFrame < spec.StartFrame {
			fail("", spec.Location, "animation %q end_frame %d before start_frame %d", key, *spec.EndFrame, spec.StartFrame)
		}
		if spec.HoldFrame != nil && *spec.HoldFrame < 0 {
			fail("", spec.Location, "animation %q has negative hold_frame", key)
		}
	}

	// 情绪条目
	for _, name := range sortedKeys(c.Emotions) {
		entry := c.Emotions[name]
		if e := companion.Emotion(name); !e.Valid() && e != companion.EmotionUnknown {
			fail(name, "", "not a known emotion")
			continue
		}
		if entry.Primary == "" && len(entry.Fallbacks) == 0 && len(entry.Locations) == 0 {
			fail(name, "", "entry declares no primary, fallbacks or locations")
			continue
		}
		if entry.Primary != "" {
			if spec, ok := c.Animations[entry.Primary]; !ok {
				fail(name, "", "primary animation %q is not defined", entry.Primary)
			} else if spec.Location != "" {
				fail(name, spec.Location, "primary animation %q is location-specific and cannot be shared", entry.Primary)
			}
		}
		for _, fb := range entry.Fallbacks {
			if !companion.Emotion(fb).Valid() {
				fail(name, "", "fallback %q is not a known emotion", fb)
			} else if fb == name {
				fail(name, "", "emotion lists itself as a fallback")
			}
		}
		for _, loc := range sortedKeys(entry.Locations) {
			key := entry.Locations[loc]
			if key == nil {
				continue
			}
			c.checkLocationKey(name, loc, *key, fail)
		}
	}

	// 姿势映射
	for _, loc := range sortedKeys(c.Poses) {
		entry := c.Poses[loc]
		for _, group := range []map[string]string{entry.Overrides, entry.Defaults} {
			for _, pose := range sortedKeys(group) {
				if !companion.Pose(pose).Valid() {
					fail("", loc, "unknown pose %q", pose)
					continue
				}
				c.checkLocationKey("", loc, group[pose], fail)
			}
		}
	}

	// 每个活动位置都必须有 neutral 可用
	if neutral.Primary != "" {
		for _, loc := range c.Locations {
			if !c.neutralCovers(loc) {
				fail("neutral", loc, "no neutral animation reachable for this location")
			}
		}
	}

	return errors.Join(errs...)
}

func (c *CompanionAnimConfig) checkLocationKey(emotion, loc, key string, fail func(string, string, string, ...any)) {
	spec, ok := c.Animations[key]
	if !ok {
		fail(emotion, loc, "animation %q is not defined", key)
		return
	}
	if spec.Location != "" && spec.Location != loc {
		fail(emotion, loc, "animation %q belongs to location %q", key, spec.Location)
	}
}

// neutralCovers 报告 neutral 在 loc 能否静态地解析到某个动画
func (c *CompanionAnimConfig) neutralCovers(loc string) bool {
	neutral := c.Emotions[string(companion.EmotionNeutral)]
	if key, present := neutral.Locations[loc]; present {
		if key != nil {
			return true
		}
		if len(c.Poses[loc].Defaults) > 0 {
			return true
		}
	}
	spec, ok := c.Animations[neutral.Primary]
	return ok && (spec.Location == "" || spec.Location == loc)
}

// ActiveLocations 返回需要显示伴侣的位置
func (c *CompanionAnimConfig) ActiveLocations() []companion.Location {
	out := make([]companion.Location, 0, len(c.Locations))
	for _, l := range c.Locations {
		out = append(out, companion.Location(l))
	}
	return out
}

// PoseOverride 返回 (loc, pose) 的姿势覆盖动画
func (c *CompanionAnimConfig) PoseOverride(loc companion.Location, pose companion.Pose) (string, bool) {
	key, ok := c.Poses[string(loc)].Overrides[string(pose)]
	return key, ok && key != ""
}

// PoseDefault 返回 (loc, pose) 的姿势默认动画
func (c *CompanionAnimConfig) PoseDefault(loc companion.Location, pose companion.Pose) (string, bool) {
	key, ok := c.Poses[string(loc)].Defaults[string(pose)]
	return key, ok && key != ""
}

// LocationEntry 查询情绪在某位置的覆盖条目
//
// 返回值：
//   - key: 动画键（explicitNull 为 true 时为空）
//   - explicitNull: 条目存在且为 null
//   - present: 条目是否存在
func (c *CompanionAnimConfig) LocationEntry(e companion.Emotion, loc companion.Location) (key string, explicitNull, present bool) {
	entry, ok := c.Emotions[string(e)]
	if !ok {
		return "", false, false
	}
	v, ok := entry.Locations[string(loc)]
	if !ok {
		return "", false, false
	}
	if v == nil {
		return "", true, true
	}
	return *v, false, true
}

// Primary 返回情绪的共享动画键
func (c *CompanionAnimConfig) Primary(e companion.Emotion) (string, bool) {
	entry, ok := c.Emotions[string(e)]
	if !ok || entry.Primary == "" {
		return "", false
	}
	return entry.Primary, true
}

// Fallbacks 返回情绪的备选链
// unknown 没有自己的条目时沿用 neutral 的完整链：先 neutral 本身，再 neutral 的备选
func (c *CompanionAnimConfig) Fallbacks(e companion.Emotion) []companion.Emotion {
	entry, ok := c.Emotions[string(e)]
	out := make([]companion.Emotion, 0, len(entry.Fallbacks)+1)
	if !ok && e == companion.EmotionUnknown {
		entry = c.Emotions[string(companion.EmotionNeutral)]
		out = append(out, companion.EmotionNeutral)
	}
	for _, fb := range entry.Fallbacks {
		out = append(out, companion.Emotion(fb))
	}
	return out
}

// Animation 返回动画资源描述
func (c *CompanionAnimConfig) Animation(key string) (AnimationSpec, bool) {
	spec, ok := c.Animations[key]
	return spec, ok
}

// UsableAt 报告动画能否在 loc 使用（共享动画或属于该位置）
func (s AnimationSpec) UsableAt(loc companion.Location) bool {
	return s.Location == "" || s.Location == string(loc)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
