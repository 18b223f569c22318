package game

import (
	"errors"
	"fmt"
	"log"

	"github.com/gonewx/slaglegion/pkg/companion"
	"github.com/gonewx/slaglegion/pkg/components"
	"github.com/gonewx/slaglegion/pkg/config"
)

type clipKey struct {
	location companion.Location
	key      string
}

type missKey struct {
	location companion.Location
	emotion  companion.Emotion
	pose     companion.Pose
}

// AnimationResolver 把 (位置, 情绪, 姿势) 解析为可播放的动画
//
// 解析顺序：
//  1. 该位置的姿势覆盖
//  2. 情绪在该位置的条目：动画键直接使用；显式 null 使用该位置的姿势默认动画
//  3. 情绪的共享 primary，然后依次尝试备选情绪的 primary
//  4. neutral（Preflight 保证每个活动位置都能解析）
//
// 候选动画只有在帧能成功加载时才算命中。加载结果按 (位置, 动画键) 缓存，
// 每次 Resolve 都返回新的播放游标，帧列表共享。
type AnimationResolver struct {
	cfg    *config.CompanionAnimConfig
	source FrameSource

	clips  map[clipKey]*components.AnimationClip
	failed map[clipKey]error
	misses map[missKey]bool
}

// NewAnimationResolver 创建解析器
func NewAnimationResolver(cfg *config.CompanionAnimConfig, source FrameSource) *AnimationResolver {
	return &AnimationResolver{
		cfg:    cfg,
		source: source,
		clips:  make(map[clipKey]*components.AnimationClip),
		failed: make(map[clipKey]error),
		misses: make(map[missKey]bool),
	}
}

// Resolve 返回一个从第 0 帧开始的新播放游标
// 只有 neutral 也无法加载时才返回 nil（Preflight 通过后不会发生）
func (r *AnimationResolver) Resolve(loc companion.Location, emotion companion.Emotion, pose companion.Pose) *components.AnimationComponent {
	clip := r.ResolveClip(loc, emotion, pose)
	if clip == nil {
		return nil
	}
	return components.NewPlayback(clip)
}

// ResolveClip 与 Resolve 相同，但返回共享的 clip 本身
func (r *AnimationResolver) ResolveClip(loc companion.Location, emotion companion.Emotion, pose companion.Pose) *components.AnimationClip {
	// 1. 姿势覆盖
	if key, ok := r.cfg.PoseOverride(loc, pose); ok {
		if clip := r.clip(loc, key); clip != nil {
			return clip
		}
	}

	// 2 + 3. 情绪自身的候选链
	if clip := r.emotionChain(loc, emotion, pose); clip != nil {
		return clip
	}

	// 4. neutral
	clip := r.neutral(loc, pose)
	miss := missKey{location: loc, emotion: emotion, pose: pose}
	if !r.misses[miss] {
		r.misses[miss] = true
		if clip != nil {
			log.Printf("[AnimationResolver] No animation for emotion '%s' at %s (pose %s), using neutral '%s'", emotion, loc, pose, clip.Key)
		} else {
			log.Printf("[AnimationResolver] ERROR: no animation for emotion '%s' at %s (pose %s) and neutral is unavailable", emotion, loc, pose)
		}
	}
	return clip
}

func (r *AnimationResolver) emotionChain(loc companion.Location, emotion companion.Emotion, pose companion.Pose) *components.AnimationClip {
	if clip := r.locationEntry(loc, emotion, pose); clip != nil {
		return clip
	}

	if key, ok := r.cfg.Primary(emotion); ok {
		if clip := r.clip(loc, key); clip != nil {
			return clip
		}
	}
	for _, fb := range r.cfg.Fallbacks(emotion) {
		if key, ok := r.cfg.Primary(fb); ok {
			if clip := r.clip(loc, key); clip != nil {
				return clip
			}
		}
	}
	return nil
}

// locationEntry 处理情绪在该位置的条目（步骤 2）
func (r *AnimationResolver) locationEntry(loc companion.Location, emotion companion.Emotion, pose companion.Pose) *components.AnimationClip {
	key, explicitNull, present := r.cfg.LocationEntry(emotion, loc)
	if !present {
		return nil
	}
	if explicitNull {
		if def, ok := r.cfg.PoseDefault(loc, pose); ok {
			return r.clip(loc, def)
		}
		return nil
	}
	return r.clip(loc, key)
}

func (r *AnimationResolver) neutral(loc companion.Location, pose companion.Pose) *components.AnimationClip {
	if clip := r.locationEntry(loc, companion.EmotionNeutral, pose); clip != nil {
		return clip
	}
	if key, ok := r.cfg.Primary(companion.EmotionNeutral); ok {
		return r.clip(loc, key)
	}
	return nil
}

// clip 加载（或从缓存取出）位置 loc 上的动画 key，失败返回 nil
func (r *AnimationResolver) clip(loc companion.Location, key string) *components.AnimationClip {
	ck := clipKey{location: loc, key: key}
	if c, ok := r.clips[ck]; ok {
		return c
	}
	if _, ok := r.failed[ck]; ok {
		return nil
	}

	c, err := r.load(loc, key)
	if err != nil {
		r.failed[ck] = err
		log.Printf("[AnimationResolver] Animation '%s' unavailable at %s: %v", key, loc, err)
		return nil
	}
	r.clips[ck] = c
	return c
}

func (r *AnimationResolver) load(loc companion.Location, key string) (*components.AnimationClip, error) {
	spec, ok := r.cfg.Animation(key)
	if !ok {
		return nil, fmt.Errorf("animation %q is not defined", key)
	}
	if !spec.UsableAt(loc) {
		return nil, fmt.Errorf("animation %q belongs to %s", key, spec.Location)
	}

	all, err := r.source.LoadFrames(spec.Dir, spec.Pattern, spec.Scale)
	if err != nil {
		return nil, err
	}
	frames, err := selectFrames(all, spec)
	if err != nil {
		return nil, err
	}

	hold := -1
	if spec.HoldFrame != nil {
		hold = *spec.HoldFrame
	}
	fps := spec.FPS
	if fps <= 0 {
		fps = config.DefaultAnimationFPS
	}

	return &components.AnimationClip{
		Key:           key,
		Location:      string(loc),
		Frames:        frames,
		FrameDuration: 1.0 / fps,
		Loop:          components.LoopMode(spec.Loop),
		HoldFrame:     hold,
	}, nil
}

// selectFrames 按 start_frame / end_frame / skip_first_frame 裁剪帧列表
// end_frame 为包含边界，超出范围时截断到最后一帧
func selectFrames[T any](all []T, spec config.AnimationSpec) ([]T, error) {
	start := spec.StartFrame
	if spec.SkipFirstFrame && start < 1 && len(all) > 1 {
		start = 1
	}
	end := len(all) - 1
	if spec.EndFrame != nil && *spec.EndFrame < end {
		end = *spec.EndFrame
	}
	if start > end || start >= len(all) {
		return nil, fmt.Errorf("frame range [%d, %d] is empty (%d frames)", start, end, len(all))
	}
	return all[start : end+1], nil
}

// Preflight 在启动时检查每个活动位置、每个姿势都能加载 neutral（或姿势覆盖）
//
// 失败返回 *config.ConfigError（可能多个，errors.Join），调用方应视为致命错误。
// 同时预加载各情绪的动画，缺失的只记录日志。
func (r *AnimationResolver) Preflight() error {
	var errs []error
	for _, loc := range r.cfg.ActiveLocations() {
		for _, pose := range companion.AllPoses() {
			if key, ok := r.cfg.PoseOverride(loc, pose); ok && r.clip(loc, key) != nil {
				continue
			}
			if r.neutral(loc, pose) == nil {
				errs = append(errs, &config.ConfigError{
					Emotion:  string(companion.EmotionNeutral),
					Location: string(loc),
					Reason:   fmt.Sprintf("no loadable neutral animation for pose %s", pose),
				})
			}
		}

		loaded := 0
		for _, e := range companion.AllEmotions() {
			if r.emotionChain(loc, e, companion.PoseSeated) != nil {
				loaded++
			}
		}
		log.Printf("[AnimationResolver] %s: %d/%d emotions resolve without neutral fallback", loc, loaded, len(companion.AllEmotions()))
	}
	return errors.Join(errs...)
}

// CachedClips 返回已缓存的动画数量（调试用）
func (r *AnimationResolver) CachedClips() int {
	return len(r.clips)
}
