// Package companion 维护伴侣角色（Lexi）的唯一权威状态
//
// 状态包括情绪、姿势和所在位置。所有面板只通过 State 读取状态、
// 通过订阅获得变更通知；情绪只能由聊天分析、手动操作或衰减计时器修改。
package companion

import (
	"strings"

	"golang.org/x/text/cases"
)

// Emotion 伴侣情绪（封闭枚举 + unknown 兜底）
type Emotion string

const (
	EmotionUnknown      Emotion = "unknown"
	EmotionNeutral      Emotion = "neutral"
	EmotionHappy        Emotion = "happy"
	EmotionSad          Emotion = "sad"
	EmotionExcited      Emotion = "excited"
	EmotionCalm         Emotion = "calm"
	EmotionPlayful      Emotion = "playful"
	EmotionSerious      Emotion = "serious"
	EmotionSurprised    Emotion = "surprised"
	EmotionThinking     Emotion = "thinking"
	EmotionCurious      Emotion = "curious"
	EmotionWorried      Emotion = "worried"
	EmotionConfused     Emotion = "confused"
	EmotionAmused       Emotion = "amused"
	EmotionFlirty       Emotion = "flirty"
	EmotionSarcastic    Emotion = "sarcastic"
	EmotionWitty        Emotion = "witty"
	EmotionHelpful      Emotion = "helpful"
	EmotionFriendly     Emotion = "friendly"
	EmotionProfessional Emotion = "professional"
	EmotionDiplomatic   Emotion = "diplomatic"
	EmotionSweet        Emotion = "sweet"
	EmotionShocked      Emotion = "shocked"
	EmotionThoughtful   Emotion = "thoughtful"
	EmotionAmbivalent   Emotion = "ambivalent"
	EmotionDetached     Emotion = "detached"
)

// allEmotions 封闭集合（不含 unknown），顺序即配置校验和调试输出的顺序
var allEmotions = []Emotion{
	EmotionNeutral, EmotionHappy, EmotionSad, EmotionExcited, EmotionCalm,
	EmotionPlayful, EmotionSerious, EmotionSurprised, EmotionThinking,
	EmotionCurious, EmotionWorried, EmotionConfused, EmotionAmused,
	EmotionFlirty, EmotionSarcastic, EmotionWitty, EmotionHelpful,
	EmotionFriendly, EmotionProfessional, EmotionDiplomatic, EmotionSweet,
	EmotionShocked, EmotionThoughtful, EmotionAmbivalent, EmotionDetached,
}

// emotionAliases 模型常见的近义输出 -> 枚举值
var emotionAliases = map[string]Emotion{
	"flirtatious":   EmotionFlirty,
	"concerned":     EmotionWorried,
	"anxious":       EmotionWorried,
	"nervous":       EmotionWorried,
	"joyful":        EmotionHappy,
	"cheerful":      EmotionHappy,
	"glad":          EmotionHappy,
	"content":       EmotionHappy,
	"pensive":       EmotionThoughtful,
	"reflective":    EmotionThoughtful,
	"contemplative": EmotionThoughtful,
	"surprise":      EmotionSurprised,
	"astonished":    EmotionShocked,
	"shock":         EmotionShocked,
	"bored":         EmotionDetached,
	"indifferent":   EmotionDetached,
	"aloof":         EmotionDetached,
	"unsure":        EmotionAmbivalent,
	"uncertain":     EmotionConfused,
	"puzzled":       EmotionConfused,
	"kind":          EmotionSweet,
	"caring":        EmotionSweet,
	"affectionate":  EmotionSweet,
	"funny":         EmotionAmused,
	"humorous":      EmotionWitty,
	"teasing":       EmotionPlayful,
	"mischievous":   EmotionPlayful,
	"formal":        EmotionProfessional,
	"tactful":       EmotionDiplomatic,
	"relaxed":       EmotionCalm,
	"serene":        EmotionCalm,
	"thrilled":      EmotionExcited,
	"enthusiastic":  EmotionExcited,
	"eager":         EmotionExcited,
	"inquisitive":   EmotionCurious,
	"interested":    EmotionCurious,
	"melancholy":    EmotionSad,
	"unhappy":       EmotionSad,
	"grave":         EmotionSerious,
	"earnest":       EmotionSerious,
	"supportive":    EmotionHelpful,
	"warm":          EmotionFriendly,
	"sardonic":      EmotionSarcastic,
	"ironic":        EmotionSarcastic,
}

var emotionFolder = cases.Fold()

// AllEmotions 返回封闭情绪集合的副本（不含 unknown）
func AllEmotions() []Emotion {
	out := make([]Emotion, len(allEmotions))
	copy(out, allEmotions)
	return out
}

// Valid 报告 e 是否属于封闭集合（unknown 不算）
func (e Emotion) Valid() bool {
	for _, known := range allEmotions {
		if e == known {
			return true
		}
	}
	return false
}

func (e Emotion) String() string {
	return string(e)
}

// ParseEmotion 把后端返回的情绪标签映射到枚举
//
// 规则：大小写折叠、取第一个单词、去掉首尾标点，然后依次尝试
// 精确匹配与别名表。无法识别的标签返回 EmotionUnknown，不会退回 neutral。
func ParseEmotion(label string) Emotion {
	fields := strings.Fields(emotionFolder.String(label))
	if len(fields) == 0 {
		return EmotionUnknown
	}
	word := strings.Trim(fields[0], ".,!?;:()[]{}\"'*`")
	if word == "" {
		return EmotionUnknown
	}

	if e := Emotion(word); e.Valid() {
		return e
	}
	if e, ok := emotionAliases[word]; ok {
		return e
	}
	return EmotionUnknown
}
