package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/gonewx/slaglegion/pkg/companion"
	"github.com/gonewx/slaglegion/pkg/embedded"
	"gopkg.in/yaml.v3"
)

// ChatScriptConfigPath 离线对话脚本的默认路径
const ChatScriptConfigPath = "data/chat_script.yaml"

// ChatScriptConfig 离线对话后端的关键字脚本
//
// 按顺序匹配 rules，第一条包含任一关键字的规则生效；都不匹配时使用 fallback。
type ChatScriptConfig struct {
	Greeting string       `yaml:"greeting"`
	Rules    []ScriptRule `yaml:"rules"`
	Fallback ScriptRule   `yaml:"fallback"`
}

// ScriptRule 一条关键字规则
type ScriptRule struct {
	Keywords []string `yaml:"keywords"`
	Emotion  string   `yaml:"emotion"` // 回复附带的情绪标签（可以是别名）
	Replies  []string `yaml:"replies"` // 依次轮换使用
}

// LoadChatScriptConfig 读取并校验对话脚本
func LoadChatScriptConfig(path string) (*ChatScriptConfig, error) {
	data, err := embedded.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法读取配置文件 %s: %w", path, err)
	}
	return ParseChatScriptConfig(data)
}

// ParseChatScriptConfig 解析并校验 YAML 内容
// 关键字与玩家消息使用同一套 NormalizeChatText 规则
func ParseChatScriptConfig(data []byte) (*ChatScriptConfig, error) {
	var cfg ChatScriptConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("无法解析对话脚本: %w", err)
	}
	for i := range cfg.Rules {
		for j, kw := range cfg.Rules[i].Keywords {
			cfg.Rules[i].Keywords[j] = NormalizeChatText(kw)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 检查每条规则都有回复，情绪标签都能识别
func (c *ChatScriptConfig) Validate() error {
	var errs []error
	check := func(name string, r ScriptRule, needKeywords bool) {
		if needKeywords && len(r.Keywords) == 0 {
			errs = append(errs, fmt.Errorf("%s has no keywords", name))
		}
		for _, kw := range r.Keywords {
			if kw == "" {
				errs = append(errs, fmt.Errorf("%s has an empty keyword", name))
			}
		}
		if len(r.Replies) == 0 {
			errs = append(errs, fmt.Errorf("%s has no replies", name))
		}
		if companion.ParseEmotion(r.Emotion) == companion.EmotionUnknown {
			errs = append(errs, fmt.Errorf("%s uses unrecognized emotion %q", name, r.Emotion))
		}
	}

	for i, r := range c.Rules {
		check(fmt.Sprintf("rule #%d", i), r, true)
	}
	check("fallback", c.Fallback, false)
	return errors.Join(errs...)
}

// NormalizeChatText 转为小写，标点替换为空格，多个空格合并为一个
func NormalizeChatText(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}
