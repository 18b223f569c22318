package config

import "testing"

func TestNormalizeChatText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"大小写", "Hull Breach", "hull breach"},
		{"撇号", "What's up?", "what s up"},
		{"多余空白", "  hi \t there  ", "hi there"},
		{"只有标点", "?!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeChatText(tt.in); got != tt.want {
				t.Errorf("NormalizeChatText(%q) = %q, 期望 %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseChatScriptNormalizesKeywords(t *testing.T) {
	cfg, err := ParseChatScriptConfig([]byte(`
greeting: "online"
rules:
  - keywords: ["What's up", " Status? "]
    emotion: curious
    replies: ["all quiet"]
fallback:
  emotion: calm
  replies: ["noted"]
`))
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	kws := cfg.Rules[0].Keywords
	if len(kws) != 2 || kws[0] != "what s up" || kws[1] != "status" {
		t.Errorf("关键字应与消息使用同样的规范化，实际 %q", kws)
	}
}

func TestParseChatScriptRejectsPunctuationOnlyKeyword(t *testing.T) {
	_, err := ParseChatScriptConfig([]byte(`
greeting: "online"
rules:
  - keywords: ["?!"]
    emotion: curious
    replies: ["all quiet"]
fallback:
  emotion: calm
  replies: ["noted"]
`))
	if err == nil {
		t.Fatal("只有标点的关键字规范化后为空，应返回错误")
	}
}
