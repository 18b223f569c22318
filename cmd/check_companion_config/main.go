// cmd/check_companion_config/main.go
// 伴侣动画配置检查工具
//
// 在不启动游戏的情况下校验 data/ 下的配置，并检查每个上下文、情绪、姿势组合
// 都能解析到可用的动画（与游戏启动时的预检相同）。
//
// 用法：
//
//	go run ./cmd/check_companion_config
//	go run ./cmd/check_companion_config --placeholder   # 没有美术素材时只检查配置结构
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gonewx/slaglegion/pkg/companion"
	"github.com/gonewx/slaglegion/pkg/config"
	"github.com/gonewx/slaglegion/pkg/embedded"
	"github.com/gonewx/slaglegion/pkg/game"
)

var (
	root        = flag.String("root", ".", "项目根目录（包含 data/ 和 assets/）")
	placeholder = flag.Bool("placeholder", false, "使用占位帧，不读取 assets/")
	verbose     = flag.Bool("verbose", false, "打印每个组合解析到的动画")
)

func main() {
	flag.Parse()

	fsys := os.DirFS(filepath.Clean(*root))
	embedded.Init(fsys, fsys)

	failed := false
	fail := func(format string, args ...any) {
		fmt.Printf("❌ "+format+"\n", args...)
		failed = true
	}

	animConfig, err := config.LoadCompanionAnimConfig(config.CompanionAnimConfigPath)
	if err != nil {
		fail("%v", err)
		os.Exit(1)
	}
	fmt.Printf("✅ %s: %d animations, %d emotions mapped\n",
		config.CompanionAnimConfigPath, len(animConfig.Animations), len(animConfig.Emotions))

	if ship, err := config.LoadShipConfig(config.RoomConfigPath); err != nil {
		fail("%v", err)
	} else {
		fmt.Printf("✅ %s: %d rooms, start in %s\n", config.RoomConfigPath, len(ship.Rooms), ship.StartRoom)
	}

	if script, err := config.LoadChatScriptConfig(config.ChatScriptConfigPath); err != nil {
		fail("%v", err)
	} else {
		fmt.Printf("✅ %s: %d rules\n", config.ChatScriptConfigPath, len(script.Rules))
	}

	var frames game.FrameSource = game.NewResourceManager()
	if *placeholder {
		frames = game.NewPlaceholderFrameSource()
	}
	resolver := game.NewAnimationResolver(animConfig, frames)
	if err := resolver.Preflight(); err != nil {
		fail("preflight: %v", err)
	} else {
		fmt.Printf("✅ preflight: every combination resolves (%d clips loaded)\n", resolver.CachedClips())
	}

	if *verbose {
		for _, loc := range animConfig.ActiveLocations() {
			for _, e := range companion.AllEmotions() {
				for _, p := range companion.AllPoses() {
					clip := resolver.ResolveClip(loc, e, p)
					key := "<none>"
					if clip != nil {
						key = clip.Key
					}
					fmt.Printf("  %-22s %-13s %-9s -> %s\n", loc, e, p, key)
				}
			}
		}
	}

	if failed {
		os.Exit(1)
	}
}
