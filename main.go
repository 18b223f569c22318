package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gonewx/slaglegion/pkg/app"
	"github.com/gonewx/slaglegion/pkg/embedded"
	"github.com/hajimehoshi/ebiten/v2"
)

var (
	verbose      = flag.Bool("verbose", false, "详细日志")
	assetsRoot   = flag.String("assets", ".", "包含 assets/ 目录的根路径")
	placeholder  = flag.Bool("placeholder", false, "使用占位帧代替伴侣动画素材")
	startRoom    = flag.String("room", "", "起始房间 ID（默认使用 rooms.yaml 的 start_room）")
	replyTimeout = flag.Duration("reply-timeout", 60*time.Second, "等待伴侣回复的超时时间")
	decayTimeout = flag.Float64("decay", 120, "情绪回落到 neutral 的时间（秒）")
)

func main() {
	flag.Parse()

	embedded.Init(os.DirFS(*assetsRoot), dataFS)

	gameApp, err := app.NewApp(app.Config{
		Verbose:        *verbose,
		PlaceholderArt: *placeholder,
		StartRoom:      *startRoom,
		ReplyTimeout:   *replyTimeout,
		DecayTimeout:   *decayTimeout,
	})
	if err != nil {
		// 动画配置错误在启动时直接退出，不进入游戏
		fmt.Fprintf(os.Stderr, "游戏初始化失败: %v\n", err)
		os.Exit(1)
	}
	defer gameApp.Close()

	if err := ebiten.RunGame(gameApp); err != nil {
		fmt.Fprintf(os.Stderr, "游戏异常退出: %v\n", err)
		gameApp.Close()
		os.Exit(1)
	}
}
