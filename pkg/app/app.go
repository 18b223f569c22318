// Package app 提供游戏应用的核心包装器
//
// 该包将初始化逻辑（配置加载、动画预检、存储、场景创建）从 main 包提取出来，
// main 只负责解析命令行参数和注入资源文件系统。
package app

import (
	"fmt"
	"image/color"
	"io"
	"log"
	"time"

	"github.com/gonewx/slaglegion/pkg/chat"
	"github.com/gonewx/slaglegion/pkg/companion"
	"github.com/gonewx/slaglegion/pkg/config"
	"github.com/gonewx/slaglegion/pkg/embedded"
	"github.com/gonewx/slaglegion/pkg/game"
	"github.com/gonewx/slaglegion/pkg/scenes"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/gdata/v2"
)

// AppName gdata 存储使用的应用名
const AppName = "slaglegion"

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// PlaceholderArt 强制使用占位帧（没有美术资源时自动启用）
	PlaceholderArt bool
	// StartRoom 覆盖 rooms.yaml 中的起始房间，为空使用配置值
	StartRoom string
	// ReplyTimeout 等待伴侣回复的超时时间，<= 0 使用默认值
	ReplyTimeout time.Duration
	// DecayTimeout 情绪回落到 neutral 的时间（秒），<= 0 使用默认值
	DecayTimeout float64
}

// App 是游戏应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	sceneManager *game.SceneManager
	settings     *game.SettingsManager
	verbose      bool
}

// NewApp 创建并初始化游戏应用
//
// 调用此函数前，必须先调用 embedded.Init() 初始化资源文件系统。
// 动画配置引用了不存在的动画或帧时返回错误，调用方应直接退出。
func NewApp(cfg Config) (*App, error) {
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	animConfig, err := config.LoadCompanionAnimConfig(config.CompanionAnimConfigPath)
	if err != nil {
		return nil, fmt.Errorf("动画配置加载失败: %w", err)
	}
	ship, err := config.LoadShipConfig(config.RoomConfigPath)
	if err != nil {
		return nil, fmt.Errorf("房间配置加载失败: %w", err)
	}
	if cfg.StartRoom != "" {
		if _, ok := ship.Room(cfg.StartRoom); !ok {
			return nil, fmt.Errorf("unknown start room %q", cfg.StartRoom)
		}
		ship.StartRoom = cfg.StartRoom
	}
	script, err := config.LoadChatScriptConfig(config.ChatScriptConfigPath)
	if err != nil {
		return nil, fmt.Errorf("对话脚本加载失败: %w", err)
	}

	resourceManager := game.NewResourceManager()
	var frames game.FrameSource = resourceManager
	if cfg.PlaceholderArt || !embedded.Exists("assets/companion") {
		log.Printf("[App] Companion art not found, using placeholder frames")
		frames = game.NewPlaceholderFrameSource()
	}

	resolver := game.NewAnimationResolver(animConfig, frames)
	if err := resolver.Preflight(); err != nil {
		return nil, fmt.Errorf("动画预检失败: %w", err)
	}
	log.Printf("[App] Animation preflight passed (%d clips)", resolver.CachedClips())

	settings := game.NewSettingsManager(openStorage())
	applyDisplaySettings(settings.GetSettings())

	inbox := companion.NewInbox()
	backend := chat.NewScriptedBackend(script)
	conversation := chat.NewConversation(backend, inbox, cfg.ReplyTimeout)
	conversation.AddMessage(chat.RoleAgent, backend.Greeting())

	scene, err := scenes.NewShipScene(scenes.ShipSceneConfig{
		Ship:         ship,
		Animations:   resolver,
		Images:       resourceManager,
		Conversation: conversation,
		Inbox:        inbox,
		Settings:     settings,
		DecayTimeout: cfg.DecayTimeout,
	})
	if err != nil {
		conversation.Close()
		return nil, fmt.Errorf("场景创建失败: %w", err)
	}

	sceneManager := game.NewSceneManager()
	sceneManager.SwitchTo(scene)

	return &App{
		sceneManager: sceneManager,
		settings:     settings,
		verbose:      cfg.Verbose,
	}, nil
}

// openStorage 打开 gdata 存储，失败时返回 nil（设置只保存在内存中）
func openStorage() *gdata.Manager {
	m, err := gdata.Open(gdata.Config{AppName: AppName})
	if err != nil {
		log.Printf("[App] Warning: persistent storage unavailable: %v", err)
		return nil
	}
	return m
}

func applyDisplaySettings(s *game.GameSettings) {
	ebiten.SetWindowSize(config.ScreenWidth, config.ScreenHeight)
	ebiten.SetWindowTitle("Slaglegion - Dagger")
	ebiten.SetFullscreen(s.Fullscreen)
}

// Update 更新游戏逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	// F11 切换全屏，并记入设置
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		full := !ebiten.IsFullscreen()
		ebiten.SetFullscreen(full)
		a.settings.SetFullscreen(full)
		log.Printf("[App] Fullscreen: %v", full)
	}

	deltaTime := 1.0 / float64(ebiten.TPS())
	a.sceneManager.Update(deltaTime)
	return nil
}

// Draw 绘制游戏画面
func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 8, G: 10, B: 16, A: 255})
	a.sceneManager.Draw(screen)
}

// Layout 返回游戏的逻辑屏幕尺寸
// 此尺寸独立于实际窗口大小，Ebitengine 会自动处理缩放
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return config.ScreenWidth, config.ScreenHeight
}

// Close 关闭场景（取消订阅、停止未完成的回复、保存设置）
// 在 ebiten.RunGame 返回后调用
func (a *App) Close() {
	a.sceneManager.Close()
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
