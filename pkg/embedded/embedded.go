// Package embedded 提供游戏资源的统一访问接口
//
// 数据文件（data/ 下的 YAML 配置）通过 embed.FS 编译进二进制，
// 帧动画图片（assets/ 下的 PNG）体积较大，默认从磁盘目录读取。
// 两者都以 fs.FS 形式注入，测试可以直接传入 fstest.MapFS。
//
// 使用前必须调用 Init() 初始化。
package embedded

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// ErrNotInitialized 在 Init() 之前访问资源时返回
var ErrNotInitialized = errors.New("embedded package not initialized, call Init() first")

var (
	assetsFS    fs.FS
	dataFS      fs.FS
	initialized bool
)

// Init 注入资源文件系统
// 必须在 main() 开始时、任何资源加载之前调用
//
// 参数：
//   - assets: 以 "assets/" 为根前缀的文件系统（通常是 os.DirFS 包装）
//   - data: 以 "data/" 为根前缀的文件系统（通常是根目录 embed.go 中的 embed.FS）
func Init(assets, data fs.FS) {
	assetsFS = assets
	dataFS = data
	initialized = true
}

// IsInitialized 返回 embedded 包是否已初始化
func IsInitialized() bool {
	return initialized
}

// pick 根据路径前缀选择文件系统，并返回标准化后的路径
func pick(path string) (fs.FS, string, error) {
	if !initialized {
		return nil, "", ErrNotInitialized
	}

	// embed.FS 与 fs.FS 约定都使用正斜杠
	path = filepath.ToSlash(path)
	path = strings.TrimPrefix(path, "./")

	switch {
	case strings.HasPrefix(path, "assets/"):
		if assetsFS == nil {
			return nil, "", fmt.Errorf("assets filesystem not configured: %s", path)
		}
		return assetsFS, path, nil
	case strings.HasPrefix(path, "data/"):
		if dataFS == nil {
			return nil, "", fmt.Errorf("data filesystem not configured: %s", path)
		}
		return dataFS, path, nil
	}
	return nil, "", fmt.Errorf("unknown resource path prefix: %s (must start with 'assets/' or 'data/')", path)
}

// Open 打开资源文件
// 路径必须以 "assets/" 或 "data/" 开头
func Open(path string) (fs.File, error) {
	fsys, p, err := pick(path)
	if err != nil {
		return nil, err
	}
	return fsys.Open(p)
}

// ReadFile 读取资源文件内容
func ReadFile(path string) ([]byte, error) {
	fsys, p, err := pick(path)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(fsys, p)
}

// Exists 检查资源文件或目录是否存在
func Exists(path string) bool {
	_, err := Stat(path)
	return err == nil
}

// Glob 匹配资源文件，结果按字典序排列（fs.Glob 保证）
func Glob(pattern string) ([]string, error) {
	fsys, p, err := pick(pattern)
	if err != nil {
		return nil, err
	}
	return fs.Glob(fsys, p)
}

// ReadDir 读取目录内容
func ReadDir(path string) ([]fs.DirEntry, error) {
	fsys, p, err := pick(path)
	if err != nil {
		return nil, err
	}
	return fs.ReadDir(fsys, p)
}

// Stat 获取文件信息
func Stat(path string) (fs.FileInfo, error) {
	fsys, p, err := pick(path)
	if err != nil {
		return nil, err
	}
	return fs.Stat(fsys, p)
}
