package config

import (
	"os"
	"testing"

	"github.com/gonewx/slaglegion/pkg/embedded"
)

func TestMain(m *testing.M) {
	// 测试直接读取仓库中的 data/ 目录
	embedded.Init(nil, os.DirFS("../.."))
	os.Exit(m.Run())
}
