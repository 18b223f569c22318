// embed.go - 资源嵌入声明
// 必须放在项目根目录（与 data/ 同级），//go:embed 只能嵌入当前包目录及其子目录的文件
//
// 帧动画和房间背景（assets/）体积较大，不嵌入，运行时从磁盘读取。
package main

import "embed"

//go:embed data/companion_animations.yaml data/rooms.yaml data/chat_script.yaml
var dataFS embed.FS
