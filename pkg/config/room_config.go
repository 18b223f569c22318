package config

import (
	"errors"
	"fmt"

	"github.com/gonewx/slaglegion/pkg/embedded"
	"gopkg.in/yaml.v3"
)

// RoomConfigPath 飞船房间配置的默认路径
const RoomConfigPath = "data/rooms.yaml"

// ShipConfig rooms.yaml 的顶层结构
type ShipConfig struct {
	StartRoom string       `yaml:"start_room"`
	Rooms     []RoomConfig `yaml:"rooms"`
}

// RoomConfig 单个房间
type RoomConfig struct {
	ID          string             `yaml:"id"`
	Name        string             `yaml:"name"`
	Background  string             `yaml:"background"`
	Flight      bool               `yaml:"flight,omitempty"` // 是否为飞行操控房间
	Companion   *CompanionAnchor   `yaml:"companion,omitempty"`
	Transitions []TransitionConfig `yaml:"transitions"`
}

// CompanionAnchor 房间内伴侣头像的位置（按姿势）
type CompanionAnchor struct {
	Poses map[string][2]float64 `yaml:"poses"` // 姿势 -> 左上角屏幕坐标
}

// TransitionConfig 可点击的房间出口，rect 与 polygon 二选一
type TransitionConfig struct {
	To      string       `yaml:"to"`
	Rect    []float64    `yaml:"rect,omitempty"`    // [x, y, w, h]
	Polygon [][2]float64 `yaml:"polygon,omitempty"` // 顶点（屏幕坐标）
}

// LoadShipConfig 读取并校验房间配置
func LoadShipConfig(path string) (*ShipConfig, error) {
	data, err := embedded.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法读取配置文件 %s: %w", path, err)
	}
	return ParseShipConfig(data)
}

// ParseShipConfig 解析并校验 YAML 内容
func ParseShipConfig(data []byte) (*ShipConfig, error) {
	var cfg ShipConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("无法解析房间配置: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 检查房间 ID 唯一、出口目标存在、形状合法
func (c *ShipConfig) Validate() error {
	var errs []error
	ids := make(map[string]bool, len(c.Rooms))
	for i, r := range c.Rooms {
		if r.ID == "" {
			errs = append(errs, fmt.Errorf("room #%d is missing 'id'", i))
			continue
		}
		if ids[r.ID] {
			errs = append(errs, fmt.Errorf("duplicate room id %q", r.ID))
		}
		ids[r.ID] = true
	}

	for _, r := range c.Rooms {
		for j, t := range r.Transitions {
			if !ids[t.To] {
				errs = append(errs, fmt.Errorf("room %q transition #%d targets unknown room %q", r.ID, j, t.To))
			}
			hasRect := len(t.Rect) > 0
			hasPoly := len(t.Polygon) > 0
			switch {
			case hasRect == hasPoly:
				errs = append(errs, fmt.Errorf("room %q transition #%d must define exactly one of rect/polygon", r.ID, j))
			case hasRect && len(t.Rect) != 4:
				errs = append(errs, fmt.Errorf("room %q transition #%d rect needs 4 values, got %d", r.ID, j, len(t.Rect)))
			case hasPoly && len(t.Polygon) < 3:
				errs = append(errs, fmt.Errorf("room %q transition #%d polygon needs at least 3 points", r.ID, j))
			}
		}
	}

	if c.StartRoom == "" {
		errs = append(errs, errors.New("start_room is required"))
	} else if !ids[c.StartRoom] {
		errs = append(errs, fmt.Errorf("start_room %q is not defined", c.StartRoom))
	}
	return errors.Join(errs...)
}

// Room 按 ID 查找房间
func (c *ShipConfig) Room(id string) (*RoomConfig, bool) {
	for i := range c.Rooms {
		if c.Rooms[i].ID == id {
			return &c.Rooms[i], true
		}
	}
	return nil, false
}

// FlightRooms 返回所有标记为飞行房间的 ID
func (c *ShipConfig) FlightRooms() []string {
	var out []string
	for _, r := range c.Rooms {
		if r.Flight {
			out = append(out, r.ID)
		}
	}
	return out
}
