package layout

import "github.com/ByLCY/smartlabel/smartlabel"

// BuildOptions 配置布局阶段所需的依赖，例如测量后端。
type BuildOptions struct {
	// Containers creates the container manager of each style's Manager.
	Containers func() smartlabel.ContainerManager
	// CacheLimit bounds every Manager's advanced measurement cache.
	CacheLimit int
	Debug      DebugOptions
}

// DebugOptions 控制调试相关输出。
type DebugOptions struct {
	CacheStats bool // 在结果 JSON 中输出每个样式的缓存统计
}
