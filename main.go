package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ByLCY/smartlabel/binding"
	"github.com/ByLCY/smartlabel/dsl"
	"github.com/ByLCY/smartlabel/layout"
	"github.com/ByLCY/smartlabel/logger"
	"github.com/ByLCY/smartlabel/renderer"
	canvasrenderer "github.com/ByLCY/smartlabel/renderer/canvas"
	opentyperenderer "github.com/ByLCY/smartlabel/renderer/opentype"
	"github.com/ByLCY/smartlabel/smartlabel"
)

type config struct {
	input      string
	output     string
	pdf        string
	data       string
	backend    string
	cacheLimit int
	cacheStats bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.input, "in", "examples/labels.sl", "DSL 文件路径")
	flag.StringVar(&cfg.output, "out", "", "JSON 结果输出路径（默认输出到标准输出）")
	flag.StringVar(&cfg.pdf, "pdf", "", "PDF 预览输出路径")
	flag.StringVar(&cfg.data, "data", "", "绑定到 DSL 的 JSON 数据，或以 @ 开头的 JSON 文件路径")
	flag.StringVar(&cfg.backend, "backend", "canvas", "测量后端：canvas 或 opentype")
	flag.IntVar(&cfg.cacheLimit, "cache-limit", 0, "每个样式的测量缓存上限（0 使用默认值）")
	flag.BoolVar(&cfg.cacheStats, "cache-stats", false, "在 JSON 中输出缓存统计")
	flag.Parse()

	if err := run(cfg); err != nil {
		log.Fatalf("拟合标签失败: %v", err)
	}
}

// run 串联解析、数据绑定、拟合与输出。
func run(cfg config) error {
	data, err := loadData(cfg.data)
	if err != nil {
		return err
	}

	file, err := os.Open(cfg.input)
	if err != nil {
		return fmt.Errorf("无法打开 DSL 文件 %s: %w", cfg.input, err)
	}
	defer file.Close()

	doc, err := dsl.Parse(file)
	if err != nil {
		return fmt.Errorf("解析 DSL 失败: %w", err)
	}
	logger.ProgressLogger.Printf("已解析 %s（%d 个段落）", cfg.input, len(doc.Sections))

	baseDir := filepath.Dir(cfg.input)
	canvasR := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{BaseDir: baseDir, Title: doc.Name})
	containers, err := containerFactory(cfg.backend, baseDir, canvasR)
	if err != nil {
		return err
	}

	result, err := layout.Build(doc, data, layout.BuildOptions{
		Containers: containers,
		CacheLimit: cfg.cacheLimit,
		Debug:      layout.DebugOptions{CacheStats: cfg.cacheStats},
	})
	if err != nil {
		return fmt.Errorf("拟合计算失败: %w", err)
	}

	if err := writeResult(result, cfg.output); err != nil {
		return err
	}
	if cfg.pdf != "" {
		if err := writePreview(canvasR, result, cfg.pdf); err != nil {
			return err
		}
		logger.ProgressLogger.Printf("已生成 PDF 预览：%s", cfg.pdf)
	}
	return nil
}

func containerFactory(backend, baseDir string, canvasR *canvasrenderer.Renderer) (func() smartlabel.ContainerManager, error) {
	switch strings.ToLower(backend) {
	case "", "canvas":
		return func() smartlabel.ContainerManager { return canvasR.Containers() }, nil
	case "opentype":
		b := opentyperenderer.NewBackend(opentyperenderer.Options{BaseDir: baseDir})
		return func() smartlabel.ContainerManager { return b.Containers() }, nil
	default:
		return nil, fmt.Errorf("未知的测量后端 %s", backend)
	}
}

func loadData(arg string) (any, error) {
	if arg == "" {
		return nil, nil
	}
	var r io.Reader = strings.NewReader(arg)
	if path, ok := strings.CutPrefix(arg, "@"); ok {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("读取数据文件 %s 失败: %w", path, err)
		}
		defer f.Close()
		r = f
	}
	return binding.Decode(r)
}

func writeResult(result *layout.Result, path string) error {
	if path == "" {
		return layout.EncodeJSON(os.Stdout, result)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, path); err != nil {
		return fmt.Errorf("输出 JSON 失败: %w", err)
	}
	return nil
}

func writePreview(r renderer.Renderer, result *layout.Result, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	pdfBytes, err := r.Render(result.Preview())
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := os.WriteFile(path, pdfBytes, 0o644); err != nil {
		return fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	return nil
}
