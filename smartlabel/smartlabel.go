// Package smartlabel is the public surface of the label fitting engine.
//
// A Manager binds one text style at a time, fetches the style's measurement
// context from a ContainerManager and answers fitting requests against it.
// An uninitialized or disposed Manager answers every request with nil.
package smartlabel

import (
	"errors"
	"fmt"

	"github.com/ByLCY/smartlabel/fitting"
	"github.com/ByLCY/smartlabel/logger"
	"github.com/ByLCY/smartlabel/markup"
	"github.com/ByLCY/smartlabel/metrics"
	"github.com/ByLCY/smartlabel/style"
)

// ErrNoContext marks a result computed without a usable measurement context.
var ErrNoContext = errors.New("smartlabel: 无法获取测量上下文")

// Result is the layout decision for one request.
type Result = fitting.Result

// ContainerManager owns the measurement contexts, one per style. Get reports
// false when the environment cannot measure the style.
type ContainerManager interface {
	Get(s style.Style, cacheLimit int) (*metrics.Context, bool)
	Dispose()
}

// Options tunes a Manager.
type Options struct {
	// MaxCacheLimit bounds the advanced measurement cache of every style.
	// Non-positive values select metrics.DefaultMaxCacheLimit.
	MaxCacheLimit int
}

// Manager fits text for one style at a time. Not safe for concurrent use.
type Manager struct {
	id          string
	containers  ContainerManager
	useEllipses bool
	cacheLimit  int

	init  bool
	bound bool
	style style.Style
	ctx   *metrics.Context
}

// New creates a manager. An empty id or a nil container manager yields an
// uninitialized manager whose operations all return nil.
func New(id string, containers ContainerManager, useEllipses bool, opts Options) *Manager {
	limit := opts.MaxCacheLimit
	if limit <= 0 {
		limit = metrics.DefaultMaxCacheLimit
	}
	return &Manager{
		id:          id,
		containers:  containers,
		useEllipses: useEllipses,
		cacheLimit:  limit,
		init:        id != "" && containers != nil,
	}
}

// ID returns the identifier the manager was created with.
func (m *Manager) ID() string { return m.id }

// Initialized reports whether the manager accepts requests.
func (m *Manager) Initialized() bool { return m != nil && m.init }

// CacheLimit returns the effective advanced cache bound.
func (m *Manager) CacheLimit() int { return m.cacheLimit }

// Style returns the bound style.
func (m *Manager) Style() style.Style { return m.style }

// Context returns the bound measurement context, nil when none is usable.
func (m *Manager) Context() *metrics.Context { return m.ctx }

// SetStyle binds s and fetches its measurement context. Passing the bound
// style again while a context is held does nothing. It returns the manager,
// or nil when the manager is not initialized.
func (m *Manager) SetStyle(s style.Style) *Manager {
	if !m.Initialized() {
		return nil
	}
	s = s.Normalize()
	if m.bound && s == m.style && m.ctx != nil {
		return m
	}
	m.style = s
	m.bound = true
	m.ctx = nil
	ctx, ok := m.containers.Get(s, m.cacheLimit)
	if !ok || ctx == nil {
		logger.WarningLogger.Printf("[%s] 样式 %s 无可用的测量上下文", m.id, s.Key())
		return m
	}
	m.ctx = ctx
	return m
}

// UseEllipsesOnOverflow toggles the ellipsis on truncation. It returns the
// manager, or nil when the manager is not initialized.
func (m *Manager) UseEllipsesOnOverflow(on bool) *Manager {
	if !m.Initialized() {
		return nil
	}
	m.useEllipses = on
	return m
}

// GetSmartText fits text in a maxW×maxH box. A nil result means the manager is
// not initialized; a result with Err set means no context could be obtained.
func (m *Manager) GetSmartText(text string, maxW, maxH float64, noWrap bool) *Result {
	if !m.Initialized() {
		return nil
	}
	if !m.bound {
		m.SetStyle(style.Style{})
	}
	if m.ctx == nil {
		// 环境不可用时重试一次，容器可能已就绪
		if ctx, ok := m.containers.Get(m.style, m.cacheLimit); ok && ctx != nil {
			m.ctx = ctx
		}
	}
	if m.ctx == nil {
		return &Result{
			Text:      text,
			OriText:   text,
			MaxWidth:  maxW,
			MaxHeight: maxH,
			Err:       ErrNoContext,
		}
	}
	return fitting.Fit(m.ctx, fitting.Request{
		Text:        text,
		MaxWidth:    maxW,
		MaxHeight:   maxH,
		NoWrap:      noWrap,
		UseEllipses: m.useEllipses,
	})
}

// GetSmartValue is GetSmartText for arbitrary values: nil becomes the empty
// string, anything else its default formatting.
func (m *Manager) GetSmartValue(v any, maxW, maxH float64, noWrap bool) *Result {
	return m.GetSmartText(stringify(v), maxW, maxH, noWrap)
}

// GetOriSize returns the unconstrained size of text. With detailed set the
// per-character widths are included.
func (m *Manager) GetOriSize(text string, detailed bool) *fitting.OriSize {
	if !m.Initialized() {
		return nil
	}
	if !m.bound {
		m.SetStyle(style.Style{})
	}
	if m.ctx == nil {
		return nil
	}
	ori, err := fitting.Measure(m.ctx, text, detailed)
	if err != nil {
		logger.WarningLogger.Printf("[%s] %v", m.id, err)
		return nil
	}
	return &ori
}

// Dispose releases the context and the container manager. Every later call
// returns nil.
func (m *Manager) Dispose() {
	if !m.Initialized() {
		return
	}
	m.ctx = nil
	m.bound = false
	m.containers.Dispose()
	m.containers = nil
	m.init = false
}

// TextToLines splits the display text of a result into its lines.
func TextToLines(r *Result) []string {
	if r == nil {
		return nil
	}
	return markup.SplitBreaks(r.Text)
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}
