// Package renderer defines the preview surface that draws fitted labels.
package renderer

import (
	"github.com/ByLCY/smartlabel/smartlabel"
	"github.com/ByLCY/smartlabel/style"
)

// Label is one fitted label to preview.
type Label struct {
	Name   string
	Style  style.Style
	Result *smartlabel.Result
}

// Renderer 将拟合结果输出为最终文件，例如 PDF。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(labels []Label) ([]byte, error)
}
