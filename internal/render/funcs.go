package render

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/behnamazizi/localnet-bookmarks/internal/model"
	"github.com/behnamazizi/localnet-bookmarks/internal/order"
)

// BuildFuncMap returns the helpers available to page templates.
func BuildFuncMap() template.FuncMap {
	return template.FuncMap{
		"join":      strings.Join,
		"lower":     strings.ToLower,
		"upper":     strings.ToUpper,
		"slug":      order.ToSlug,
		"add":       func(a, b int) int { return a + b },
		"iconStyle": iconStyle,
		"count":     count,
	}
}

// iconStyle positions the shared sprite for one icon and tints the tile with
// the icon's dominant colour.
func iconStyle(icon *model.Icon) template.CSS {
	if icon == nil {
		return ""
	}
	style := fmt.Sprintf("background-position:%dpx %dpx", -icon.X, -icon.Y)
	if icon.Color != "" {
		style += ";background-color:" + icon.Color
	}
	return template.CSS(style)
}

// count totals the sites across categories.
func count(cats []model.Category) int {
	n := 0
	for _, c := range cats {
		n += len(c.Sites)
	}
	return n
}
