package export

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// SheetName is the single sheet of every exported workbook.
const SheetName = "Menu"

// Menu is the export view of one catalog menu.
type Menu struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	SubMenus    []SubMenu `json:"submenus"`
}

type SubMenu struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Dishes      []Dish `json:"dishes"`
}

type Dish struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

// DecodeCatalog parses the JSON payload handed to the queue.
func DecodeCatalog(payload []byte) ([]Menu, error) {
	var menus []Menu
	if err := json.Unmarshal(payload, &menus); err != nil {
		return nil, fmt.Errorf("export: decode catalog: %w", err)
	}
	return menus, nil
}

var columnWidths = []struct {
	col   string
	width float64
}{
	{"A", 4}, {"B", 20}, {"C", 30}, {"D", 40}, {"E", 210}, {"F", 10},
}

const (
	menuColor    = "FF9900"
	subMenuColor = "99CC00"
	dishColor    = "FFFF99"
)

// WriteWorkbook renders the catalog as a stepped outline: menus start in
// column A, submenus in B, dishes in C. Each row begins with the position of
// the entity within its parent.
func WriteWorkbook(path string, menus []Menu) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("export: rename sheet: %w", err)
	}
	for _, cw := range columnWidths {
		if err := f.SetColWidth(SheetName, cw.col, cw.col, cw.width); err != nil {
			return fmt.Errorf("export: column width %s: %w", cw.col, err)
		}
	}

	w := &sheetWriter{f: f}
	menuStyle := w.style(menuColor)
	subMenuStyle := w.style(subMenuColor)
	dishStyle := w.style(dishColor)

	row := 0
	for mi, m := range menus {
		row++
		w.row(row, 1, menuStyle, mi+1, m.Title, m.Description)

		for si, sm := range m.SubMenus {
			row++
			w.row(row, 2, subMenuStyle, si+1, sm.Title, sm.Description)

			for di, d := range sm.Dishes {
				row++
				w.row(row, 3, dishStyle, di+1, d.Title, d.Description, d.Price.StringFixed(2))
			}
		}
	}

	if w.err != nil {
		return fmt.Errorf("export: write rows: %w", w.err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("export: save %s: %w", path, err)
	}
	return nil
}

// sheetWriter keeps the first error so row rendering reads linearly.
type sheetWriter struct {
	f   *excelize.File
	err error
}

func (w *sheetWriter) style(color string) int {
	if w.err != nil {
		return 0
	}
	id, err := w.f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "0000FF", Style: 6},
			{Type: "bottom", Color: "0000FF", Style: 6},
		},
	})
	w.err = err
	return id
}

func (w *sheetWriter) row(row, firstCol, style int, values ...any) {
	for i, v := range values {
		if w.err != nil {
			return
		}
		var cell string
		cell, w.err = excelize.CoordinatesToCellName(firstCol+i, row)
		if w.err != nil {
			return
		}
		if w.err = w.f.SetCellValue(SheetName, cell, v); w.err != nil {
			return
		}
		w.err = w.f.SetCellStyle(SheetName, cell, cell, style)
	}
}
