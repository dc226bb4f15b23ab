package usecase

import (
	"html/template"
	"strings"

	"github.com/vitos/coin_dashboard/internal/domain"
	"github.com/vitos/coin_dashboard/internal/format"
	"github.com/vitos/coin_dashboard/internal/view"
)

// BuildChangesTable renders the fixed six-column period-change table.
// Cells without a value show "N/A" and carry no color.
func BuildChangesTable(changes domain.PeriodChanges) (template.HTML, error) {
	cells := make([]view.ChangeCell, 0, len(domain.TablePeriods))
	for _, p := range domain.TablePeriods {
		v := changes.Get(p)
		cell := view.ChangeCell{
			Header: strings.ToUpper(string(p)),
			Value:  format.Percent(v, 2),
		}
		if cell.Value != format.NA {
			cell.Color = domain.Classify(v).Color
		}
		cells = append(cells, cell)
	}
	return view.ChangesTable(cells)
}
