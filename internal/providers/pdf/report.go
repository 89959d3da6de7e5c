package pdf

import (
	"bytes"
	"context"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

func (p *PDFProvider) GenerateReport(ctx context.Context, report ReportData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(30,
		text.NewCol(8, "CityLights", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, report.Title, props.Text{
			Size:  14,
			Align: align.Right,
			Top:   3,
		}),
	)

	m.AddRow(15,
		col.New(12).Add(
			text.New("Range: "+report.RangeLabel, props.Text{Top: 0}),
			text.New("Generated: "+report.GeneratedAt, props.Text{Top: 4}),
		),
	)

	m.AddRow(10,
		text.NewCol(3, "Period", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Income", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(3, "Expense", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(3, "Net", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, row := range report.Rows {
		m.AddRow(8,
			text.NewCol(3, row.Period, props.Text{Size: 9}),
			text.NewCol(3, row.Income, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(3, row.Expense, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(3, row.Net, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(10,
		text.NewCol(3, "Total", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, report.TotalIncome, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(3, report.TotalExpense, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(3, report.TotalNet, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
