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

func (p *PDFProvider) GenerateInvoice(ctx context.Context, invoice InvoiceData) (io.Reader, error) {
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
		text.NewCol(4, "Payroll Invoice", props.Text{
			Size:  14,
			Align: align.Right,
			Top:   3,
		}),
	)

	m.AddRow(25,
		col.New(6).Add(
			text.New("Invoice number: "+invoice.InvoiceNumber, props.Text{Top: 0}),
			text.New("Reference: "+invoice.Reference, props.Text{Top: 4}),
			text.New("Date paid: "+invoice.DatePaid, props.Text{Top: 8}),
		),
		col.New(6).Add(
			text.New("Paid to", props.Text{Style: fontstyle.Bold}),
			text.New(invoice.WorkerName, props.Text{Top: 5}),
			text.New("Authorized by: "+invoice.PaidBy, props.Text{Top: 9}),
		),
	)

	m.AddRow(10,
		text.NewCol(8, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(4, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	m.AddRow(10,
		text.NewCol(8, "Salary payment for "+invoice.Period, props.Text{Size: 9}),
		text.NewCol(4, invoice.Amount, props.Text{Size: 9, Align: align.Right}),
	)

	m.AddRow(10,
		col.New(6),
		text.NewCol(3, "Total paid", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, invoice.Amount, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
