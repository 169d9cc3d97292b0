package pdf

import (
	"context"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type MarotoRenderer struct{}

func New() Renderer {
	return &MarotoRenderer{}
}

func (r *MarotoRenderer) Render(ctx context.Context, data DocumentData) ([]byte, error) {
	_ = ctx

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, data.Title, props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(18,
		col.New(6).Add(
			text.New("Number: "+data.Number, props.Text{Top: 0}),
			text.New("Date of issue: "+data.IssueDate, props.Text{Top: 4}),
			text.New(dueLine(data.DueDate), props.Text{Top: 8}),
		),
		col.New(6).Add(
			text.New("Bill to", props.Text{Style: fontstyle.Bold}),
			text.New(data.ClientName, props.Text{Top: 4}),
			text.New(data.Recipient, props.Text{Top: 8}),
		),
	)

	m.AddRow(8,
		text.NewCol(7, "Description", props.Text{Style: fontstyle.Bold}),
		text.NewCol(1, "Qty", props.Text{Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Unit price", props.Text{Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Align: align.Right}),
	)

	for _, item := range data.Items {
		m.AddRow(6,
			text.NewCol(7, item.Description),
			text.NewCol(1, item.Quantity, props.Text{Align: align.Right}),
			text.NewCol(2, item.UnitPrice, props.Text{Align: align.Right}),
			text.NewCol(2, item.Total, props.Text{Align: align.Right}),
		)
	}

	m.AddRow(6,
		col.New(8),
		text.NewCol(2, "Subtotal", props.Text{Align: align.Right}),
		text.NewCol(2, data.Subtotal, props.Text{Align: align.Right}),
	)
	m.AddRow(6,
		col.New(8),
		text.NewCol(2, "Tax", props.Text{Align: align.Right}),
		text.NewCol(2, data.TaxAmount, props.Text{Align: align.Right}),
	)
	m.AddRow(8,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, data.Total, props.Text{Style: fontstyle.Bold, Align: align.Right}),
	)

	if data.Notes != "" {
		m.AddRow(12,
			text.NewCol(12, data.Notes, props.Text{Top: 4, Size: 9}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func dueLine(due string) string {
	if due == "" {
		return ""
	}
	return "Date due: " + due
}
