/*
pdf.go - Printable proposal summary

A4 portrait, built with maroto/v2: identification header, resolved-input
summary, the schedule table and a generated-date footer.
*/
package export

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
)

// PDF renders the document as a printable proposal.
func PDF(doc Document) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Vertical).
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addIdentification(m, doc)
	addInputSummary(m, doc)
	addScheduleTable(m, doc)
	addGeneratedFooter(m, doc)

	rendered, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}
	return rendered.GetBytes(), nil
}

// addIdentification adds the title and identification rows.
func addIdentification(m core.Maroto, doc Document) {
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New(doc.Identification.Project, props.Text{
					Size:  16,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
	)

	gray := &props.Color{Red: 80, Green: 80, Blue: 80}
	m.AddRows(
		row.New(7).Add(
			col.New(6).Add(
				text.New("Client: "+doc.Identification.Client, props.Text{
					Size: 9, Align: align.Left, Color: gray,
				}),
			),
			col.New(6).Add(
				text.New("Date: "+doc.Identification.Date, props.Text{
					Size: 9, Align: align.Right, Color: gray,
				}),
			),
		),
		row.New(7).Add(
			col.New(6).Add(
				text.New("Region: "+doc.Identification.Region, props.Text{
					Size: 9, Align: align.Left, Color: gray,
				}),
			),
			col.New(6).Add(
				text.New("Typology: "+doc.Identification.Typology, props.Text{
					Size: 9, Align: align.Right, Color: gray,
				}),
			),
		),
		row.New(4),
	)
}

// addInputSummary adds the resolved-input and result lines.
func addInputSummary(m core.Maroto, doc Document) {
	label := props.Text{Size: 9, Align: align.Left}
	value := props.Text{Size: 9, Align: align.Right}
	bold := props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}

	lines := []struct {
		name  string
		value string
		style props.Text
	}{
		{"Total built area (Sc)", doc.Inputs.Sc.String() + " m²", value},
		{"Productive-area ratio (R)", doc.Inputs.Ratio.String(), value},
		{"Unit benchmark rate (BH)", doc.Inputs.UnitRate.StringFixed(2), value},
		{"Percentage factor (fp)", doc.Inputs.Factor.String(), value},
		{"Surcharge", doc.Inputs.SurchargePercent.String() + "%", value},
		{"Price excl. surcharge", doc.Results.BasePrice.StringFixed(2), bold},
		{"Total price", doc.Results.TotalPrice.StringFixed(2), bold},
	}
	for _, l := range lines {
		m.AddRows(
			row.New(6).Add(
				col.New(8).Add(text.New(l.name, label)),
				col.New(4).Add(text.New(l.value, l.style)),
			),
		)
	}
	m.AddRows(row.New(4))
}

// addScheduleTable adds the stage apportionment table.
func addScheduleTable(m core.Maroto, doc Document) {
	headerBg := &props.Color{Red: 33, Green: 37, Blue: 41}
	headerText := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	headerTextLeft := headerText
	headerTextLeft.Align = align.Left
	headerCell := props.Cell{BackgroundColor: headerBg}

	m.AddRows(
		row.New(8).Add(
			col.New(6).Add(text.New("Stage", headerTextLeft)).WithStyle(&headerCell),
			col.New(3).Add(text.New("Percentage", headerText)).WithStyle(&headerCell),
			col.New(3).Add(text.New("Value", headerText)).WithStyle(&headerCell),
		),
	)

	cellText := props.Text{Size: 8, Align: align.Left}
	numText := props.Text{Size: 8, Align: align.Right}

	total := decimal.Zero
	for i, line := range doc.Schedule {
		var cellStyle *props.Cell
		if i%2 == 1 {
			cellStyle = &props.Cell{BackgroundColor: &props.Color{Red: 245, Green: 245, Blue: 245}}
		}

		stageCol := col.New(6).Add(text.New(line.Stage, cellText))
		pctCol := col.New(3).Add(text.New(line.Percentage.String()+"%", numText))
		valueCol := col.New(3).Add(text.New(line.Value.StringFixed(2), numText))
		if cellStyle != nil {
			stageCol = stageCol.WithStyle(cellStyle)
			pctCol = pctCol.WithStyle(cellStyle)
			valueCol = valueCol.WithStyle(cellStyle)
		}

		m.AddRows(row.New(7).Add(stageCol, pctCol, valueCol))
		total = total.Add(line.Value)
	}

	summaryBg := &props.Color{Red: 240, Green: 240, Blue: 240}
	summaryCell := &props.Cell{BackgroundColor: summaryBg}
	summaryText := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}
	m.AddRows(
		row.New(8).Add(
			col.New(9).Add(text.New("Total", summaryText)).WithStyle(summaryCell),
			col.New(3).Add(text.New(total.StringFixed(2), summaryText)).WithStyle(summaryCell),
		),
	)
}

// addGeneratedFooter adds the generated-date line.
func addGeneratedFooter(m core.Maroto, doc Document) {
	m.AddRows(row.New(6))
	m.AddRows(
		row.New(6).Add(
			col.New(12).Add(
				text.New(
					fmt.Sprintf("Generated on %s", doc.Identification.Date),
					props.Text{
						Size:  7,
						Align: align.Left,
						Color: &props.Color{Red: 140, Green: 140, Blue: 140},
					},
				),
			),
		),
	)
}
