package cli

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/devbush/vidtitle/internal/adapters/cli/tui"
	"github.com/devbush/vidtitle/internal/domain"
	"github.com/devbush/vidtitle/internal/i18n"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range r {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// catalogTable lists the selectable models with their numbers
func catalogTable(str *i18n.Strings, entries []domain.CatalogEntry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{strconv.Itoa(e.Number), e.Provider, e.Model})
	}
	return renderTable(
		[]string{str.Get("column_number"), str.Get("column_provider"), str.Get("column_model")},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft},
	)
}

// titlesTable shows the titles produced by a run
func titlesTable(str *i18n.Strings, items []domain.TitledVideo) string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			tui.Truncate(filepath.Base(item.Path), 40),
			item.Title,
			strconv.Itoa(domain.TitleLength(item.Title)),
		})
	}
	return renderTable(
		[]string{str.Get("column_video"), str.Get("column_title"), str.Get("column_length")},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight},
	)
}

func isTerminal(f any) bool {
	file, ok := f.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
