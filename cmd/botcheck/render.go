package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/IliaW/bots-checker/internal/model"
)

const (
	outputTable = "table"
	outputJson  = "json"
)

func render(w io.Writer, format, url string, results []model.CheckResult) error {
	if format == outputJson {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(model.CheckSiteResponse{Url: url, Results: results})
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "COMPANY\tBOT\tACCESS\tSTATUS\tROBOTS.TXT\tROBOTS META\tTITLE\tLOAD TIME")
	for _, r := range results {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Company, r.BotName, r.Access, statusText(r.StatusCode), r.RobotsTxt, r.RobotsMeta,
			titleText(r.Title), loadTimeText(r.LoadTimeSeconds))
	}

	return tw.Flush()
}

func statusText(statusCode *int) string {
	if statusCode == nil {
		return "-"
	}
	return strconv.Itoa(*statusCode)
}

func titleText(title *string) string {
	if title == nil {
		return "-"
	}
	return *title
}

func loadTimeText(seconds *float64) string {
	if seconds == nil {
		return "-"
	}
	return fmt.Sprintf("%.2fs", *seconds)
}
