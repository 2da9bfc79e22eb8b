package notifier

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"RealizedBands/internal/calculator"
	"RealizedBands/internal/model"
	"RealizedBands/internal/service"
)

func usd(v int64) string { return "$" + humanize.Comma(v) }

func usdPtr(v *int64) string {
	if v == nil {
		return "n/a"
	}
	return usd(*v)
}

// FormatSummary renders the headline numbers and the current band zone.
func FormatSummary(resp *model.ChartResponse) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>Realized Price</b> | %s\n\n", resp.UpdatedAt.UTC().Format("2006-01-02 15:04 MST")))
	b.WriteString(fmt.Sprintf("Price: %s\n", usd(resp.CurrentPrice)))
	b.WriteString(fmt.Sprintf("Realized price: %s (%s)\n", usd(resp.LatestRP), resp.LatestRPDate))
	if ratio, err := calculator.Ratio(resp.CurrentPrice, resp.LatestRP); err == nil {
		b.WriteString(fmt.Sprintf("Price / RP: %.2fx\n", ratio))
	}
	b.WriteString(fmt.Sprintf("STH RP: %s | LTH RP: %s\n\n", usdPtr(resp.LatestSTH), usdPtr(resp.LatestLTH)))

	if len(resp.Data) == 0 {
		b.WriteString("Zone: n/a\n")
		return b.String()
	}
	last := resp.Data[len(resp.Data)-1]
	zone, err := calculator.ClassifyZone(resp.CurrentPrice, last)
	if err != nil {
		b.WriteString("Zone: n/a\n")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("Zone: <b>%s</b>\n", zone.Label()))
	return b.String()
}

// FormatBands lists the band levels of the latest record, highest first.
func FormatBands(resp *model.ChartResponse) string {
	if len(resp.Data) == 0 {
		return "📐 <b>Band levels</b>\n\nno data"
	}
	last := resp.Data[len(resp.Data)-1]

	var b strings.Builder
	b.WriteString(fmt.Sprintf("📐 <b>Band levels</b> | %s\n\n", resp.LatestRPDate))
	levels := []struct {
		label string
		value int64
	}{
		{"3.2x RP", last.RP3_2},
		{"2.4x RP", last.RP2_4},
		{"1.7x RP", last.RP1_7},
		{"1.25x RP", last.RP1_25},
		{"RP", last.RP},
		{"0.8x RP", last.RP0_8},
	}
	for _, l := range levels {
		b.WriteString(fmt.Sprintf("  %-8s %s\n", l.label, usd(l.value)))
	}
	b.WriteString(fmt.Sprintf("\nPrice: %s\n", usd(resp.CurrentPrice)))
	return b.String()
}

// FormatFailure renders an aggregation error for the chat.
func FormatFailure(err error) string {
	switch service.KindOf(err) {
	case service.KindUpstreamInsufficient:
		return "⚠️ <b>Realized price unavailable</b>\n\nUpstream feeds returned too little data. Will retry on the next refresh."
	default:
		return "❌ <b>Realized price update failed</b>\n\nInternal error, see logs."
	}
}
