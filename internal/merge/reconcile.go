package merge

import (
	"time"

	"RealizedBands/internal/calculator"
	"RealizedBands/internal/model"
)

// Reconcile folds a live price observed at now into records. A nil live price
// or empty records leave the sequence unchanged. The tick replaces the last
// record unless that record is older than ReplaceAfter, in which case it is
// appended. The input slice is never modified.
func (e *Engine) Reconcile(records []model.CompositeRecord, live *float64, now time.Time, in Inputs) []model.CompositeRecord {
	out := make([]model.CompositeRecord, len(records), len(records)+1)
	copy(out, records)
	if live == nil || len(out) == 0 {
		return out
	}

	last := out[len(out)-1]
	nowMs := now.UnixMilli()

	rp, ok := in.Primary.Lookup(nowMs)
	if !ok {
		rp = float64(last.RP)
	}
	sth := lookup(in.STH, nowMs)
	if sth == nil {
		sth = floatPtr(last.STHRP)
	}
	lth := lookup(in.LTH, nowMs)
	if lth == nil {
		lth = floatPtr(last.LTHRP)
	}
	candidate := e.NewRecord(nowMs, *live, rp, sth, lth)

	if time.Duration(nowMs-last.Date)*time.Millisecond > e.cfg.ReplaceAfter {
		return append(out, candidate)
	}
	out[len(out)-1] = candidate
	return out
}

// CurrentPrice picks the summary price: live tick, else the last positive
// historical price, else the last record's price, else zero.
func CurrentPrice(live *float64, history []model.RawPoint, records []model.CompositeRecord) int64 {
	if live != nil {
		return calculator.Round(*live)
	}
	// placeholder zeros at the tail are skipped the same way Window drops them
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Value > 0 {
			return calculator.Round(history[i].Value)
		}
	}
	if len(records) > 0 {
		return records[len(records)-1].Price
	}
	return 0
}

func floatPtr(v *int64) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}
