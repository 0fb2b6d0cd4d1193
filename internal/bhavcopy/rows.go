package bhavcopy

// BhavRow is the typed view of one cleaned bhavcopy row used by comparisons
type BhavRow struct {
	Symbol         string
	InstrumentName string
	Series         string
	InstrumentType string
	Close          float64
	Volume         float64
}

// Rows reads the comparison fields of every row. Rows lacking a numeric
// close or volume are skipped.
func Rows(t *Table) []BhavRow {
	out := make([]BhavRow, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		r := t.Row(i)
		cls, vol := r.Get("ClsPric"), r.Get("TtlTradgVol")
		if cls.Kind != KindNumber || vol.Kind != KindNumber {
			continue
		}
		out = append(out, BhavRow{
			Symbol:         r.Text("TckrSymb"),
			InstrumentName: r.Text("FinInstrmNm"),
			Series:         r.Text("SctySrs"),
			InstrumentType: r.Text("FinInstrmTp"),
			Close:          cls.Num,
			Volume:         vol.Num,
		})
	}
	return out
}

// EquityColumns is the column selection returned by the bhavcopy endpoint
var EquityColumns = []ColumnAlias{
	{Column: "TckrSymb", As: "symbol"},
	{Column: "OpnPric", As: "open"},
	{Column: "HghPric", As: "high"},
	{Column: "LwPric", As: "low"},
	{Column: "ClsPric", As: "close"},
	{Column: "TtlTradgVol", As: "totalVolume"},
	{Column: "TtlTrfVal", As: "totalValue"},
}
