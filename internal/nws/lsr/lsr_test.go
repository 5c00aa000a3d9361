package lsr

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/nws-text-ingest/internal/nws"
)

var productNow = time.Date(2005, 4, 30, 3, 5, 0, 0, time.UTC)

func reportLines(clock, typetext, city, latlon, date, mag, county, state, source string) string {
	return fmt.Sprintf("%-12s%-17s%-24s%s\n%-12s%-17s%-19s%-2s   %s\n",
		clock, typetext, city, latlon, date, mag, county, state, source)
}

func lsrProduct(tz string, body string) string {
	return "NWUS54 KJAN 300300\n" +
		"LSRJAN\n\n" +
		"PRELIMINARY LOCAL STORM REPORT\n" +
		"NATIONAL WEATHER SERVICE JACKSON MS\n" +
		"1000 PM " + tz + " FRI APR 29 2005\n\n" +
		"..TIME...   ...EVENT...      ...CITY LOCATION...     ...LAT.LON...\n" +
		"..DATE...   ....MAG....      ..COUNTY LOCATION..ST.. ...SOURCE....\n" +
		"            ..REMARKS..\n\n" +
		body +
		"\n&&\n\n$$\n"
}

func parse(t *testing.T, text string) (*Bulletin, *nws.Product) {
	t.Helper()
	prod, err := nws.ParseProduct(text, productNow)
	require.NoError(t, err)
	b, err := NewParser().Parse(prod)
	require.NoError(t, err)
	return b, prod
}

func TestParseHailReport(t *testing.T) {
	body := reportLines("0914 PM", "HAIL", "SHAW", "33.60N 90.77W",
		"04/29/2005", "1.00 INCH", "BOLIVAR", "MS", "EMERGENCY MNGR") +
		"\n            DIME TO QUARTER SIZE HAIL.\n"
	b, prod := parse(t, lsrProduct("CST", body))

	require.Len(t, b.Reports, 1)
	r := b.Reports[0]
	assert.Equal(t, "HAIL", r.TypeText)
	assert.Equal(t, "H", r.DBType)
	require.NotNil(t, r.Magnitude.Value)
	assert.InDelta(t, 1.00, *r.Magnitude.Value, 1e-9)
	assert.Equal(t, "INCH", r.Magnitude.Units)
	assert.Empty(t, r.Magnitude.Qualifier)
	assert.Equal(t, "SHAW", r.City)
	assert.Equal(t, "BOLIVAR", r.County)
	assert.Equal(t, "MS", r.State)
	assert.Equal(t, "EMERGENCY MNGR", r.Source)
	assert.Equal(t, orb.Point{-90.77, 33.60}, r.Geometry)
	assert.Equal(t, time.Date(2005, 4, 29, 21, 14, 0, 0, time.UTC), r.ValidLocal)
	assert.Equal(t, time.Date(2005, 4, 30, 2, 14, 0, 0, time.UTC), r.ValidUTC)
	assert.Equal(t, "DIME TO QUARTER SIZE HAIL.", r.Remark)
	assert.Equal(t, "JAN", r.WFO)
	assert.False(t, r.Duplicate)
	assert.False(t, r.Delayed())
	assert.Empty(t, prod.Warnings)
}

func TestParseMultipleReports(t *testing.T) {
	body := reportLines("0914 PM", "HAIL", "SHAW", "33.60N 90.77W",
		"04/29/2005", "1.00 INCH", "BOLIVAR", "MS", "EMERGENCY MNGR") +
		"\n" +
		reportLines("0930 PM", "TSTM WND DMG", "4 SSW CLEVELAND", "33.70N 90.75W",
			"04/29/2005", "", "BOLIVAR", "MS", "LAW ENFORCEMENT") +
		"\n            TREES DOWN ON HIGHWAY 61.\n            POWER LINES ALSO DOWN.\n"
	b, _ := parse(t, lsrProduct("CST", body))

	require.Len(t, b.Reports, 2)
	assert.Equal(t, "TSTM WND DMG", b.Reports[1].TypeText)
	assert.Equal(t, "D", b.Reports[1].DBType)
	assert.Nil(t, b.Reports[1].Magnitude.Value)
	assert.Equal(t, "TREES DOWN ON HIGHWAY 61. POWER LINES ALSO DOWN.", b.Reports[1].Remark)
	assert.Equal(t, "4 SSW CLEVELAND", b.Reports[1].City)
	for _, r := range b.Reports {
		assert.GreaterOrEqual(t, r.Geometry[1], -90.0)
		assert.LessOrEqual(t, r.Geometry[1], 90.0)
		assert.GreaterOrEqual(t, r.Geometry[0], -180.0)
		assert.LessOrEqual(t, r.Geometry[0], 180.0)
	}
}

func TestParseDuplicateInSummary(t *testing.T) {
	block := reportLines("0914 PM", "HAIL", "SHAW", "33.60N 90.77W",
		"04/29/2005", "1.00 INCH", "BOLIVAR", "MS", "EMERGENCY MNGR")
	text := strings.Replace(lsrProduct("CST", block+"\n"+block),
		"PRELIMINARY LOCAL STORM REPORT", "PRELIMINARY LOCAL STORM REPORT...SUMMARY", 1)
	b, _ := parse(t, text)

	require.Len(t, b.Reports, 2)
	assert.True(t, b.Reports[0].Summary)
	assert.False(t, b.Reports[0].Duplicate)
	assert.True(t, b.Reports[1].Duplicate)
}

func TestParseShortReport(t *testing.T) {
	body := "0914 PM     HAIL             SHAW                    33.60N 90.77W\n"
	b, prod := parse(t, lsrProduct("CST", body))

	assert.Empty(t, b.Reports)
	require.Len(t, prod.Warnings, 1)
	assert.Contains(t, prod.Warnings[0], nws.ErrShortReport.Error())
}

func TestParseUnknownTimezone(t *testing.T) {
	body := reportLines("0914 PM", "HAIL", "SHAW", "33.60N 90.77W",
		"04/29/2005", "1.00 INCH", "BOLIVAR", "MS", "EMERGENCY MNGR")
	b, prod := parse(t, lsrProduct("XYZ", body))

	require.Len(t, b.Reports, 1)
	assert.True(t, b.Reports[0].ValidUTC.IsZero())
	require.NotEmpty(t, prod.Warnings)
	assert.Contains(t, prod.Warnings[0], "ambiguous time")
}

func TestParseIceStormHeuristic(t *testing.T) {
	body := reportLines("0600 AM", "FREEZING RAIN", "OXFORD", "34.37N 89.52W",
		"04/29/2005", "", "LAFAYETTE", "MS", "TRAINED SPOTTER") +
		"\n            3/8THS OF AN INCH OF ICE ON TREES.\n"
	b, _ := parse(t, lsrProduct("CST", body))

	require.Len(t, b.Reports, 1)
	require.NotNil(t, b.Reports[0].Magnitude.Value)
	assert.InDelta(t, 0.375, *b.Reports[0].Magnitude.Value, 0.001)
	assert.Equal(t, "INCH", b.Reports[0].Magnitude.Units)
}

func TestIceAccumulation(t *testing.T) {
	tests := []struct {
		remark string
		want   float64
		ok     bool
	}{
		{"3/8THS OF AN INCH OF ICE", 0.375, true},
		{"ABOUT .25 INCH OF ICE", 0.25, true},
		{"0.1 INCHES ACCUMULATION", 0.1, true},
		{"TWO TENTHS OF AN INCH", 0.2, true},
		{"A QUARTER INCH OF ICE", 0.25, true},
		{"THREE QUARTERS OF AN INCH", 0.75, true},
		{"HALF INCH ICE ON POWER LINES", 0.5, true},
		{"1 1/2 INCHES OF ICE", 1.5, true},
		{"LIGHT GLAZE ON ROADS", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.remark, func(t *testing.T) {
			got, ok := iceAccumulation(tt.remark)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestParseMagnitude(t *testing.T) {
	tests := []struct {
		text      string
		value     float64
		hasValue  bool
		qualifier string
		units     string
		ok        bool
	}{
		{"1.00 INCH", 1.0, true, "", "INCH", true},
		{"M1.75 INCH", 1.75, true, "M", "INCH", true},
		{"E60 MPH", 60, true, "E", "MPH", true},
		{"M55 KTS", 55, true, "M", "KTS", true},
		{"U70 MPH", 70, true, "U", "MPH", true},
		{"EF2", 2, true, "E", "F", true},
		{"6.5 INCHES", 6.5, true, "", "INCHES", true},
		{"100 ACRE", 100, true, "", "ACRE", true},
		{"TRACE", 0, false, "", "TRACE", true},
		{"", 0, false, "", "", true},
		{"ZZZ", 0, false, "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			m, ok := ParseMagnitude(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.qualifier, m.Qualifier)
			assert.Equal(t, tt.units, m.Units)
			if tt.hasValue {
				require.NotNil(t, m.Value)
				assert.InDelta(t, tt.value, *m.Value, 1e-9)
			} else {
				assert.Nil(t, m.Value)
			}
		})
	}
}

func TestMagStringRoundTrip(t *testing.T) {
	tests := []struct {
		typetext, text, value string
	}{
		{"HAIL", "M1.00 INCH", "1.00"},
		{"HAIL", "E1.30 INCH", "1.30"},
		{"TSTM WND GST", "E60 MPH", "60"},
		{"TSTM WND GST", "M58 MPH", "58"},
		{"MARINE TSTM WIND", "M40 KTS", "40.00"},
		{"SNOW", "E6.50 INCH", "6.50"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			m, ok := ParseMagnitude(tt.text)
			require.True(t, ok)
			r := &Report{TypeText: tt.typetext, Magnitude: m}
			s := r.MagString()
			assert.Contains(t, s, m.Qualifier+tt.value)
			assert.Contains(t, s, m.Units)
		})
	}

	m, _ := ParseMagnitude("EF2")
	assert.Equal(t, "of EF2 ", (&Report{TypeText: "TORNADO", Magnitude: m}).MagString())
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "4 SSW DES Moines", TitleCase("4 SSW DES MOINES"))
	assert.Equal(t, "Shaw", TitleCase("SHAW"))
	assert.Equal(t, "2 NNE Cleveland", TitleCase("2 NNE CLEVELAND"))
}

func TestDBTypeUnknown(t *testing.T) {
	_, ok := DBType("SPACE WEATHER")
	assert.False(t, ok)
	code, ok := DBType("MARINE TSTM WIND")
	require.True(t, ok)
	land, _ := DBType("MARINE THUNDERSTORM WIND")
	assert.Equal(t, code, land)
}

func TestNotification(t *testing.T) {
	body := reportLines("0914 PM", "HAIL", "SHAW", "33.60N 90.77W",
		"04/29/2005", "1.00 INCH", "BOLIVAR", "MS", "EMERGENCY MNGR") +
		"\n            DIME TO QUARTER SIZE HAIL.\n"
	b, _ := parse(t, lsrProduct("CST", body))
	require.Len(t, b.Reports, 1)

	n := b.Reports[0].Notification(nws.DefaultBaseURL)

	assert.Equal(t, "JAN: Shaw [Bolivar Co, MS] Emergency Mngr reports hail of quarter size (1.00 INCH) at 9:14 PM CST -- DIME TO QUARTER SIZE HAIL. "+
		nws.DefaultBaseURL+"200504300300-KJAN-NWUS54-LSRJAN", n.Plain)
	assert.Contains(t, n.HTML, `<a href="`+nws.DefaultBaseURL+`200504300300-KJAN-NWUS54-LSRJAN">`)
	assert.Equal(t, []string{"LSR.JAN", "LSR.ALL", "LSR.HAIL"}, n.Extras.ChannelList())
	assert.Equal(t, "POINT(-90.77 33.6)", n.Extras.Geometry)
	assert.Equal(t, "200504300300-KJAN-NWUS54-LSRJAN", n.Extras.ProductID)
	assert.LessOrEqual(t, len([]rune(n.Extras.Twitter)), nws.MaxTwitterLength)
	assert.True(t, strings.HasPrefix(n.Extras.Twitter, "At 9:14 PM CST, Shaw"))
}

func TestDelayedReport(t *testing.T) {
	r := &Report{
		ValidUTC:     time.Date(2005, 4, 27, 2, 0, 0, 0, time.UTC),
		ProductValid: productNow,
		TypeText:     "TORNADO",
		WFO:          "JAN",
	}
	assert.True(t, r.Delayed())
	assert.Contains(t, r.Notification("u/").Plain, "[delayed report]")
}

func newTx(t *testing.T) (*sql.Tx, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectBegin()
	tx, err := db.Begin()
	require.NoError(t, err)
	return tx, mock, func() { db.Close() }
}

func TestReportSQL(t *testing.T) {
	v := 1.0
	r := &Report{
		ValidUTC: time.Date(2005, 4, 30, 2, 14, 0, 0, time.UTC),
		TypeText: "HAIL", DBType: "H",
		Magnitude: Magnitude{Value: &v, Units: "INCH"},
		City:      "SHAW", County: "BOLIVAR", State: "MS", Source: "EMERGENCY MNGR",
		Geometry: orb.Point{-90.77, 33.6}, WFO: "JAN",
	}

	t.Run("inserts into yearly table", func(t *testing.T) {
		tx, mock, done := newTx(t)
		defer done()
		mock.ExpectExec(`INSERT INTO lsrs_2005`).
			WithArgs(r.ValidUTC, "H", 1.0, "SHAW", "BOLIVAR", "MS", "EMERGENCY MNGR", "",
				"SRID=4326;POINT(-90.77 33.6)", "JAN", "HAIL").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, r.SQL(context.Background(), tx))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate is skipped", func(t *testing.T) {
		tx, mock, done := newTx(t)
		defer done()
		dup := *r
		dup.Duplicate = true

		require.NoError(t, dup.SQL(context.Background(), tx))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert error is wrapped", func(t *testing.T) {
		tx, mock, done := newTx(t)
		defer done()
		mock.ExpectExec(`INSERT INTO lsrs_2005`).WillReturnError(fmt.Errorf("relation does not exist"))

		err := r.SQL(context.Background(), tx)
		assert.ErrorContains(t, err, "lsrs_2005")
	})
}
