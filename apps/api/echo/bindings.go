package echoapi

import (
	"time"

	"github.com/labstack/echo/v4"
)

const dateLayout = "2006-01-02"

var (
	fromParam = "from"
	toParam   = "to"
)

// DateRange binds optional ?from=YYYY-MM-DD&to=YYYY-MM-DD query params.
// Missing or malformed bounds are left zero; callers pick their defaults.
type DateRange struct {
	From time.Time
	To   time.Time
}

func (dr *DateRange) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	if val, ok := data[fromParam]; ok && len(val) > 0 {
		if t, err := time.Parse(dateLayout, val[0]); err == nil {
			dr.From = t
		}
	}
	if val, ok := data[toParam]; ok && len(val) > 0 {
		if t, err := time.Parse(dateLayout, val[0]); err == nil {
			dr.To = t
		}
	}
}
