package controller

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"sesoko-server/internal/modules/tank/types"
)

var dateLayouts = []string{"20060102", "2006-01-02"}

// parseDay returns the date query parameter in loc, or today when it is absent.
func parseDay(r *http.Request, today time.Time, loc *time.Location) (time.Time, error) {
	s := r.URL.Query().Get("date")
	if s == "" {
		return today, nil
	}
	for _, layout := range dateLayouts {
		if d, err := time.ParseInLocation(layout, s, loc); err == nil {
			return d, nil
		}
	}
	return time.Time{}, errors.New("invalid 'date' (expected YYYYMMDD or YYYY-MM-DD)")
}

// parseTank returns the tank query parameter or def.
func parseTank(r *http.Request, def string) (string, error) {
	q := r.URL.Query()
	if !q.Has("tank") {
		return def, nil
	}
	s := q.Get("tank")
	if err := types.ValidateTank(s); err != nil {
		return "", fmt.Errorf("'tank': %w", err)
	}
	return s, nil
}

// imageQuery carries date and tank through to the image routes embedded in the page.
func imageQuery(day time.Time, tank string) string {
	q := url.Values{}
	q.Set("date", day.Format("20060102"))
	if tank != "" {
		q.Set("tank", tank)
	}
	return "?" + q.Encode()
}
