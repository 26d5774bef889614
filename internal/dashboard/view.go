package dashboard

import (
	"github.com/i474232898/weather-dashboard/internal/format"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// HourlySlots is the number of entries in the hourly strip.
const HourlySlots = 8

// View is a render-ready dashboard: every value is a display string.
type View struct {
	Location      string            `json:"location"`
	Date          string            `json:"date"`
	Units         weather.Units     `json:"units"`
	Temperature   string            `json:"temperature"`
	FeelsLike     string            `json:"feelsLike"`
	Humidity      string            `json:"humidity"`
	Wind          string            `json:"wind"`
	Precipitation string            `json:"precipitation"`
	Condition     weather.Condition `json:"condition"`
	Description   string            `json:"description"`
	Icon          string            `json:"icon"`
	Days          []DayView         `json:"days"`
	SelectedDay   int               `json:"selectedDay"`
	Hours         []HourView        `json:"hours"`
}

// DayView is one entry of the multi-day forecast.
type DayView struct {
	Date        string            `json:"date"`
	Weekday     string            `json:"weekday"`
	High        string            `json:"high"`
	Low         string            `json:"low"`
	Condition   weather.Condition `json:"condition"`
	Description string            `json:"description"`
	Icon        string            `json:"icon"`
}

// HourView is one entry of the hourly strip.
type HourView struct {
	Time          string            `json:"time"`
	Temperature   string            `json:"temperature"`
	Wind          string            `json:"wind"`
	Precipitation string            `json:"precipitation"`
	Condition     weather.Condition `json:"condition"`
	Icon          string            `json:"icon"`
}

// Render formats a report. selectedDay picks the bucket whose samples fill
// the hourly strip; out-of-range values fall back to the upcoming samples
// from the current observation onwards.
func Render(r weather.Report, selectedDay int) View {
	cur := r.Current
	offset := r.Forecast.Offset

	v := View{
		Location:      cur.DisplayName(),
		Date:          format.Date(cur.Offset.Wall(cur.Time)),
		Units:         r.Units,
		Temperature:   format.Temperature(cur.Temperature, r.Units),
		FeelsLike:     format.Temperature(cur.FeelsLike, r.Units),
		Humidity:      format.Humidity(cur.Humidity),
		Wind:          format.Wind(cur.WindSpeed, r.Units),
		Precipitation: format.PrecipitationFor(cur.PrecipMM, r.Units),
		Condition:     cur.Condition(),
		Description:   cur.Description,
		Icon:          cur.Icon,
		Days:          make([]DayView, 0, len(r.Days)),
		SelectedDay:   -1,
	}

	for _, d := range r.Days {
		rep := d.Representative
		v.Days = append(v.Days, DayView{
			Date:        d.Date,
			Weekday:     format.Weekday(offset.Wall(rep.Time)),
			High:        format.Degrees(d.Max),
			Low:         format.Degrees(d.Min),
			Condition:   rep.Condition(),
			Description: rep.Description,
			Icon:        rep.Icon,
		})
	}

	var hours []weather.ForecastSample
	if selectedDay >= 0 && selectedDay < len(r.Days) {
		v.SelectedDay = selectedDay
		hours = r.Days[selectedDay].Samples
	} else {
		hours = weather.UpcomingSamples(r.Forecast.Samples, cur.Time, HourlySlots)
	}

	v.Hours = make([]HourView, 0, len(hours))
	for _, s := range hours {
		v.Hours = append(v.Hours, HourView{
			Time:          format.Hour(offset.Wall(s.Time)),
			Temperature:   format.Degrees(s.Temperature),
			Wind:          format.Wind(s.WindSpeed, r.Units),
			Precipitation: format.PrecipitationFor(s.PrecipMM, r.Units),
			Condition:     s.Condition(),
			Icon:          s.Icon,
		})
	}

	return v
}
