package service

import (
	"fmt"
	"strings"
	"time"

	"weatherbot.app/models"
)

// maxForecastDays bounds the daily summary, matching the upstream 5-day window
const maxForecastDays = 5

// FormatCurrentWeather renders current conditions as a readable message
func FormatCurrentWeather(w *models.CurrentWeather) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Weather in %s\n", w.Name)
	fmt.Fprintf(&b, "Temperature: %.1f°C (feels like %.1f°C)\n", w.Main.Temp, w.Main.FeelsLike)
	fmt.Fprintf(&b, "Humidity: %.0f%%\n", w.Main.Humidity)
	fmt.Fprintf(&b, "Wind: %.1f m/s\n", w.Wind.Speed)
	fmt.Fprintf(&b, "Pressure: %.0f hPa\n", w.Main.Pressure)
	fmt.Fprintf(&b, "Conditions: %s", w.Description())

	return b.String()
}

// FormatComparison renders a side-by-side comparison of two cities
func FormatComparison(a, b *models.CurrentWeather) string {
	warmer := a.Name
	diff := a.Main.Temp - b.Main.Temp
	if diff < 0 {
		warmer = b.Name
		diff = -diff
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "Weather comparison: %s vs %s\n", a.Name, b.Name)
	fmt.Fprintf(&sb, "Temperature: %s %.1f°C, %s %.1f°C", a.Name, a.Main.Temp, b.Name, b.Main.Temp)
	if diff > 0 {
		fmt.Fprintf(&sb, " (%s is warmer by %.1f°C)", warmer, diff)
	}
	fmt.Fprintf(&sb, "\nHumidity: %s %.0f%%, %s %.0f%%\n", a.Name, a.Main.Humidity, b.Name, b.Main.Humidity)
	fmt.Fprintf(&sb, "Wind: %s %.1f m/s, %s %.1f m/s\n", a.Name, a.Wind.Speed, b.Name, b.Wind.Speed)
	fmt.Fprintf(&sb, "Pressure: %s %.0f hPa, %s %.0f hPa\n", a.Name, a.Main.Pressure, b.Name, b.Main.Pressure)
	fmt.Fprintf(&sb, "Conditions: %s %s, %s %s", a.Name, a.Description(), b.Name, b.Description())

	return sb.String()
}

// FormatDailyForecast renders day-by-day average temperatures for up to five days
func FormatDailyForecast(f *models.Forecast) string {
	type daily struct {
		date  time.Time
		sum   float64
		count int
	}

	var days []*daily
	byDate := make(map[string]*daily)

	for i := range f.List {
		item := &f.List[i]
		date := time.Unix(item.Dt, 0).UTC().Truncate(24 * time.Hour)
		key := date.Format("2006-01-02")

		d, ok := byDate[key]
		if !ok {
			d = &daily{date: date}
			byDate[key] = d
			days = append(days, d)
		}
		d.sum += item.Main.Temp
		d.count++
	}

	var b strings.Builder
	fmt.Fprintf(&b, "5-day forecast for %s", f.City.Name)

	for i, d := range days {
		if i >= maxForecastDays {
			break
		}
		avg := d.sum / float64(d.count)
		fmt.Fprintf(&b, "\n%s %s: %.1f°C", d.date.Format("02.01"), d.date.Weekday(), avg)
	}

	return b.String()
}

// FormatHourlyForecast renders the 3-hour slots for the day at the given
// offset from now (0 = today).
func FormatHourlyForecast(f *models.Forecast, dayOffset int, now time.Time) string {
	target := now.UTC().AddDate(0, 0, dayOffset).Format("2006-01-02")

	var slots []string
	for i := range f.List {
		item := &f.List[i]
		at := time.Unix(item.Dt, 0).UTC()
		if at.Format("2006-01-02") != target {
			continue
		}
		slots = append(slots, fmt.Sprintf("%s: %.1f°C, %s", at.Format("15:04"), item.Main.Temp, item.Description()))
	}

	if len(slots) == 0 {
		return fmt.Sprintf("No forecast data for %s in %s", target, f.City.Name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Detailed forecast for %s, %s\n", f.City.Name, target)
	b.WriteString(strings.Join(slots, "\n"))

	return b.String()
}

// FormatExtendedWeather renders the full report including air quality when
// available.
func FormatExtendedWeather(w *models.CurrentWeather, air *models.AirQuality) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Extended weather for %s\n", w.Name)
	fmt.Fprintf(&b, "Temperature: %.1f°C (feels like %.1f°C)\n", w.Main.Temp, w.Main.FeelsLike)
	fmt.Fprintf(&b, "Humidity: %.0f%%\n", w.Main.Humidity)
	fmt.Fprintf(&b, "Pressure: %.0f hPa\n", w.Main.Pressure)
	fmt.Fprintf(&b, "Wind: %.1f m/s\n", w.Wind.Speed)
	fmt.Fprintf(&b, "Visibility: %.1f km\n", float64(w.Visibility)/1000)
	fmt.Fprintf(&b, "Cloud cover: %d%%\n", w.Clouds.All)
	fmt.Fprintf(&b, "Sunrise: %s, sunset: %s\n",
		time.Unix(w.Sys.Sunrise, 0).UTC().Format("15:04"),
		time.Unix(w.Sys.Sunset, 0).UTC().Format("15:04"))

	if air != nil && len(air.List) > 0 {
		fmt.Fprintf(&b, "Air quality: %s", AirQualityLabel(air.List[0].Main.AQI))
		if o3, ok := air.List[0].Components["o3"]; ok {
			fmt.Fprintf(&b, " (O3: %.2f µg/m³)", o3)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Conditions: %s", w.Description())

	return b.String()
}

// AirQualityLabel maps the upstream 1-5 air quality index to a label
func AirQualityLabel(aqi int) string {
	switch aqi {
	case 1:
		return "Good"
	case 2:
		return "Fair"
	case 3:
		return "Moderate"
	case 4:
		return "Poor"
	case 5:
		return "Very Poor"
	default:
		return "Unknown"
	}
}
