package ingest

import (
	"strings"

	"github.com/mileusna/useragent"

	"tracking-analytics/backend/internal/tracking/domain"
)

// Device classes recorded on traces.
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
)

// ClientInfo is what a user agent string tells us about the visitor.
type ClientInfo struct {
	Browser string
	Device  string
	OS      string
	Bot     bool
}

// ParseUserAgent never fails: unparseable or empty values degrade to domain.UnknownValue.
func ParseUserAgent(s string) ClientInfo {
	s = strings.TrimSpace(s)
	if s == "" {
		return ClientInfo{Browser: domain.UnknownValue, Device: domain.UnknownValue, OS: domain.UnknownValue}
	}
	ua := useragent.Parse(s)
	device := domain.UnknownValue
	switch {
	case ua.Tablet:
		device = DeviceTablet
	case ua.Mobile:
		device = DeviceMobile
	case ua.Desktop:
		device = DeviceDesktop
	}
	return ClientInfo{
		Browser: normalize(ua.Name),
		Device:  device,
		OS:      normalize(ua.OS),
		Bot:     ua.Bot,
	}
}

func normalize(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return domain.UnknownValue
	}
	return v
}
