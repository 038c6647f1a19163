// Package emulation implements the CDP Emulation domain: device metrics,
// user-agent, and geolocation overrides (spec.md §4.10).
package emulation

import (
	"encoding/json"
	"sync"

	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/cdpmsg"
)

// DeviceMetrics is the override Emulation.setDeviceMetricsOverride stores.
type DeviceMetrics struct {
	Width             int     `json:"width"`
	Height            int     `json:"height"`
	DeviceScaleFactor float64 `json:"deviceScaleFactor"`
	Mobile            bool    `json:"mobile"`
}

// Geolocation is the override Emulation.setGeolocationOverride stores.
type Geolocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
}

// Handler implements the Emulation domain.
type Handler struct {
	mu            sync.Mutex
	deviceMetrics *DeviceMetrics
	userAgent     *string
	geolocation   *Geolocation
}

// New creates an Emulation handler with no overrides set.
func New() *Handler {
	return &Handler{}
}

func (h *Handler) Name() string { return "Emulation" }

func (h *Handler) Handle(method string, params json.RawMessage) (any, *cdpmsg.Error) {
	switch method {
	case "setDeviceMetricsOverride":
		var m DeviceMetrics
		if err := cdpmsg.DecodeParams(params, &m); err != nil {
			return nil, err
		}
		if m.Width <= 0 || m.Height <= 0 {
			return nil, cdpmsg.InvalidParams("width and height are required and must be positive")
		}
		h.mu.Lock()
		h.deviceMetrics = &m
		h.mu.Unlock()
		return struct{}{}, nil

	case "clearDeviceMetricsOverride":
		h.mu.Lock()
		h.deviceMetrics = nil
		h.mu.Unlock()
		return struct{}{}, nil

	case "setUserAgentOverride":
		var p struct {
			UserAgent string `json:"userAgent"`
		}
		if err := cdpmsg.DecodeParams(params, &p); err != nil {
			return nil, err
		}
		if p.UserAgent == "" {
			return nil, cdpmsg.InvalidParams("userAgent is required")
		}
		h.mu.Lock()
		h.userAgent = &p.UserAgent
		h.mu.Unlock()
		return struct{}{}, nil

	case "setGeolocationOverride":
		var g Geolocation
		if err := cdpmsg.DecodeParams(params, &g); err != nil {
			return nil, err
		}
		h.mu.Lock()
		h.geolocation = &g
		h.mu.Unlock()
		return struct{}{}, nil

	case "clearGeolocationOverride":
		h.mu.Lock()
		h.geolocation = nil
		h.mu.Unlock()
		return struct{}{}, nil

	default:
		return nil, cdpmsg.MethodNotFound("Emulation." + method)
	}
}

// HasDeviceMetricsOverride reports whether a device metrics override is
// currently active, for tests verifying the set/clear round trip.
func (h *Handler) HasDeviceMetricsOverride() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.deviceMetrics != nil
}
