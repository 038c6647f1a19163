// Package storage implements the CDP Storage domain: an in-memory cookie
// jar plus key-value local/session storage (spec.md §4.10).
package storage

import (
	"encoding/json"
	"sync"

	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/cdpmsg"
)

// SameSite mirrors the CDP CookieSameSite enum.
type SameSite string

const (
	SameSiteStrict SameSite = "Strict"
	SameSiteLax    SameSite = "Lax"
	SameSiteNone   SameSite = "None"
)

// Cookie is one stored cookie.
type Cookie struct {
	Name     string   `json:"name"`
	Value    string   `json:"value"`
	Domain   string   `json:"domain"`
	Path     string   `json:"path,omitempty"`
	SameSite SameSite `json:"sameSite,omitempty"`
	Secure   bool     `json:"secure,omitempty"`
	HTTPOnly bool     `json:"httpOnly,omitempty"`
}

type cookieKey struct {
	name   string
	domain string
}

// Handler implements the Storage domain.
type Handler struct {
	mu      sync.Mutex
	cookies map[cookieKey]Cookie
	local   map[string]string
	session map[string]string
}

// New creates a Storage handler with empty stores.
func New() *Handler {
	return &Handler{
		cookies: make(map[cookieKey]Cookie),
		local:   make(map[string]string),
		session: make(map[string]string),
	}
}

func (h *Handler) Name() string { return "Storage" }

func (h *Handler) Handle(method string, params json.RawMessage) (any, *cdpmsg.Error) {
	switch method {
	case "getCookies":
		h.mu.Lock()
		cookies := make([]Cookie, 0, len(h.cookies))
		for _, c := range h.cookies {
			cookies = append(cookies, c)
		}
		h.mu.Unlock()
		return map[string][]Cookie{"cookies": cookies}, nil

	case "setCookie":
		var c Cookie
		if err := cdpmsg.DecodeParams(params, &c); err != nil {
			return nil, err
		}
		if c.Name == "" || c.Domain == "" {
			return nil, cdpmsg.InvalidParams("name and domain are required")
		}
		if c.SameSite != "" && c.SameSite != SameSiteStrict && c.SameSite != SameSiteLax && c.SameSite != SameSiteNone {
			return nil, cdpmsg.InvalidParams("sameSite must be Strict, Lax, or None")
		}
		h.mu.Lock()
		h.cookies[cookieKey{name: c.Name, domain: c.Domain}] = c
		h.mu.Unlock()
		return struct{}{}, nil

	case "deleteCookie":
		var p struct {
			Name   string `json:"name"`
			Domain string `json:"domain"`
		}
		if err := cdpmsg.DecodeParams(params, &p); err != nil {
			return nil, err
		}
		if p.Name == "" || p.Domain == "" {
			return nil, cdpmsg.InvalidParams("name and domain are required")
		}
		h.mu.Lock()
		delete(h.cookies, cookieKey{name: p.Name, domain: p.Domain})
		h.mu.Unlock()
		return struct{}{}, nil

	case "clearCookies":
		h.mu.Lock()
		h.cookies = make(map[cookieKey]Cookie)
		h.mu.Unlock()
		return struct{}{}, nil

	case "getDOMStorageItems":
		var p struct {
			IsLocalStorage bool `json:"isLocalStorage"`
		}
		if err := cdpmsg.DecodeParams(params, &p); err != nil {
			return nil, err
		}
		h.mu.Lock()
		store := h.storeFor(p.IsLocalStorage)
		entries := make([][2]string, 0, len(store))
		for k, v := range store {
			entries = append(entries, [2]string{k, v})
		}
		h.mu.Unlock()
		return map[string][][2]string{"entries": entries}, nil

	case "setDOMStorageItem":
		var p struct {
			IsLocalStorage bool   `json:"isLocalStorage"`
			Key            string `json:"key"`
			Value          string `json:"value"`
		}
		if err := cdpmsg.DecodeParams(params, &p); err != nil {
			return nil, err
		}
		if p.Key == "" {
			return nil, cdpmsg.InvalidParams("key is required")
		}
		h.mu.Lock()
		h.storeFor(p.IsLocalStorage)[p.Key] = p.Value
		h.mu.Unlock()
		return struct{}{}, nil

	case "removeDOMStorageItem":
		var p struct {
			IsLocalStorage bool   `json:"isLocalStorage"`
			Key            string `json:"key"`
		}
		if err := cdpmsg.DecodeParams(params, &p); err != nil {
			return nil, err
		}
		h.mu.Lock()
		delete(h.storeFor(p.IsLocalStorage), p.Key)
		h.mu.Unlock()
		return struct{}{}, nil

	case "clearDOMStorage":
		var p struct {
			IsLocalStorage bool `json:"isLocalStorage"`
		}
		if err := cdpmsg.DecodeParams(params, &p); err != nil {
			return nil, err
		}
		h.mu.Lock()
		if p.IsLocalStorage {
			h.local = make(map[string]string)
		} else {
			h.session = make(map[string]string)
		}
		h.mu.Unlock()
		return struct{}{}, nil

	default:
		return nil, cdpmsg.MethodNotFound("Storage." + method)
	}
}

// storeFor must be called with h.mu held.
func (h *Handler) storeFor(isLocal bool) map[string]string {
	if isLocal {
		return h.local
	}
	return h.session
}
