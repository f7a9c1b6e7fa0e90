package tools

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	ServerInfoURI      = "server://info"
	ServerInfoMIMEType = "application/json"
)

// ResourceInfo describes one readable resource.
type ResourceInfo struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MIMEType    string `json:"mimeType"`
}

// ToolInfo summarizes a registered tool for the info document.
type ToolInfo struct {
	Name        string            `json:"name"`
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description"`
	Parameters  map[string]string `json:"parameters"`
	Required    []string          `json:"required,omitempty"`
}

// InfoDocument is the body served at server://info.
type InfoDocument struct {
	Name          string         `json:"name"`
	Version       string         `json:"version"`
	Description   string         `json:"description"`
	UptimeSeconds float64        `json:"uptime_seconds"`
	Uptime        string         `json:"uptime"`
	Timestamp     string         `json:"timestamp"`
	Tools         []ToolInfo     `json:"tools"`
	Resources     []ResourceInfo `json:"resources"`
}

type ServerInfoOpts struct {
	Name        string
	Version     string
	Description string
	// Started is when the process came up. Zero means the time NewServerInfo runs.
	Started time.Time
	Now     func() time.Time
}

type ServerInfo struct {
	opts     ServerInfoOpts
	registry *Registry
}

func NewServerInfo(registry *Registry, opts ServerInfoOpts) *ServerInfo {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Started.IsZero() {
		opts.Started = opts.Now()
	}
	return &ServerInfo{opts: opts, registry: registry}
}

// Resource describes the info document itself.
func (s *ServerInfo) Resource() ResourceInfo {
	return ResourceInfo{
		URI:         ServerInfoURI,
		Name:        "server-info",
		Description: "Server identity, uptime and the catalog of available tools",
		MIMEType:    ServerInfoMIMEType,
	}
}

func (s *ServerInfo) Document() InfoDocument {
	now := s.opts.Now()
	uptime := max(now.Sub(s.opts.Started), 0)

	doc := InfoDocument{
		Name:          s.opts.Name,
		Version:       s.opts.Version,
		Description:   s.opts.Description,
		UptimeSeconds: uptime.Seconds(),
		Uptime:        humanDuration(uptime),
		Timestamp:     now.UTC().Format(time.RFC3339),
		Resources:     []ResourceInfo{s.Resource()},
	}
	for _, t := range s.registry.GetTools() {
		doc.Tools = append(doc.Tools, describeTool(t))
	}
	return doc
}

func (s *ServerInfo) JSON() ([]byte, error) {
	return json.MarshalIndent(s.Document(), "", "  ")
}

func describeTool(t Tool) ToolInfo {
	info := ToolInfo{
		Name:        t.Name(),
		Title:       t.Title(),
		Description: t.Description(),
		Parameters:  map[string]string{},
	}
	if schema := t.InputSchema(); schema != nil {
		for name, prop := range schema.Properties {
			if prop == nil {
				continue
			}
			info.Parameters[name] = prop.Description
		}
		info.Required = append(info.Required, schema.Required...)
	}
	return info
}

func humanDuration(d time.Duration) string {
	d = d.Round(time.Second)
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	seconds := (d - minutes*time.Minute) / time.Second

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
