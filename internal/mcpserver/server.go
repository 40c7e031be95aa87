// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes paperterm tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hey-codes/paperterm/internal/apperr"
	"github.com/hey-codes/paperterm/internal/artwork"
	"github.com/hey-codes/paperterm/internal/control"
	"github.com/hey-codes/paperterm/internal/dashboard"
	"github.com/hey-codes/paperterm/internal/storage"
)

const (
	remindersFormatURI = "paperterm://reminders-format"
	dashboardURI       = "paperterm://dashboard.png"
)

// ArtworkStore is the writable artwork directory.
type ArtworkStore interface {
	storage.Provider
	Write(path string, content []byte) error
}

var _ ArtworkStore = (*storage.FS)(nil)

// Config wires a Server. Artwork tools are registered only when Artwork is
// set.
type Config struct {
	Control *control.Service
	Catalog *artwork.Catalog
	Artwork ArtworkStore
	Version string
}

// Server wraps the MCP server with paperterm tools.
type Server struct {
	mcp     *server.MCPServer
	svc     *control.Service
	catalog *artwork.Catalog
	artwork ArtworkStore

	allowLoopback bool // tests serve artwork from httptest
}

// New creates a new MCP server with all paperterm tools registered.
func New(cfg Config) *Server {
	s := &Server{svc: cfg.Control, catalog: cfg.Catalog, artwork: cfg.Artwork}
	if s.catalog == nil && s.artwork != nil {
		s.catalog = artwork.NewCatalog(s.artwork, nil)
	}

	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	s.mcp = server.NewMCPServer(
		"paperterm",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("render_dashboard",
		mcp.WithDescription("Render the e-ink dashboard now and write it to the output file. "+
			"Returns the render summary (checksum, artwork, weather status, reminder count)."),
	), s.renderDashboard)

	s.mcp.AddTool(mcp.NewTool("get_status",
		mcp.WithDescription("Report the latest render, the total render count, recent render history and the zone layout."),
		mcp.WithNumber("recent", mcp.Description("Number of history rows to include (default 5)")),
	), s.getStatus)

	s.mcp.AddTool(mcp.NewTool("list_reminders",
		mcp.WithDescription("List the reminders shown on the dashboard, in file order."),
	), s.listReminders)

	s.mcp.AddTool(mcp.NewTool("add_reminder",
		mcp.WithDescription("Append a pending reminder to the reminders file. "+
			"See the paperterm://reminders-format resource for the file syntax."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Reminder text")),
		mcp.WithString("priority", mcp.Description("normal (default) or high"), mcp.Enum("normal", "high")),
	), s.addReminder)

	if s.artwork != nil {
		s.mcp.AddTool(mcp.NewTool("list_artwork",
			mcp.WithDescription("List the artwork images in rotation, or those of one category directory."),
			mcp.WithString("category", mcp.Description("Optional category directory")),
		), s.listArtwork)

		s.mcp.AddTool(mcp.NewTool("add_artwork",
			mcp.WithDescription("Add an image to the artwork directory from an http(s) URL or a base64 data URI. "+
				"Supported formats: png, jpg, jpeg, gif, bmp, webp."),
			mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or data:image/...;base64,... URI")),
			mcp.WithString("filename", mcp.Description("Optional file name; derived from the URL when empty")),
			mcp.WithString("category", mcp.Description("Optional category directory")),
		), s.addArtwork)
	}

	s.mcp.AddResource(
		mcp.NewResource(remindersFormatURI, "Reminders File Format",
			mcp.WithResourceDescription("Syntax of the plain-text reminders file."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readRemindersFormat,
	)
	s.mcp.AddResource(
		mcp.NewResource(dashboardURI, "Latest Dashboard",
			mcp.WithResourceDescription("The most recently rendered dashboard PNG."),
			mcp.WithMIMEType("image/png"),
		),
		s.readDashboard,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) renderDashboard(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.svc.Render(ctx, dashboard.TriggerMCP)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res), nil
}

func (s *Server) getStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recent := req.GetInt("recent", 5)
	if recent < 0 {
		return mcp.NewToolResultError("recent must not be negative"), nil
	}
	st, err := s.svc.Status(ctx, recent)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(st), nil
}

func (s *Server) listReminders(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.svc.ListReminders(ctx)
	if err != nil {
		if errors.Is(err, apperr.ErrUnavailable) {
			return mcp.NewToolResultError("reminders are disabled"), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(list) == 0 {
		return mcp.NewToolResultText("no reminders"), nil
	}
	lines := make([]string, len(list))
	for i, r := range list {
		lines[i] = r.Prefix() + " " + r.Text
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) addReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	r, err := s.svc.AddReminder(ctx, text, req.GetString("priority", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("added: %s %s", r.Prefix(), r.Text)), nil
}

func (s *Server) listArtwork(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var paths []string
	if category := req.GetString("category", ""); category != "" {
		files, err := s.artwork.List(category)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		for _, f := range files {
			paths = append(paths, f.Path)
		}
	} else {
		files, err := s.catalog.Files()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		for _, f := range files {
			paths = append(paths, f.Path)
		}
	}
	if len(paths) == 0 {
		return mcp.NewToolResultText("no artwork found"), nil
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) readRemindersFormat(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      remindersFormatURI,
			MIMEType: "text/markdown",
			Text:     RemindersFormat,
		},
	}, nil
}

func (s *Server) readDashboard(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	res, err := s.svc.Latest()
	if err != nil {
		return nil, fmt.Errorf("mcpserver: no dashboard rendered yet: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.BlobResourceContents{
			URI:      dashboardURI,
			MIMEType: "image/png",
			Blob:     base64.StdEncoding.EncodeToString(res.PNG),
		},
	}, nil
}
