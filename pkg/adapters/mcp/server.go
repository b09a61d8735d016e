package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/sketchtrail"
	"github.com/aretw0/sketchtrail/internal/logging"
	"github.com/aretw0/sketchtrail/pkg/domain"
)

// SessionsURI is the resource listing stored sessions.
const SessionsURI = "sketchtrail://sessions"

// StrokesResponse is returned by every drawing tool.
type StrokesResponse struct {
	SessionID string          `json:"session_id" jsonschema_description:"The session the strokes belong to"`
	Applied   bool            `json:"applied" jsonschema_description:"Whether the call changed the drawing"`
	CanUndo   bool            `json:"can_undo" jsonschema_description:"Whether undo is available"`
	CanRedo   bool            `json:"can_redo" jsonschema_description:"Whether redo is available"`
	Strokes   []domain.Stroke `json:"strokes" jsonschema_description:"The visible strokes, oldest first"`
}

// SessionArgs selects a session.
type SessionArgs struct {
	SessionID string `json:"session_id"`
}

// DrawStrokeArgs are the arguments of draw_stroke.
type DrawStrokeArgs struct {
	SessionID string  `json:"session_id"`
	Points    string  `json:"points"`
	Tool      string  `json:"tool,omitempty"`
	Color     string  `json:"color,omitempty"`
	Width     float64 `json:"width,omitempty"`
}

// ImportArgs are the arguments of import_graph.
type ImportArgs struct {
	SessionID string `json:"session_id"`
	Graph     string `json:"graph"`
}

// Server exposes a sketchtrail Service as an MCP server.
type Server struct {
	service   *sketchtrail.Service
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(service *sketchtrail.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		service:   service,
		logger:    logger,
		mcpServer: server.NewMCPServer("sketchtrail-mcp", strings.TrimSpace(sketchtrail.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func sessionParam() mcp.ToolOption {
	return mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier"))
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("draw_stroke",
		mcp.WithDescription("Draw one complete stroke through the given points."),
		sessionParam(),
		mcp.WithString("points", mcp.Required(), mcp.Description(`JSON array of points, e.g. [{"x":1,"y":1},{"x":2,"y":2}]`)),
		mcp.WithString("tool", mcp.Description("pen, highlighter or eraser (optional)")),
		mcp.WithString("color", mcp.Description("Stroke color such as #ff0000 (optional)")),
		mcp.WithNumber("width", mcp.Description("Brush size (optional)")),
		mcp.WithOutputSchema[StrokesResponse](),
	), mcp.NewStructuredToolHandler(s.handleDrawStroke))

	s.mcpServer.AddTool(mcp.NewTool("clear",
		mcp.WithDescription("Remove every stroke. Undo brings them back."),
		sessionParam(),
		mcp.WithOutputSchema[StrokesResponse](),
	), mcp.NewStructuredToolHandler(s.handleClear))

	s.mcpServer.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Step back one action."),
		sessionParam(),
		mcp.WithOutputSchema[StrokesResponse](),
	), mcp.NewStructuredToolHandler(s.handleUndo))

	s.mcpServer.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Return to the most recently undone state."),
		sessionParam(),
		mcp.WithOutputSchema[StrokesResponse](),
	), mcp.NewStructuredToolHandler(s.handleRedo))

	s.mcpServer.AddTool(mcp.NewTool("get_strokes",
		mcp.WithDescription("Get the visible strokes of a session."),
		sessionParam(),
		mcp.WithOutputSchema[StrokesResponse](),
	), mcp.NewStructuredToolHandler(s.handleGetStrokes))

	s.mcpServer.AddTool(mcp.NewTool("export_graph",
		mcp.WithDescription("Export the provenance graph of a session as JSON."),
		sessionParam(),
	), s.handleExport)

	s.mcpServer.AddTool(mcp.NewTool("import_graph",
		mcp.WithDescription("Replace a session with a previously exported provenance graph."),
		sessionParam(),
		mcp.WithString("graph", mcp.Required(), mcp.Description("Serialized graph JSON")),
		mcp.WithOutputSchema[StrokesResponse](),
	), mcp.NewStructuredToolHandler(s.handleImport))
}

func (s *Server) update(ctx context.Context, sessionID string, fn func(context.Context, *sketchtrail.Session) (bool, error)) (StrokesResponse, error) {
	if sessionID == "" {
		return StrokesResponse{}, fmt.Errorf("session_id is required")
	}
	var resp StrokesResponse
	err := s.service.Do(ctx, sessionID, func(ctx context.Context, sess *sketchtrail.Session) error {
		applied, err := fn(ctx, sess)
		if err != nil {
			return err
		}
		resp, err = snapshot(sessionID, sess, applied)
		return err
	})
	return resp, err
}

func snapshot(sessionID string, sess *sketchtrail.Session, applied bool) (StrokesResponse, error) {
	strokes, err := sess.CurrentStrokes()
	if err != nil {
		return StrokesResponse{}, err
	}
	return StrokesResponse{
		SessionID: sessionID,
		Applied:   applied,
		CanUndo:   sess.CanUndo(),
		CanRedo:   sess.CanRedo(),
		Strokes:   strokes,
	}, nil
}

func (s *Server) handleDrawStroke(ctx context.Context, request mcp.CallToolRequest, args DrawStrokeArgs) (StrokesResponse, error) {
	var points []domain.Point
	if err := json.Unmarshal([]byte(args.Points), &points); err != nil {
		return StrokesResponse{}, fmt.Errorf("invalid points: %w", err)
	}
	return s.update(ctx, args.SessionID, func(ctx context.Context, sess *sketchtrail.Session) (bool, error) {
		if args.Tool != "" {
			if err := sess.SetTool(domain.Tool(args.Tool)); err != nil {
				return false, err
			}
		}
		if args.Color != "" {
			if err := sess.SetColor(args.Color); err != nil {
				return false, err
			}
		}
		if args.Width != 0 {
			if err := sess.SetBrushSize(args.Width); err != nil {
				return false, err
			}
		}
		return true, sess.Stroke(ctx, points)
	})
}

func (s *Server) handleClear(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (StrokesResponse, error) {
	return s.update(ctx, args.SessionID, func(ctx context.Context, sess *sketchtrail.Session) (bool, error) {
		return true, sess.Clear(ctx)
	})
}

func (s *Server) handleUndo(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (StrokesResponse, error) {
	return s.update(ctx, args.SessionID, func(ctx context.Context, sess *sketchtrail.Session) (bool, error) {
		return sess.Undo(ctx)
	})
}

func (s *Server) handleRedo(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (StrokesResponse, error) {
	return s.update(ctx, args.SessionID, func(ctx context.Context, sess *sketchtrail.Session) (bool, error) {
		return sess.Redo(ctx)
	})
}

func (s *Server) handleGetStrokes(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (StrokesResponse, error) {
	var resp StrokesResponse
	err := s.service.View(ctx, args.SessionID, func(sess *sketchtrail.Session) error {
		var err error
		resp, err = snapshot(args.SessionID, sess, false)
		return err
	})
	return resp, err
}

func (s *Server) handleImport(ctx context.Context, request mcp.CallToolRequest, args ImportArgs) (StrokesResponse, error) {
	var sg domain.SerializedGraph
	if err := json.Unmarshal([]byte(args.Graph), &sg); err != nil {
		return StrokesResponse{}, fmt.Errorf("invalid graph: %w", err)
	}
	if err := s.service.Import(ctx, args.SessionID, &sg); err != nil {
		s.logger.Warn("MCP import rejected", "session_id", args.SessionID, "err", err)
		return StrokesResponse{}, err
	}
	return s.handleGetStrokes(ctx, request, SessionArgs{SessionID: args.SessionID})
}

func (s *Server) handleExport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")
	sg, err := s.service.Export(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("export failed: %v", err)), nil
	}
	jsonBytes, err := json.Marshal(sg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("export failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(SessionsURI, "Stored Sessions",
		mcp.WithMIMEType("application/json"),
	), s.handleSessions)
}

func (s *Server) handleSessions(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	ids, err := s.service.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	jsonBytes, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      SessionsURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
