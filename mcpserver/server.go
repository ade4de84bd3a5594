// Package mcpserver exposes lineage, frame and query operations as Model
// Context Protocol tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/teranos/provgraph/errors"
	"github.com/teranos/provgraph/frame"
	grapherror "github.com/teranos/provgraph/graph/error"
	"github.com/teranos/provgraph/internal/app"
	"github.com/teranos/provgraph/logger"
	"github.com/teranos/provgraph/pattern"
	"github.com/teranos/provgraph/prov"
	"github.com/teranos/provgraph/resolve"
	"github.com/teranos/provgraph/types"
	"github.com/teranos/provgraph/version"
)

// MCPServer wraps an App and exposes it via Model Context Protocol
type MCPServer struct {
	app     *app.App
	server  *server.MCPServer
	limiter *rate.Limiter // nil when mcp.rate_limit is 0
	logger  *zap.SugaredLogger
}

// New creates the server and registers its tools. The app must have been
// opened with schemas.
func New(a *app.App, log *zap.SugaredLogger) (*MCPServer, error) {
	if err := a.RequireSchemas(); err != nil {
		return nil, err
	}
	s := &MCPServer{
		app:    a,
		logger: logger.OrNop(log).Named("mcp"),
	}
	if limit := a.Config.MCP.RateLimit; limit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(limit), max(a.Config.MCP.Burst, 1))
	}
	s.server = server.NewMCPServer(
		"provgraph",
		version.Get().Version,
		server.WithToolCapabilities(true),
	)
	s.registerTools()
	return s, nil
}

// ServeStdio serves requests on stdin/stdout until the client disconnects.
func (s *MCPServer) ServeStdio() error {
	return server.ServeStdio(s.server)
}

func (s *MCPServer) registerTools() {
	lineageTool := mcp.NewTool("provgraph_lineage",
		mcp.WithDescription("Build the provenance graph of artifacts and return it as nodes and links"),
		mcp.WithString("ids",
			mcp.Required(),
			mcp.Description("Artifact ids, comma or space separated"),
		),
		mcp.WithString("strategy",
			mcp.Description("ancestors or descendants, optionally with +N radius (default from config)"),
		),
		mcp.WithBoolean("motif",
			mcp.Description("Attach artifact and attachment attributes to nodes and links"),
		),
	)
	s.server.AddTool(lineageTool, s.limited(s.handleLineage))

	framesTool := mcp.NewTool("provgraph_frames",
		mcp.WithDescription("Build the spatial frame graph around artifacts"),
		mcp.WithString("ids",
			mcp.Required(),
			mcp.Description("Artifact ids, comma or space separated"),
		),
		mcp.WithString("strategy",
			mcp.Description("full, parents or children (default: full)"),
		),
	)
	s.server.AddTool(framesTool, s.limited(s.handleFrames))

	pathTool := mcp.NewTool("provgraph_frame_path",
		mcp.WithDescription("Find the frame path between two artifacts and the transform along it"),
		mcp.WithString("from",
			mcp.Required(),
			mcp.Description("Artifact id of the source frame"),
		),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Artifact id of the destination frame"),
		),
		mcp.WithString("point",
			mcp.Description("Optional point x,y,z in the source frame to map into the destination"),
		),
	)
	s.server.AddTool(pathTool, s.limited(s.handleFramePath))

	queryTool := mcp.NewTool("provgraph_query",
		mcp.WithDescription("Match a subgraph pattern against the provenance graph of artifacts"),
		mcp.WithString("ids",
			mcp.Required(),
			mcp.Description("Artifact ids, comma or space separated"),
		),
		mcp.WithString("pattern",
			mcp.Required(),
			mcp.Description("Pattern lines: node <var> [k=v ...], edge <from> <to> [k=v ...], limit <n>"),
		),
		mcp.WithString("strategy",
			mcp.Description("ancestors or descendants, optionally with +N radius (default from config)"),
		),
	)
	s.server.AddTool(queryTool, s.limited(s.handleQuery))

	nearestTool := mcp.NewTool("provgraph_nearest",
		mcp.WithDescription("Find the nearest provenance-related artifact that has a frame path to a target"),
		mcp.WithString("from",
			mcp.Required(),
			mcp.Description("Artifact id whose lineage is searched"),
		),
		mcp.WithString("target",
			mcp.Required(),
			mcp.Description("Artifact id the match must have a frame path to"),
		),
		mcp.WithString("strategy",
			mcp.Description("ancestors or descendants, optionally with +N radius (default from config)"),
		),
		mcp.WithString("type",
			mcp.Description("Only match artifacts of this type URN"),
		),
		mcp.WithString("tag",
			mcp.Description("Only match artifacts carrying this tag"),
		),
	)
	s.server.AddTool(nearestTool, s.limited(s.handleNearest))
}

// limited rejects calls beyond mcp.rate_limit before they reach the store.
func (s *MCPServer) limited(h server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if s.limiter != nil && !s.limiter.Allow() {
			s.logger.Warnw("Tool call rate limited", "tool", request.Params.Name)
			return mcp.NewToolResultError("Too many tool calls - retry shortly or raise mcp.rate_limit"), nil
		}
		return h(ctx, request)
	}
}

// handleLineage handles provgraph_lineage tool calls
func (s *MCPServer) handleLineage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := requireIDs(request, "ids")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	strategy, err := s.app.Strategy(request.GetString("strategy", ""))
	if err != nil {
		return s.toolError(err), nil
	}

	ctx, cancel := s.app.WithTimeout(ctx)
	defer cancel()
	g, err := s.app.Explorer.BuildProvenance(ctx, ids, strategy, prov.Options{Motif: request.GetBool("motif", false)})
	if err != nil {
		return s.toolError(err), nil
	}
	return jsonResult(s.app.Graphs.FromProvenance(g, "lineage "+strategy.String()))
}

// handleFrames handles provgraph_frames tool calls
func (s *MCPServer) handleFrames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := requireIDs(request, "ids")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	strategy, err := frame.ParseStrategy(request.GetString("strategy", "full"))
	if err != nil {
		return s.toolError(err), nil
	}

	ctx, cancel := s.app.WithTimeout(ctx)
	defer cancel()
	g, err := s.app.Frames.Build(ctx, ids, strategy)
	if err != nil {
		return s.toolError(err), nil
	}
	return jsonResult(s.app.Graphs.FromFrames(g, "frames "+strategy.String()))
}

// handleFramePath handles provgraph_frame_path tool calls
func (s *MCPServer) handleFramePath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from, err := request.RequireString("from")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	to, err := request.RequireString("to")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var point *frame.Vec3
	if text := request.GetString("point", ""); text != "" {
		v, err := frame.ParseVec3(text)
		if err != nil {
			return s.toolError(err), nil
		}
		point = &v
	}

	ctx, cancel := s.app.WithTimeout(ctx)
	defer cancel()
	p, err := s.app.Frames.BuildPath(ctx, from, to)
	if err != nil {
		return s.toolError(err), nil
	}
	if p == nil {
		return mcp.NewToolResultText("No frame path from " + from + " to " + to), nil
	}
	return jsonResult(p.Summary(point))
}

// queryResponse lists, per pattern variable, the node bound in each match.
type queryResponse struct {
	Matches  int                 `json:"matches"`
	Bindings map[string][]string `json:"bindings"`
}

// handleQuery handles provgraph_query tool calls
func (s *MCPServer) handleQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := requireIDs(request, "ids")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := request.RequireString("pattern")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	q, err := pattern.Parse(text)
	if err != nil {
		return s.toolError(err), nil
	}
	strategy, err := s.app.Strategy(request.GetString("strategy", ""))
	if err != nil {
		return s.toolError(err), nil
	}

	ctx, cancel := s.app.WithTimeout(ctx)
	defer cancel()
	result, err := s.app.Explorer.QueryProvenance(ctx, ids, q, strategy, pattern.NewMatcher())
	if err != nil {
		return s.toolError(err), nil
	}

	resp := queryResponse{Matches: result.Matches(), Bindings: make(map[string][]string, len(result.Bindings))}
	for v, nodes := range result.Bindings {
		bound := make([]string, len(nodes))
		for i, n := range nodes {
			bound[i] = n.ID()
		}
		resp.Bindings[v] = bound
	}
	return jsonResult(resp)
}

// nearestResponse is the resolved artifact with its frame path to the target.
type nearestResponse struct {
	Artifact *types.Artifact   `json:"artifact"`
	Hops     int               `json:"hops"`
	Path     frame.PathSummary `json:"path"`
}

// handleNearest handles provgraph_nearest tool calls
func (s *MCPServer) handleNearest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from, err := request.RequireString("from")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	target, err := request.RequireString("target")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	strategy, err := s.app.Strategy(request.GetString("strategy", ""))
	if err != nil {
		return s.toolError(err), nil
	}

	var preds []resolve.Predicate
	if typeURN := request.GetString("type", ""); typeURN != "" {
		preds = append(preds, resolve.TypeIs(typeURN))
	}
	if tag := request.GetString("tag", ""); tag != "" {
		preds = append(preds, resolve.HasTag(tag))
	}

	ctx, cancel := s.app.WithTimeout(ctx)
	defer cancel()
	m, err := s.app.Resolver.NearestRelated(ctx, from, target, strategy, resolve.All(preds...))
	if err != nil {
		return s.toolError(err), nil
	}
	if m == nil {
		return mcp.NewToolResultText("No related artifact of " + from + " has a frame path to " + target), nil
	}
	return jsonResult(nearestResponse{Artifact: m.Artifact, Hops: m.Hops, Path: m.Path.Summary(nil)})
}

// toolError classifies err, logs it and returns its user-facing message.
func (s *MCPServer) toolError(err error) *mcp.CallToolResult {
	ge := grapherror.Classify(err)
	s.logger.Warnw("Tool call failed", ge.ToLogFields()...)
	return mcp.NewToolResultError(ge.Summary())
}

func requireIDs(request mcp.CallToolRequest, name string) ([]string, error) {
	text, err := request.RequireString(name)
	if err != nil {
		return nil, err
	}
	ids := app.SplitIDs(text)
	if len(ids) == 0 {
		return nil, errors.Newf("%s: no artifact ids given", name)
	}
	return ids, nil
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode tool result")
	}
	return mcp.NewToolResultText(strings.TrimSpace(string(data))), nil
}
