// Package mcp provides the MCP (Model Context Protocol) server implementation.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/xvierd/timebox-cli/internal/domain"
	"github.com/xvierd/timebox-cli/internal/logger"
	"github.com/xvierd/timebox-cli/internal/ports"
)

// Server implements the MCP server using mark3labs/mcp-go.
type Server struct {
	server        *server.MCPServer
	stateProvider ports.MCPStateProvider
	ctx           context.Context
	cancel        context.CancelFunc
	log           *slog.Logger
}

// NewServer creates a new MCP server instance.
func NewServer(stateProvider ports.MCPStateProvider, version string) *Server {
	s := &Server{
		stateProvider: stateProvider,
		log:           logger.ComponentLogger("mcp"),
	}

	s.server = server.NewMCPServer(
		"timebox",
		version,
		server.WithLogging(),
	)

	s.registerTools()

	return s
}

// registerTools registers all available MCP tools.
func (s *Server) registerTools() {
	s.server.AddTool(
		mcp.NewTool(
			"list_timeboxes",
			mcp.WithDescription("List the pending timeboxes, newest first"),
		),
		s.handleListTimeboxes,
	)

	s.server.AddTool(
		mcp.NewTool(
			"create_timebox",
			mcp.WithDescription("Add a timebox to the top of the pending list"),
			mcp.WithString("title", mcp.Required(), mcp.Description("What the timebox is for")),
			mcp.WithNumber("minutes", mcp.Required(), mcp.Description("Allotted minutes, fractions allowed")),
		),
		s.handleCreateTimebox,
	)

	s.server.AddTool(
		mcp.NewTool(
			"remove_timebox",
			mcp.WithDescription("Remove a pending timebox"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Timebox ID, unique ID prefix, or #N for the N-th entry")),
		),
		s.handleRemoveTimebox,
	)

	s.server.AddTool(
		mcp.NewTool(
			"update_timebox",
			mcp.WithDescription("Change the title or minutes of a pending timebox in place"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Timebox ID, unique ID prefix, or #N for the N-th entry")),
			mcp.WithString("title", mcp.Description("New title")),
			mcp.WithNumber("minutes", mcp.Description("New allotted minutes")),
		),
		s.handleUpdateTimebox,
	)

	s.server.AddTool(
		mcp.NewTool(
			"get_active_timebox",
			mcp.WithDescription("Get the active timebox with its countdown state, time left and progress"),
		),
		s.handleGetActive,
	)

	s.server.AddTool(
		mcp.NewTool(
			"edit_active_timebox",
			mcp.WithDescription("Edit the active timebox. A countdown in progress is stopped and reset."),
			mcp.WithString("title", mcp.Description("New title")),
			mcp.WithNumber("minutes", mcp.Description("New allotted minutes")),
		),
		s.handleEditActive,
	)

	s.server.AddTool(
		mcp.NewTool(
			"start_timebox",
			mcp.WithDescription("Start the countdown of the active timebox"),
		),
		s.handleStartActive,
	)

	s.server.AddTool(
		mcp.NewTool(
			"toggle_pause_timebox",
			mcp.WithDescription("Pause a running countdown or resume a paused one"),
		),
		s.handleTogglePause,
	)

	s.server.AddTool(
		mcp.NewTool(
			"stop_timebox",
			mcp.WithDescription("Stop and reset the countdown, recording the run"),
		),
		s.handleStopActive,
	)

	s.server.AddTool(
		mcp.NewTool(
			"get_stats",
			mcp.WithDescription("Get today's run statistics and the most recent runs"),
			mcp.WithNumber("limit", mcp.Description("Number of recent runs to include (default 10)")),
		),
		s.handleGetStats,
	)
}

// Start begins serving MCP requests via stdio.
func (s *Server) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.log.Info("serving on stdio")
	return server.ServeStdio(s.server)
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

// IsRunning returns true if the server is active.
func (s *Server) IsRunning() bool {
	if s.ctx == nil {
		return false
	}
	return s.ctx.Err() == nil
}

// Ensure Server implements ports.MCPHandler.
var _ ports.MCPHandler = (*Server)(nil)

func (s *Server) handleListTimeboxes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.stateProvider.ListTimeboxes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list timeboxes: %w", err)
	}

	items := make([]map[string]interface{}, 0, len(list))
	for i, tb := range list {
		item := timeboxJSON(tb)
		item["index"] = i + 1
		items = append(items, item)
	}

	return jsonResult(map[string]interface{}{
		"timeboxes":   items,
		"total_count": len(items),
	})
}

func (s *Server) handleCreateTimebox(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("title is required: " + err.Error()), nil
	}
	minutes, err := request.RequireFloat("minutes")
	if err != nil {
		return mcp.NewToolResultError("minutes is required: " + err.Error()), nil
	}

	tb, err := s.stateProvider.CreateTimebox(ctx, title, minutes)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create timebox: %v", err)), nil
	}

	s.log.Info("create_timebox", "id", tb.ID)
	return jsonResult(timeboxJSON(tb))
}

func (s *Server) handleRemoveTimebox(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id is required: " + err.Error()), nil
	}

	if err := s.stateProvider.RemoveTimebox(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to remove timebox: %v", err)), nil
	}

	s.log.Info("remove_timebox", "id", id)
	return jsonResult(map[string]interface{}{"removed": id})
}

func (s *Server) handleUpdateTimebox(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id is required: " + err.Error()), nil
	}

	title, minutes := optionalFields(request)
	if title == nil && minutes == nil {
		return mcp.NewToolResultError("nothing to update: pass title or minutes"), nil
	}

	tb, err := s.stateProvider.UpdateTimebox(ctx, id, title, minutes)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update timebox: %v", err)), nil
	}

	return jsonResult(timeboxJSON(tb))
}

func (s *Server) handleGetActive(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state, err := s.stateProvider.GetActive(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get active timebox: %v", err)), nil
	}
	return jsonResult(activeJSON(state))
}

func (s *Server) handleEditActive(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, minutes := optionalFields(request)

	state, err := s.stateProvider.EditActive(ctx, title, minutes)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to edit active timebox: %v", err)), nil
	}
	return jsonResult(activeJSON(state))
}

func (s *Server) handleStartActive(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state, err := s.stateProvider.StartActive(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to start timebox: %v", err)), nil
	}

	s.log.Info("start_timebox", "title", state.Timebox.Title)
	return jsonResult(activeJSON(state))
}

func (s *Server) handleTogglePause(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state, err := s.stateProvider.TogglePauseActive(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to toggle pause: %v", err)), nil
	}
	return jsonResult(activeJSON(state))
}

func (s *Server) handleStopActive(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rec, err := s.stateProvider.StopActive(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to stop timebox: %v", err)), nil
	}

	if rec == nil {
		return jsonResult(map[string]interface{}{"stopped": true, "run": nil})
	}
	return jsonResult(map[string]interface{}{"stopped": true, "run": runJSON(rec)})
}

func (s *Server) handleGetStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := int(request.GetFloat("limit", 10))
	if limit <= 0 {
		limit = 10
	}

	stats, err := s.stateProvider.GetDailyStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	runs, err := s.stateProvider.GetRecentRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent runs: %w", err)
	}

	recent := make([]map[string]interface{}, 0, len(runs))
	for _, run := range runs {
		recent = append(recent, runJSON(run))
	}

	return jsonResult(map[string]interface{}{
		"today": map[string]interface{}{
			"date":          stats.Date.Format("2006-01-02"),
			"runs":          stats.Runs,
			"total_focused": stats.TotalFocused.String(),
			"pauses":        stats.Pauses,
			"overruns":      stats.Overruns,
		},
		"recent_runs": recent,
	})
}

// optionalFields reads the optional title and minutes arguments. Absent
// arguments come back nil.
func optionalFields(request mcp.CallToolRequest) (*string, *float64) {
	args := request.GetArguments()

	var title *string
	if _, ok := args["title"]; ok {
		t := request.GetString("title", "")
		title = &t
	}

	var minutes *float64
	if _, ok := args["minutes"]; ok {
		m := request.GetFloat("minutes", 0)
		minutes = &m
	}

	return title, minutes
}

func timeboxJSON(tb *domain.Timebox) map[string]interface{} {
	return map[string]interface{}{
		"id":      tb.ID,
		"title":   tb.Title,
		"minutes": tb.TotalTimeInMinutes(),
	}
}

func activeJSON(state *ports.ActiveState) map[string]interface{} {
	return map[string]interface{}{
		"timebox":             timeboxJSON(&state.Timebox),
		"is_editable":         state.IsEditable,
		"state":               string(state.Run.State()),
		"is_running":          state.Run.IsRunning,
		"is_paused":           state.Run.IsPaused,
		"pauses_count":        state.Run.PausesCount,
		"elapsed_seconds":     state.Run.ElapsedTimeInSeconds(),
		"time_left":           domain.FormatTimeLeft(state.Display.TimeLeft),
		"minutes_left":        state.Display.MinutesLeft,
		"seconds_left":        state.Display.SecondsLeft,
		"progress_in_percent": state.Display.ProgressInPercent,
	}
}

func runJSON(run *domain.RunRecord) map[string]interface{} {
	data := map[string]interface{}{
		"id":           run.ID,
		"timebox_id":   run.TimeboxID,
		"title":        run.Title,
		"planned":      run.Planned.String(),
		"elapsed":      run.Elapsed.Round(time.Second).String(),
		"pauses_count": run.PausesCount,
		"overrun":      run.Overrun(),
		"started_at":   run.StartedAt.Format("2006-01-02T15:04:05"),
		"stopped_at":   run.StoppedAt.Format("2006-01-02T15:04:05"),
	}
	if run.GitBranch != "" {
		data["git_branch"] = run.GitBranch
	}
	if run.GitCommit != "" {
		data["git_commit"] = run.GitCommit
	}
	return data
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
