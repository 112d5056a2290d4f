// Package mcp exposes the analysis pipeline as MCP tools over stdio,
// so editor-embedded assistants can submit incidents and read ranked
// hypotheses without shelling out to the CLI.
package mcp

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"obelisk/internal/format"
	"obelisk/internal/wiring"
	"obelisk/pkg/pipeline"
)

// Server wraps the MCP SDK server around an assembled runtime.
type Server struct {
	MCPServer *sdkmcp.Server
	rt        *pipeline.Runtime
}

// NewServer builds the MCP surface over the given runtime.
func NewServer(rt *pipeline.Runtime, version string) *Server {
	s := &Server{rt: rt}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "obelisk", Version: version},
		nil,
	)
	s.registerTools()
	return s
}

// Run serves the MCP protocol until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "analyze_incident",
		Description: "Run root-cause analysis on an incident payload (JSON). Returns ranked hypotheses, extracted signals, and a synthesis narrative.",
	}, s.handleAnalyzeIncident)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_agents",
		Description: "List the registered investigation agents in dispatch order.",
	}, s.handleListAgents)
}

// --- Tool input/output types ---

type analyzeIncidentInput struct {
	IncidentJSON string `json:"incident_json" jsonschema:"incident payload as a JSON string (deployment_id, logs, metrics, recent_commits, config_snapshot)"`
}

type analyzeIncidentOutput struct {
	ExecutionID         string               `json:"execution_id"`
	RankedHypotheses    []pipeline.Hypothesis `json:"ranked_hypotheses"`
	Summary             string               `json:"summary,omitempty"`
	KeyFinding          string               `json:"key_finding,omitempty"`
	RequiresHumanReview bool                 `json:"requires_human_review"`
	Report              string               `json:"report"`
}

type listAgentsInput struct{}

type listAgentsOutput struct {
	Agents []string `json:"agents"`
	Total  int      `json:"total"`
}

// --- Tool handlers ---

func (s *Server) handleAnalyzeIncident(ctx context.Context, _ *sdkmcp.CallToolRequest, input analyzeIncidentInput) (*sdkmcp.CallToolResult, analyzeIncidentOutput, error) {
	incident, err := wiring.DecodeIncident(strings.NewReader(input.IncidentJSON))
	if err != nil {
		return nil, analyzeIncidentOutput{}, fmt.Errorf("analyze_incident: %w", err)
	}

	result := s.rt.Execute(ctx, incident, nil)

	out := analyzeIncidentOutput{
		ExecutionID:         result.ExecutionID,
		RankedHypotheses:    result.RankedHypotheses,
		RequiresHumanReview: result.RequiresHumanReview,
		Report:              format.Report(format.Markdown, result),
	}
	if result.Synthesis != nil {
		out.Summary = result.Synthesis.Summary
		out.KeyFinding = result.Synthesis.KeyFinding
	}
	return nil, out, nil
}

func (s *Server) handleListAgents(_ context.Context, _ *sdkmcp.CallToolRequest, _ listAgentsInput) (*sdkmcp.CallToolResult, listAgentsOutput, error) {
	var names []string
	for _, ag := range s.rt.Registry().All() {
		names = append(names, ag.Name())
	}
	return nil, listAgentsOutput{Agents: names, Total: len(names)}, nil
}
