// Package mcp exposes the extraction pipeline as MCP tools over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/abdulrahman2018/PDF-DataExtractor/internal/config"
	"github.com/abdulrahman2018/PDF-DataExtractor/internal/descriptions"
	"github.com/abdulrahman2018/PDF-DataExtractor/internal/export"
	"github.com/abdulrahman2018/PDF-DataExtractor/internal/fields"
	"github.com/abdulrahman2018/PDF-DataExtractor/internal/pdf"
	"github.com/abdulrahman2018/PDF-DataExtractor/internal/pdf/security"
	"github.com/abdulrahman2018/PDF-DataExtractor/internal/pipeline"
)

// DirectoryProcessor runs extraction over a directory
type DirectoryProcessor interface {
	ProcessDirectory(ctx context.Context, dir string) (*pipeline.Result, error)
}

// TextClassifier classifies raw text into records
type TextClassifier interface {
	ClassifyText(text string, acc *fields.Accumulator) int
}

// FileValidator reports on the structure of one PDF
type FileValidator interface {
	Validate(path string) *pdf.ValidationResult
}

// WorkbookWriter saves records as a spreadsheet
type WorkbookWriter interface {
	WriteFile(path string, records []fields.Record) (*export.Summary, error)
}

// Deps are the collaborators behind the tools
type Deps struct {
	Pipeline   DirectoryProcessor
	Classifier TextClassifier
	Validator  FileValidator
	Exporter   WorkbookWriter
	Logger     *slog.Logger
}

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	deps      Deps
	guard     *security.Guard
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance rooted at cfg.InputDir
func NewServer(cfg *config.Config, deps Deps) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if deps.Pipeline == nil || deps.Classifier == nil || deps.Validator == nil || deps.Exporter == nil {
		return nil, fmt.Errorf("pipeline, classifier, validator and exporter are required")
	}

	guard, err := security.NewGuard(cfg.InputDir)
	if err != nil {
		return nil, err
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config: cfg,
		deps:   deps,
		guard:  guard,
		logger: logger,
		mcpServer: server.NewMCPServer(
			cfg.ServerName,
			cfg.Version,
			server.WithToolCapabilities(false),
		),
	}

	s.registerTools()
	return s, nil
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(
		descriptions.ExtractDirectory,
		mcp.WithDescription(descriptions.GetToolDescription(descriptions.ExtractDirectory)),
		mcp.WithString("directory",
			mcp.Description("Directory to process (uses the configured directory if empty)"),
		),
		mcp.WithString("output",
			mcp.Description("Optional .xlsx path for the extracted records"),
		),
	), s.handleExtractDirectory)

	s.mcpServer.AddTool(mcp.NewTool(
		descriptions.ClassifyText,
		mcp.WithDescription(descriptions.GetToolDescription(descriptions.ClassifyText)),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Text to classify, one field per line"),
		),
	), s.handleClassifyText)

	s.mcpServer.AddTool(mcp.NewTool(
		descriptions.ValidatePDF,
		mcp.WithDescription(descriptions.GetToolDescription(descriptions.ValidatePDF)),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file"),
		),
	), s.handleValidatePDF)

	s.mcpServer.AddTool(mcp.NewTool(
		descriptions.ListPDFs,
		mcp.WithDescription(descriptions.GetToolDescription(descriptions.ListPDFs)),
		mcp.WithString("directory",
			mcp.Description("Directory to list (uses the configured directory if empty)"),
		),
	), s.handleListPDFs)
}

func (s *Server) handleExtractDirectory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir, err := s.guard.Resolve(request.GetString("directory", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.deps.Pipeline.ProcessDirectory(ctx, dir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := struct {
		*pipeline.Result
		Export *export.Summary `json:"export,omitempty"`
	}{Result: result}

	if out := request.GetString("output", ""); out != "" {
		path, err := s.guard.Resolve(out)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".xlsx") {
			return mcp.NewToolResultError("output must be an .xlsx file"), nil
		}
		summary, err := s.deps.Exporter.WriteFile(path, result.Records)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		response.Export = summary
	}

	s.logger.Info("mcp.extract_directory", "dir", dir, "records", len(result.Records))
	return jsonResult(response)
}

func (s *Server) handleClassifyText(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	acc := fields.NewAccumulator()
	s.deps.Classifier.ClassifyText(text, acc)

	return jsonResult(struct {
		Records []fields.Record `json:"records"`
	}{Records: acc.Records()})
}

func (s *Server) handleValidatePDF(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	path, err := s.guard.Resolve(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := s.deps.Validator.Validate(path)
	if !result.Valid {
		return mcp.NewToolResultText(fmt.Sprintf("PDF validation failed for %s: %s", result.Path, result.Message)), nil
	}

	text := fmt.Sprintf("PDF file %s is valid and readable\n", result.Path)
	text += fmt.Sprintf("Pages: %d\n", result.Pages)
	text += fmt.Sprintf("Version: %s\n", result.Version)
	text += fmt.Sprintf("Encrypted: %t\n", result.Encrypted)
	text += fmt.Sprintf("Size: %s\n", humanize.Bytes(uint64(result.Size)))
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleListPDFs(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir, err := s.guard.Resolve(request.GetString("directory", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	files, err := pdf.ListPDFs(dir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(files) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No PDF files found in %s", dir)), nil
	}

	text := fmt.Sprintf("Found %d PDF file(s) in %s:\n\n", len(files), dir)
	for i, f := range files {
		text += fmt.Sprintf("%d. %s (%s, modified %s)\n",
			i+1, f.Name, humanize.Bytes(uint64(f.Size)), f.ModifiedTime)
	}
	return mcp.NewToolResultText(text), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// Run serves the tools on stdin/stdout until the stream closes
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("mcp.start", "root", s.guard.Root(), "name", s.config.ServerName)

	stdio := server.NewStdioServer(s.mcpServer)
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
