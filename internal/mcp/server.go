// Package mcp exposes the review workflow as MCP tools over stdio.
package mcp

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/docman-dev/docman/internal/analyzer"
	"github.com/docman-dev/docman/internal/database"
	"github.com/docman-dev/docman/internal/filesystem"
	"github.com/docman-dev/docman/internal/log"
	"github.com/docman-dev/docman/internal/repoconfig"
	"github.com/docman-dev/docman/internal/repository"
	"github.com/docman-dev/docman/internal/usecase"
)

// Server wraps the MCP server with docman review tools.
type Server struct {
	server *mcp.Server
	dbCtx  *database.Context
	opts   []usecase.Option
}

// NewServer creates a server over dbCtx. The caller keeps ownership of dbCtx.
func NewServer(dbCtx *database.Context, version string, logger logSDK.Logger) *Server {
	if logger == nil {
		logger = log.Logger.Named("mcp")
	}
	loader := repoconfig.NewLoader()

	s := &Server{
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "docman",
			Version: version,
		}, nil),
		dbCtx: dbCtx,
		opts: []usecase.Option{
			usecase.WithLogger(logger),
			usecase.WithConfigSource(loader.Load),
		},
	}
	s.registerTools()
	return s
}

// Run serves requests on stdin/stdout until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "docman_status",
		Description: "Show copy counts, pending operations, target conflicts and duplicate groups of a docman repository",
	}, s.handleStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "docman_list_pending",
		Description: "List pending organization suggestions",
	}, s.handleListPending)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "docman_accept",
		Description: "Accept a pending suggestion: move the file and mark it organized",
	}, s.handleAccept)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "docman_reject",
		Description: "Reject a pending suggestion",
	}, s.handleReject)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "docman_ignore",
		Description: "Exclude files from future suggestions",
	}, s.handleIgnore)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "docman_unmark",
		Description: "Reset organized or ignored files to unorganized",
	}, s.handleUnmark)
}

type StatusInput struct {
	Path *string `json:"path,omitempty" jsonschema:"description=Path inside the repository (current directory if not specified)"`
}

type StatusOutput struct {
	Root       string           `json:"root"`
	Copies     map[string]int   `json:"copies"`
	Operations map[string]int   `json:"operations"`
	Pending    []PendingEntry   `json:"pending"`
	Conflicts  []ConflictEntry  `json:"conflicts,omitempty"`
	Duplicates []DuplicateEntry `json:"duplicates,omitempty"`
	Savings    int              `json:"savings"`
}

type PendingEntry struct {
	OperationID int64  `json:"operationId"`
	CurrentPath string `json:"currentPath"`
	TargetPath  string `json:"targetPath"`
	Reason      string `json:"reason,omitempty"`
	Conflict    bool   `json:"conflict,omitempty"`
	Warning     string `json:"warning,omitempty"`
}

type ConflictEntry struct {
	TargetPath   string  `json:"targetPath"`
	OperationIDs []int64 `json:"operationIds"`
}

type DuplicateEntry struct {
	DocumentID int64    `json:"documentId"`
	Files      []string `json:"files"`
}

type ListPendingInput struct {
	Path *string `json:"path,omitempty" jsonschema:"description=Path inside the repository; only operations below it are listed"`
}

type ListPendingOutput struct {
	Operations []PendingEntry `json:"operations"`
}

type AcceptInput struct {
	OperationID int64   `json:"operation_id" jsonschema:"required,description=ID of the pending operation"`
	OnConflict  *string `json:"on_conflict,omitempty" jsonschema:"enum=skip;overwrite;rename,description=What to do when the target exists (default skip)"`
	Path        *string `json:"path,omitempty" jsonschema:"description=Path inside the repository"`
}

type AcceptOutput struct {
	Outcome string `json:"outcome"`
	Source  string `json:"source,omitempty"`
	Target  string `json:"target,omitempty"`
	Message string `json:"message"`
}

type RejectInput struct {
	OperationID int64   `json:"operation_id" jsonschema:"required,description=ID of the pending operation"`
	Path        *string `json:"path,omitempty" jsonschema:"description=Path inside the repository"`
}

type MessageOutput struct {
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

type FileInput struct {
	FilePath string  `json:"file_path" jsonschema:"required,description=File or directory, absolute or relative to the repository"`
	Path     *string `json:"path,omitempty" jsonschema:"description=Path inside the repository used to resolve a relative file_path"`
}

func resolveTarget(path *string) (usecase.Target, error) {
	p := ""
	if path != nil {
		p = *path
	}
	return usecase.ResolveTarget(p, true)
}

func resolveFile(input FileInput) (usecase.Target, error) {
	filePath := input.FilePath
	if !filepath.IsAbs(filePath) && input.Path != nil && *input.Path != "" {
		root, err := repository.Resolve(*input.Path)
		if err != nil {
			return usecase.Target{}, err
		}
		filePath = filepath.Join(root, filepath.FromSlash(filePath))
	}
	return usecase.ResolveTarget(filePath, true)
}

func pendingEntries(report usecase.PendingReport) []PendingEntry {
	entries := make([]PendingEntry, 0, len(report.Items))
	for _, item := range report.Items {
		entries = append(entries, PendingEntry{
			OperationID: item.Operation.ID,
			CurrentPath: item.FilePath,
			TargetPath:  item.Operation.Suggestion.TargetPath(),
			Reason:      item.Operation.Suggestion.Reason,
			Conflict:    item.Conflict,
			Warning:     item.Warning,
		})
	}
	return entries
}

func conflictEntries(groups []analyzer.ConflictGroup) []ConflictEntry {
	entries := make([]ConflictEntry, 0, len(groups))
	for _, g := range groups {
		ids := make([]int64, 0, len(g.Operations))
		for _, op := range g.Operations {
			ids = append(ids, op.Operation.ID)
		}
		entries = append(entries, ConflictEntry{TargetPath: g.TargetPath, OperationIDs: ids})
	}
	return entries
}

func (s *Server) handleStatus(ctx context.Context, req *mcp.CallToolRequest, input StatusInput) (*mcp.CallToolResult, StatusOutput, error) {
	target, err := resolveTarget(input.Path)
	if err != nil {
		return nil, StatusOutput{}, errors.Wrap(err, "resolve repository")
	}

	report, err := usecase.NewStatus(s.dbCtx, s.opts...).Report(ctx, target)
	if err != nil {
		return nil, StatusOutput{}, errors.Wrap(err, "build status")
	}

	out := StatusOutput{
		Root:       target.Root,
		Copies:     make(map[string]int, len(report.Copies)),
		Operations: make(map[string]int, len(report.Operations)),
		Pending:    pendingEntries(report.Pending),
		Conflicts:  conflictEntries(report.Pending.Conflicts),
		Savings:    report.Savings,
	}
	for status, n := range report.Copies {
		out.Copies[string(status)] = n
	}
	for status, n := range report.Operations {
		out.Operations[string(status)] = n
	}
	for _, g := range report.Duplicates {
		entry := DuplicateEntry{DocumentID: g.DocumentID}
		for _, c := range g.Copies {
			entry.Files = append(entry.Files, c.FilePath)
		}
		out.Duplicates = append(out.Duplicates, entry)
	}
	return nil, out, nil
}

func (s *Server) handleListPending(ctx context.Context, req *mcp.CallToolRequest, input ListPendingInput) (*mcp.CallToolResult, ListPendingOutput, error) {
	target, err := resolveTarget(input.Path)
	if err != nil {
		return nil, ListPendingOutput{}, errors.Wrap(err, "resolve repository")
	}

	report, err := usecase.NewReviewer(s.dbCtx, s.opts...).Pending(ctx, target)
	if err != nil {
		return nil, ListPendingOutput{}, errors.Wrap(err, "list pending operations")
	}
	return nil, ListPendingOutput{Operations: pendingEntries(report)}, nil
}

func (s *Server) handleAccept(ctx context.Context, req *mcp.CallToolRequest, input AcceptInput) (*mcp.CallToolResult, AcceptOutput, error) {
	target, err := resolveTarget(input.Path)
	if err != nil {
		return nil, AcceptOutput{}, errors.Wrap(err, "resolve repository")
	}

	policy := filesystem.Skip
	if input.OnConflict != nil {
		if policy, err = filesystem.ParseConflictPolicy(*input.OnConflict); err != nil {
			return nil, AcceptOutput{}, err
		}
	}

	res, err := usecase.NewReviewer(s.dbCtx, s.opts...).Accept(ctx, target.Root, input.OperationID, usecase.ApplyOptions{Policy: policy})
	if err != nil {
		return nil, AcceptOutput{}, errors.Wrapf(err, "accept operation %d", input.OperationID)
	}

	out := AcceptOutput{Outcome: string(res.Outcome), Source: res.Source, Target: res.Target}
	switch res.Outcome {
	case usecase.OutcomeApplied:
		out.Message = fmt.Sprintf("Moved %s to %s", res.Source, res.Target)
	case usecase.OutcomeInPlace:
		out.Message = fmt.Sprintf("%s is already in place", res.Target)
	default:
		out.Message = fmt.Sprintf("Operation %d not applied: %v", input.OperationID, res.Err)
	}
	return nil, out, nil
}

func (s *Server) handleReject(ctx context.Context, req *mcp.CallToolRequest, input RejectInput) (*mcp.CallToolResult, MessageOutput, error) {
	target, err := resolveTarget(input.Path)
	if err != nil {
		return nil, MessageOutput{}, errors.Wrap(err, "resolve repository")
	}

	if err := usecase.NewReviewer(s.dbCtx, s.opts...).Reject(ctx, target.Root, input.OperationID); err != nil {
		return nil, MessageOutput{}, errors.Wrapf(err, "reject operation %d", input.OperationID)
	}
	return nil, MessageOutput{Message: fmt.Sprintf("Rejected operation %d", input.OperationID), Count: 1}, nil
}

func (s *Server) handleIgnore(ctx context.Context, req *mcp.CallToolRequest, input FileInput) (*mcp.CallToolResult, MessageOutput, error) {
	target, err := resolveFile(input)
	if err != nil {
		return nil, MessageOutput{}, errors.Wrapf(err, "resolve %s", input.FilePath)
	}

	changed, err := usecase.NewMarker(s.dbCtx, s.opts...).Ignore(ctx, target)
	if err != nil {
		return nil, MessageOutput{}, errors.Wrap(err, "ignore files")
	}
	return nil, MessageOutput{Message: fmt.Sprintf("Ignored %d file(s)", len(changed)), Count: len(changed)}, nil
}

func (s *Server) handleUnmark(ctx context.Context, req *mcp.CallToolRequest, input FileInput) (*mcp.CallToolResult, MessageOutput, error) {
	target, err := resolveFile(input)
	if err != nil {
		return nil, MessageOutput{}, errors.Wrapf(err, "resolve %s", input.FilePath)
	}

	changed, err := usecase.NewMarker(s.dbCtx, s.opts...).Unmark(ctx, target)
	if err != nil {
		return nil, MessageOutput{}, errors.Wrap(err, "unmark files")
	}
	return nil, MessageOutput{Message: fmt.Sprintf("Unmarked %d file(s)", len(changed)), Count: len(changed)}, nil
}
