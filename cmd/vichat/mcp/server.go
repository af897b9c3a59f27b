// Package mcp exposes the chat backend over the Model Context Protocol so
// agent tooling can browse sessions and ask questions through the user's
// stored credential.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/lqviet/vichat/internal/core/app"
)

// Options mirror the CLI's global flags.
type Options struct {
	ServerURL string
	DBPath    string
	Verbose   bool
}

// ListSessionsArgs defines arguments for the list_sessions tool
type ListSessionsArgs struct {
	Limit int `json:"limit,omitempty" jsonschema:"description=Max sessions to return (default: 20)"`
}

// GetConversationArgs defines arguments for the get_conversation tool
type GetConversationArgs struct {
	SessionID string `json:"session_id" jsonschema:"description=Session id to retrieve,required"`
}

// AskArgs defines arguments for the ask tool
type AskArgs struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"description=Session id (default: most recent session)"`
	Question  string `json:"question" jsonschema:"description=Question to send,required"`
}

// SessionSummary represents a session in the list view
type SessionSummary struct {
	SessionID string `json:"session_id"`
	Title     string `json:"title"`
	StartedAt string `json:"started_at"`
}

// ConversationEntry represents one question with its answers
type ConversationEntry struct {
	Question string   `json:"question"`
	AskedAt  string   `json:"asked_at"`
	Answers  []string `json:"answers"`
}

// StartServer opens the component graph, requires a stored credential, and
// serves the tools over stdio.
func StartServer(opts Options) error {
	a, err := app.New(app.Options{
		ServerURL: opts.ServerURL,
		DBPath:    opts.DBPath,
		Verbose:   opts.Verbose,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	// The MCP surface is non-interactive; without a stored login there is
	// nothing it can do.
	_, ok, err := a.Gate.Resume(context.Background())
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	if !ok {
		return fmt.Errorf("not logged in. Run 'vichat login' first")
	}

	s := server.NewMCPServer(
		"ViChat",
		"1.0.0",
	)

	listTool := mcp.NewTool("list_sessions",
		mcp.WithDescription("List the user's chat sessions, newest first"),
		mcp.WithNumber("limit",
			mcp.Description("Max sessions to return (default: 20)")),
	)
	s.AddTool(listTool, makeListSessionsHandler(a))

	conversationTool := mcp.NewTool("get_conversation",
		mcp.WithDescription("Retrieve the full question/answer history of one chat session"),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session id to retrieve")),
	)
	s.AddTool(conversationTool, makeGetConversationHandler(a))

	askTool := mcp.NewTool("ask",
		mcp.WithDescription("Send a question to a chat session and return the answer"),
		mcp.WithString("session_id",
			mcp.Description("Session id (default: most recent session)")),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("Question to send")),
	)
	s.AddTool(askTool, makeAskHandler(a))

	return server.ServeStdio(s)
}

func makeListSessionsHandler(a *app.App) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args ListSessionsArgs
		argsBytes, _ := json.Marshal(request.Params.Arguments)
		if err := json.Unmarshal(argsBytes, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		limit := args.Limit
		if limit == 0 {
			limit = 20
		}

		list, err := a.Sessions.Refresh(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		if len(list) > limit {
			list = list[:limit]
		}

		results := make([]SessionSummary, 0, len(list))
		for _, s := range list {
			results = append(results, SessionSummary{
				SessionID: s.ID,
				Title:     s.DisplayTitle(),
				StartedAt: s.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
			})
		}

		resultJSON, err := json.Marshal(map[string]any{
			"sessions": results,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcp.NewToolResultText(string(resultJSON)), nil
	}
}

func makeGetConversationHandler(a *app.App) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args GetConversationArgs
		argsBytes, _ := json.Marshal(request.Params.Arguments)
		if err := json.Unmarshal(argsBytes, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if args.SessionID == "" {
			return mcp.NewToolResultError("session_id is required"), nil
		}

		conv, err := a.API.Conversation(ctx, args.SessionID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
		}

		entries := make([]ConversationEntry, 0, len(conv.Items))
		for _, item := range conv.Items {
			entry := ConversationEntry{
				Question: item.Question,
				AskedAt:  item.QuestionTime.Format("2006-01-02T15:04:05Z07:00"),
			}
			for _, answer := range item.Answers {
				entry.Answers = append(entry.Answers, answer.Content)
			}
			entries = append(entries, entry)
		}

		resultJSON, err := json.Marshal(map[string]any{
			"session_id":   conv.SessionID,
			"conversation": entries,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcp.NewToolResultText(string(resultJSON)), nil
	}
}

func makeAskHandler(a *app.App) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args AskArgs
		argsBytes, _ := json.Marshal(request.Params.Arguments)
		if err := json.Unmarshal(argsBytes, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if args.Question == "" {
			return mcp.NewToolResultError("question is required"), nil
		}

		sessionID := args.SessionID
		if sessionID == "" {
			list, err := a.Sessions.Refresh(ctx)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
			}
			if len(list) == 0 {
				return mcp.NewToolResultError("no sessions exist; pass a session_id or create one first"), nil
			}
			sessionID = list[0].ID
		}

		resp, err := a.API.Ask(ctx, sessionID, args.Question)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("ask failed: %v", err)), nil
		}

		resultJSON, err := json.Marshal(map[string]any{
			"session_id": sessionID,
			"question":   resp.Question,
			"answer":     resp.Answer,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcp.NewToolResultText(string(resultJSON)), nil
	}
}
