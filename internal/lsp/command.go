package lsp

import (
	"context"
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"mdref/internal/refactor"
)

func (ls *Server) workspaceExecuteCommand(
	glspContext *glsp.Context,
	params *protocol.ExecuteCommandParams,
) (any, error) {
	switch params.Command {
	case commandOrganize:
		return nil, ls.executeOrganize(glspContext, params.Arguments)
	case refactor.CommandRenameLinkDefinition:
		// The rename itself is a host-side operation; nothing to do here.
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown command: %s", params.Command)
	}
}

// executeOrganize computes the organize edits for an open document and asks
// the client to apply them. Arguments: [uri, removeUnused].
func (ls *Server) executeOrganize(glspContext *glsp.Context, args []any) error {
	if len(args) != 2 {
		return fmt.Errorf("expected 2 arguments, got %d", len(args))
	}
	uri, ok := args[0].(string)
	if !ok {
		return fmt.Errorf("expected document uri, got %v", args[0])
	}
	removeUnused, ok := args[1].(bool)
	if !ok {
		return fmt.Errorf("expected removeUnused flag, got %v", args[1])
	}

	doc, ok := ls.documents.Get(uri)
	if !ok {
		return fmt.Errorf("document not open: %s", uri)
	}

	edits, err := ls.organizer.Organize(
		context.Background(), doc,
		refactor.OrganizeOptions{RemoveUnused: removeUnused},
	)
	if err != nil {
		return fmt.Errorf("failed to organize definitions: %w", err)
	}
	if len(edits) == 0 {
		// Already organized: a valid, successful outcome.
		return nil
	}

	var result any
	glspContext.Call("workspace/applyEdit", protocol.ApplyWorkspaceEditParams{
		Edit: *workspaceEdit(uri, edits),
	}, &result)
	return nil
}
