package lsp

import (
	"context"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func (ls *Server) textDocumentCodeAction(
	glspContext *glsp.Context,
	params *protocol.CodeActionParams,
) (any, error) {
	doc, ok := ls.documents.Get(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	var actions []protocol.CodeAction

	extracted, err := ls.extractor.Extract(
		context.Background(), doc, params.Range, params.Context.Only,
	)
	if err != nil {
		log.Errorf("extract failed for %s: %s", doc.URI(), err.Error())
	}
	for _, action := range extracted {
		if action.DisabledReason != "" {
			// Clients without disabled-action support would render these as
			// runnable; only advertise actions that can do work.
			log.Debugf("extract unavailable: %s", action.DisabledReason)
			continue
		}
		kind := action.Kind
		actions = append(actions, protocol.CodeAction{
			Title:   action.Title,
			Kind:    &kind,
			Edit:    workspaceEdit(params.TextDocument.URI, action.Edits),
			Command: action.Command,
		})
	}

	if kindRequested(params.Context.Only, organizeKind) {
		actions = append(actions, organizeAction(params.TextDocument.URI, false))
		actions = append(actions, organizeAction(params.TextDocument.URI, true))
	}

	return actions, nil
}

// organizeAction builds a command-backed source action; the edits are
// computed when the command executes, against the then-current document.
func organizeAction(uri protocol.DocumentUri, removeUnused bool) protocol.CodeAction {
	title := "Organize link definitions"
	if removeUnused {
		title = "Organize link definitions (remove unused)"
	}
	kind := organizeKind
	return protocol.CodeAction{
		Title: title,
		Kind:  &kind,
		Command: &protocol.Command{
			Title:     title,
			Command:   commandOrganize,
			Arguments: []any{uri, removeUnused},
		},
	}
}

func workspaceEdit(uri protocol.DocumentUri, edits []protocol.TextEdit) *protocol.WorkspaceEdit {
	return &protocol.WorkspaceEdit{
		Changes: map[protocol.DocumentUri][]protocol.TextEdit{uri: edits},
	}
}

// kindRequested reports whether the client's code action kind filter admits
// the given kind. An empty filter admits everything.
func kindRequested(only []protocol.CodeActionKind, kind protocol.CodeActionKind) bool {
	if len(only) == 0 {
		return true
	}
	for _, requested := range only {
		if strings.HasPrefix(string(kind), string(requested)) {
			return true
		}
	}
	return false
}
