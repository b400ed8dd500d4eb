package lsp

import (
	"context"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"mdref/internal/document"
	"mdref/internal/index"
	"mdref/internal/links"
)

func (ls *Server) textDocumentDidOpen(
	glspContext *glsp.Context,
	params *protocol.DidOpenTextDocumentParams,
) error {
	doc, err := ls.documents.Open(
		params.TextDocument.URI,
		params.TextDocument.Text,
		params.TextDocument.Version,
	)
	if err != nil {
		return err
	}

	ls.refreshDocument(glspContext, doc)
	return nil
}

func (ls *Server) textDocumentDidChange(
	glspContext *glsp.Context,
	params *protocol.DidChangeTextDocumentParams,
) error {
	doc, ok := ls.documents.Get(params.TextDocument.URI)
	if !ok {
		log.Errorf("change for unopened document: %s", params.TextDocument.URI)
		return nil
	}

	for _, change := range params.ContentChanges {
		switch contentChange := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			doc.ApplyChange(nil, contentChange.Text)
		case protocol.TextDocumentContentChangeEvent:
			doc.ApplyChange(contentChange.Range, contentChange.Text)
		}
	}

	ls.refreshDocument(glspContext, doc)
	return nil
}

func (ls *Server) textDocumentDidSave(
	glspContext *glsp.Context,
	params *protocol.DidSaveTextDocumentParams,
) error {
	doc, ok := ls.documents.Get(params.TextDocument.URI)
	if !ok {
		return nil
	}

	ls.refreshDocument(glspContext, doc)
	return nil
}

func (ls *Server) textDocumentDidClose(
	glspContext *glsp.Context,
	params *protocol.DidCloseTextDocumentParams,
) error {
	ls.documents.Close(params.TextDocument.URI)
	ls.provider.Forget(params.TextDocument.URI)
	return nil
}

// refreshDocument recomputes the links snapshot of a document, publishes its
// diagnostics and updates the workspace index. The indexed definitions
// survive the document being closed.
func (ls *Server) refreshDocument(glspContext *glsp.Context, doc *document.Document) {
	snapshot, err := ls.provider.GetLinks(context.Background(), doc)
	if err != nil {
		log.Errorf("failed to compute links for %s: %s", doc.URI(), err.Error())
		return
	}

	publishDiagnostics(glspContext, doc.URI(), computeDiagnostics(snapshot))
	ls.indexDocument(doc, snapshot)
}

// indexDocument persists a document's definitions in the workspace index.
func (ls *Server) indexDocument(doc *document.Document, snapshot *links.Snapshot) {
	if ls.index == nil {
		return
	}
	defs := snapshot.DefinitionLinks()
	rows := make([]index.Definition, len(defs))
	for i, def := range defs {
		rows[i] = index.Definition{
			Label:           def.Ref,
			NormalizedLabel: links.NormalizeLabel(def.Ref),
			Target:          def.HrefText,
			Line:            int(def.Range.Start.Line),
		}
	}
	checksum := index.Checksum([]byte(doc.Content()))
	if err := ls.index.UpdateDocument(doc.URI(), checksum, rows); err != nil {
		log.Errorf("failed to index %s: %s", doc.URI(), err.Error())
	}
}
