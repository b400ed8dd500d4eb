// Package lsp exposes the refactoring engine over the Language Server
// Protocol: code actions for extracting links, commands for organizing
// definition blocks, and diagnostics for unresolved references.
package lsp

import (
	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"mdref/internal/document"
	"mdref/internal/index"
	"mdref/internal/links"
	"mdref/internal/refactor"
)

const lsName = "mdref"

var version = "0.1.0"

var log = commonlog.GetLogger("mdref.lsp")

// organizeKind is the code action kind of the organize source action.
const organizeKind = protocol.CodeActionKind("source.organizeLinkDefinitions")

const commandOrganize = "mdref.organizeLinkDefinitions"

type Server struct {
	root      string
	handler   *protocol.Handler
	documents *document.Store
	provider  *links.CachingProvider
	organizer *refactor.Organizer
	extractor *refactor.Extractor
	index     *index.DB
}

// NewServer builds the stdio language server. indexPath points at the
// workspace index database; when empty, or when the database cannot be
// opened, the server runs without persistence.
func NewServer(indexPath string) (*server.Server, error) {
	provider := links.NewCachingProvider(links.NewComputer())

	ls := &Server{
		documents: document.NewStore(),
		provider:  provider,
		organizer: refactor.NewOrganizer(provider),
		extractor: refactor.NewExtractor(provider),
	}

	if indexPath != "" {
		db, err := index.Open(indexPath)
		if err != nil {
			log.Errorf("failed to open workspace index, continuing without it: %s", err.Error())
		} else {
			ls.index = db
		}
	}

	ls.handler = &protocol.Handler{
		Initialize:              ls.initialize,
		Initialized:             ls.initialized,
		Shutdown:                ls.shutdown,
		SetTrace:                ls.setTrace,
		TextDocumentDidOpen:     ls.textDocumentDidOpen,
		TextDocumentDidChange:   ls.textDocumentDidChange,
		TextDocumentDidSave:     ls.textDocumentDidSave,
		TextDocumentDidClose:    ls.textDocumentDidClose,
		TextDocumentCodeAction:  ls.textDocumentCodeAction,
		WorkspaceExecuteCommand: ls.workspaceExecuteCommand,
	}

	return server.NewServer(ls.handler, lsName, false), nil
}
