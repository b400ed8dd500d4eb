package lsp

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"mdref/internal/document"
)

// indexWorkspace walks the workspace root and indexes the definitions of
// every Markdown file. Files whose indexed checksum still matches are
// skipped by the index itself.
func (ls *Server) indexWorkspace(root string) {
	if ls.index == nil || root == "" {
		return
	}

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if path != root && strings.HasPrefix(entry.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(entry.Name(), ".md") {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			log.Errorf("failed to read %s: %s", path, err.Error())
			return nil
		}
		doc := document.New("file://"+path, string(content), 0)
		snapshot, err := ls.provider.GetLinks(context.Background(), doc)
		if err != nil {
			log.Errorf("failed to compute links for %s: %s", path, err.Error())
			return nil
		}
		ls.indexDocument(doc, snapshot)
		ls.provider.Forget(doc.URI())
		return nil
	})
	if err != nil {
		log.Errorf("workspace indexing aborted: %s", err.Error())
		return
	}
	log.Infof("workspace indexed: %s", root)
}
