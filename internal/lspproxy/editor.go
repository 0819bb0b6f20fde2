package lspproxy

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/sirupsen/logrus"
)

// processEditorToServer continuously reads from the editor, parses headers,
// extracts the payload, and routes it based on the JSON-RPC method.
func (p *Proxy) processEditorToServer() {
	reader := bufio.NewReader(p.editorIn)

	for {
		payload, err := readLSPMessage(reader)
		if err != nil {
			if err == io.EOF {
				return
			}
			p.log.WithError(err).Fatal("Fatal error reading message from editor")
		}

		p.handleEditorMessage(payload)
	}
}

func (p *Proxy) handleEditorMessage(payload []byte) {
	var msg BaseRPC
	if err := json.Unmarshal(payload, &msg); err != nil {
		p.forwardToServer(payload)
		return
	}

	if msg.Method != "" {
		switch msg.Method {
		case "initialize":
			p.handleInitialize(&msg)
		case "textDocument/didOpen":
			p.handleDidOpen(payload)
		case "textDocument/didChange":
			p.handleDidChange(payload)
		case "textDocument/didClose":
			p.handleDidClose(payload)
		case "textDocument/didSave":
			p.handleDidSave(payload)
		case "textDocument/formatting":
			// Answered by the proxy, the server never sees it.
			p.handleFormatting(&msg)
			return
		case "workspace/executeCommand":
			if p.handleExecuteCommand(&msg) {
				return
			}
		}
		p.forwardToServer(payload)
		return
	}

	// Responses to requests the proxy itself issued stop here; the server
	// never asked for them.
	if msg.ID != nil {
		if method, ours := p.consumePending(msg.ID); ours {
			p.handleProxyResponse(method, &msg)
			return
		}
	}

	p.forwardToServer(payload)
}

func (p *Proxy) handleInitialize(msg *BaseRPC) {
	var params InitializeParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		p.log.WithError(err).Error("Failed to unmarshal initialize params")
		return
	}

	rootURI := params.RootURI
	if rootURI == "" && len(params.WorkspaceFolders) > 0 {
		rootURI = params.WorkspaceFolders[0].URI
	}
	if rootURI == "" {
		return
	}

	dir := uriToPath(rootURI)
	p.setWorkspace(dir)
	p.log.WithField("workspace", dir).Info("Workspace root announced")
}

func (p *Proxy) handleDidOpen(payload []byte) {
	var notif DidOpenNotification
	if err := json.Unmarshal(payload, &notif); err != nil {
		p.log.WithError(err).Error("Failed to unmarshal didOpen")
		return
	}

	td := notif.Params.TextDocument
	p.documents.Open(td.URI, td.LanguageID, td.Version, td.Text)
	p.log.WithFields(logrus.Fields{
		"uri":      td.URI,
		"language": td.LanguageID,
	}).Debug("Document opened")
}

func (p *Proxy) handleDidChange(payload []byte) {
	var notif DidChangeNotification
	if err := json.Unmarshal(payload, &notif); err != nil {
		p.log.WithError(err).Error("Failed to unmarshal didChange")
		return
	}

	if len(notif.Params.ContentChanges) == 0 {
		return
	}

	// Full sync puts the whole document in the last change event.
	text := notif.Params.ContentChanges[len(notif.Params.ContentChanges)-1].Text
	p.documents.Change(notif.Params.TextDocument.URI, notif.Params.TextDocument.Version, text)
}

func (p *Proxy) handleDidClose(payload []byte) {
	var notif DidCloseNotification
	if err := json.Unmarshal(payload, &notif); err != nil {
		p.log.WithError(err).Error("Failed to unmarshal didClose")
		return
	}

	p.documents.Close(notif.Params.TextDocument.URI)
}

func (p *Proxy) handleDidSave(payload []byte) {
	var notif DidSaveNotification
	if err := json.Unmarshal(payload, &notif); err != nil {
		p.log.WithError(err).Error("Failed to unmarshal didSave")
		return
	}

	// Editors only include the text when asked; take it when offered.
	if notif.Params.Text == "" {
		return
	}

	uri := notif.Params.TextDocument.URI
	version := 0
	if doc, ok := p.documents.Get(uri); ok {
		version = doc.Version
	}
	p.documents.Change(uri, version, notif.Params.Text)
}

// handleProxyResponse consumes the editor's answer to a request the proxy
// itself issued, such as workspace/applyEdit.
func (p *Proxy) handleProxyResponse(method string, msg *BaseRPC) {
	if method != "workspace/applyEdit" {
		p.log.WithField("method", method).Debug("Editor answered proxy request")
		return
	}

	var result ApplyWorkspaceEditResult
	if err := json.Unmarshal(msg.Result, &result); err != nil {
		p.log.WithError(err).Warn("Unreadable workspace/applyEdit response")
		return
	}

	if !result.Applied {
		p.log.WithField("reason", result.FailureReason).Warn("Editor rejected workspace edit")
		message := "The editor rejected the GraphQL edit"
		if result.FailureReason != "" {
			message += ": " + result.FailureReason
		}
		p.notify("window/showMessage", ShowMessageParams{
			Type:    messageTypeWarning,
			Message: message,
		})
		return
	}
	p.log.Debug("Editor applied workspace edit")
}
