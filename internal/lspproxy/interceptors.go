package lspproxy

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"go.trai.ch/graphql-lsp-router/internal/operation"
	"go.trai.ch/graphql-lsp-router/internal/reformat"
	"go.trai.ch/graphql-lsp-router/internal/source"
)

// Commands the proxy executes itself instead of handing them to the
// language server.
const (
	CommandFormatOperations = "graphql.formatOperations"
	CommandInsertOperation  = "graphql.insertOperation"
	CommandListOperations   = "graphql.listOperations"
	CommandReloadSchema     = "graphql.reloadSchema"
)

// handleFormatting answers a textDocument/formatting request from the
// mirrored document. Fragments that are empty or fail to parse are skipped
// without failing the request.
func (p *Proxy) handleFormatting(msg *BaseRPC) {
	var params DocumentFormattingParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		p.respondError(msg.ID, codeInvalidParams, "unreadable formatting params")
		return
	}

	doc, ok := p.documents.Get(params.TextDocument.URI)
	if !ok {
		p.respondError(msg.ID, codeInvalidParams, fmt.Sprintf("unknown document: %s", params.TextDocument.URI))
		return
	}

	batch := reformat.Document(doc.LanguageID, doc.Text)
	p.reportSkipped(doc.URI, batch)
	p.respondResult(msg.ID, toLSPEdits(doc.Text, batch.Edits()))
}

// handleExecuteCommand dispatches the proxy-owned commands. It reports
// whether the command was handled; anything else belongs to the server.
func (p *Proxy) handleExecuteCommand(msg *BaseRPC) bool {
	var params ExecuteCommandParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return false
	}

	switch params.Command {
	case CommandFormatOperations:
		p.executeFormatOperations(msg.ID, params.Arguments)
	case CommandInsertOperation:
		p.executeInsertOperation(msg.ID, params.Arguments)
	case CommandListOperations:
		p.executeListOperations(msg.ID, params.Arguments)
	case CommandReloadSchema:
		p.executeReloadSchema(msg.ID)
	default:
		return false
	}
	return true
}

func (p *Proxy) executeFormatOperations(id any, args []json.RawMessage) {
	var target FormatOperationsArgs
	if err := firstArg(args, &target); err != nil {
		p.respondError(id, codeInvalidParams, err.Error())
		return
	}

	doc, ok := p.documents.Get(target.URI)
	if !ok {
		p.rejectUnknownDocument(id, target.URI)
		return
	}

	batch := reformat.Document(doc.LanguageID, doc.Text)
	p.reportSkipped(doc.URI, batch)

	if edits := toLSPEdits(doc.Text, batch.Edits()); len(edits) > 0 {
		p.applyEdit("Format GraphQL operations", doc.URI, edits)
	}
	p.respondResult(id, nil)
}

func (p *Proxy) executeInsertOperation(id any, args []json.RawMessage) {
	var target InsertOperationArgs
	if err := firstArg(args, &target); err != nil {
		p.respondError(id, codeInvalidParams, err.Error())
		return
	}
	if target.Operation == "" || target.Field == "" {
		p.respondError(id, codeInvalidParams, "insertOperation needs an operation type and a field name")
		return
	}

	doc, ok := p.documents.Get(target.URI)
	if !ok {
		p.rejectUnknownDocument(id, target.URI)
		return
	}

	// Host-language documents would need a tag wrapper the proxy cannot
	// know, so only plain GraphQL documents accept insertions.
	if doc.LanguageID != source.LangGraphQL {
		p.respondError(id, codeInvalidParams,
			fmt.Sprintf("operations can only be inserted into GraphQL documents, not %q", doc.LanguageID))
		return
	}

	schema, err := p.schemaFor(doc.URI)
	if err != nil {
		p.respondError(id, codeInternalError, err.Error())
		return
	}

	var opts []operation.Option
	if target.Depth > 0 {
		opts = append(opts, operation.WithDepth(target.Depth))
	}
	text, err := operation.Generate(schema, target.Operation, target.Field, opts...)
	if err != nil {
		p.respondError(id, codeInvalidParams, err.Error())
		return
	}

	edit := appendEdit(doc, text)
	if target.Position != nil {
		// The editor named the exact spot; insert verbatim.
		at := *target.Position
		edit = TextEdit{Range: Range{Start: at, End: at}, NewText: text}
	}

	p.applyEdit(fmt.Sprintf("Insert %s %s", target.Operation, target.Field), doc.URI, []TextEdit{edit})
	p.respondResult(id, nil)
}

func (p *Proxy) executeListOperations(id any, args []json.RawMessage) {
	var target FormatOperationsArgs
	if len(args) > 0 {
		if err := firstArg(args, &target); err != nil {
			p.respondError(id, codeInvalidParams, err.Error())
			return
		}
	}

	schema, err := p.schemaFor(target.URI)
	if err != nil {
		p.respondError(id, codeInternalError, err.Error())
		return
	}

	p.respondResult(id, operation.List(schema))
}

func (p *Proxy) executeReloadSchema(id any) {
	if err := p.dropSchema(); err != nil {
		p.respondError(id, codeInternalError, err.Error())
		return
	}

	p.respondResult(id, nil)
	p.notify("window/showMessage", ShowMessageParams{
		Type:    messageTypeInfo,
		Message: "GraphQL schema reloaded",
	})
}

// reportSkipped surfaces empty fragments to the user. Fragments that fail
// to parse stay at debug level; a document mid-edit is the normal case,
// not an incident.
func (p *Proxy) reportSkipped(uri string, batch reformat.Batch) {
	if n := batch.Count(reformat.StatusSkippedEmpty); n > 0 {
		p.notify("window/showMessage", ShowMessageParams{
			Type:    messageTypeInfo,
			Message: "Skipped formatting an empty GraphQL fragment",
		})
	}

	for _, r := range batch.Results {
		if r.Status == reformat.StatusSkippedInvalid {
			p.log.WithError(r.Err).WithField("uri", uri).Debug("Skipped malformed GraphQL fragment")
		}
	}
}

// rejectUnknownDocument fails a user-invoked command against a URI the
// mirror has never seen. Clients routinely swallow executeCommand errors,
// so the failure is also shown as a message.
func (p *Proxy) rejectUnknownDocument(id any, uri string) {
	message := fmt.Sprintf("unknown document: %s", uri)
	p.notify("window/showMessage", ShowMessageParams{
		Type:    messageTypeError,
		Message: message,
	})
	p.respondError(id, codeInvalidParams, message)
}

// appendEdit builds the edit that adds an operation at the end of a
// document, separated from existing content by one blank line.
func appendEdit(doc Document, operationText string) TextEdit {
	idx := source.NewLineIndex(doc.Text)
	end := toLSPPosition(idx, idx.PositionFor(len(doc.Text)))

	prefix := ""
	switch {
	case doc.Text == "" || strings.HasSuffix(doc.Text, "\n\n"):
	case strings.HasSuffix(doc.Text, "\n"):
		prefix = "\n"
	default:
		prefix = "\n\n"
	}

	return TextEdit{Range: Range{Start: end, End: end}, NewText: prefix + operationText}
}

func firstArg(args []json.RawMessage, v any) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command argument")
	}
	if err := json.Unmarshal(args[0], v); err != nil {
		return fmt.Errorf("invalid command argument: %w", err)
	}
	return nil
}

// applyEdit pushes edits to the editor through a workspace/applyEdit
// request with a fresh id, tracked so the editor's answer is not mistaken
// for server traffic.
func (p *Proxy) applyEdit(label, uri string, edits []TextEdit) {
	p.request("workspace/applyEdit", ApplyWorkspaceEditParams{
		Label: label,
		Edit:  WorkspaceEdit{Changes: map[string][]TextEdit{uri: edits}},
	})
}

func (p *Proxy) respondResult(id any, result any) {
	payload, err := json.Marshal(successResponse{JSONRPC: "2.0", ID: id, Result: result})
	if err != nil {
		p.log.WithError(err).Error("Failed to marshal response")
		return
	}
	p.sendToEditor(payload)
}

func (p *Proxy) respondError(id any, code int, message string) {
	payload, err := json.Marshal(errorResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &ResponseError{Code: code, Message: message},
	})
	if err != nil {
		p.log.WithError(err).Error("Failed to marshal error response")
		return
	}
	p.sendToEditor(payload)
}

func (p *Proxy) notify(method string, params any) {
	payload, err := json.Marshal(notificationMessage{JSONRPC: "2.0", Method: method, Params: params})
	if err != nil {
		p.log.WithError(err).Error("Failed to marshal notification")
		return
	}
	p.sendToEditor(payload)
}

func (p *Proxy) request(method string, params any) {
	id := uuid.NewString()
	p.trackPending(id, method)

	payload, err := json.Marshal(requestMessage{JSONRPC: "2.0", ID: id, Method: method, Params: params})
	if err != nil {
		p.log.WithError(err).Error("Failed to marshal request")
		return
	}
	p.sendToEditor(payload)
}

// rewriteInitializeResult adjusts the initialize response on its way to
// the editor: sync is forced to full so the document mirror stays whole,
// and the formatting and command capabilities the proxy answers for are
// advertised on top of whatever the server supports.
func (p *Proxy) rewriteInitializeResult(payload []byte) []byte {
	// Fast path: skip the JSON work for anything that is clearly not an
	// initialize response.
	if !strings.Contains(string(payload), `"capabilities"`) {
		return payload
	}

	var msg BaseRPC
	if err := json.Unmarshal(payload, &msg); err != nil || len(msg.Result) == 0 {
		return payload
	}

	var result map[string]any
	if err := json.Unmarshal(msg.Result, &result); err != nil {
		return payload
	}

	capabilities, ok := result["capabilities"].(map[string]any)
	if !ok {
		return payload
	}

	capabilities["textDocumentSync"] = 1
	capabilities["documentFormattingProvider"] = true
	capabilities["executeCommandProvider"] = map[string]any{
		"commands": mergeCommands(capabilities["executeCommandProvider"]),
	}
	result["capabilities"] = capabilities

	newResult, err := json.Marshal(result)
	if err != nil {
		p.log.WithError(err).Warn("Failed to re-marshal initialize result")
		return payload
	}
	msg.Result = newResult

	newPayload, err := json.Marshal(msg)
	if err != nil {
		p.log.WithError(err).Warn("Failed to re-marshal initialize payload")
		return payload
	}

	p.log.Info("Rewrote initialize response: full sync forced, formatting and commands advertised")
	return newPayload
}

// mergeCommands unions the proxy's commands with whatever the server
// already advertises.
func mergeCommands(provider any) []string {
	commands := []string{
		CommandFormatOperations,
		CommandInsertOperation,
		CommandListOperations,
		CommandReloadSchema,
	}
	seen := make(map[string]bool, len(commands))
	for _, c := range commands {
		seen[c] = true
	}

	if m, ok := provider.(map[string]any); ok {
		if list, ok := m["commands"].([]any); ok {
			for _, item := range list {
				if s, ok := item.(string); ok && !seen[s] {
					seen[s] = true
					commands = append(commands, s)
				}
			}
		}
	}
	return commands
}
