package lspproxy

import "encoding/json"

// BaseRPC represents a generic JSON-RPC 2.0 message, used for peeking at
// incoming/outgoing LSP messages and selectively modifying them.
type BaseRPC struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   json.RawMessage `json:"error,omitempty"`
}

// successResponse always carries the result key, even when the result is
// null, so it stays a valid JSON-RPC success frame.
type successResponse struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id"`
	Result  any    `json:"result"`
}

type errorResponse struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      any            `json:"id"`
	Error   *ResponseError `json:"error"`
}

type requestMessage struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type notificationMessage struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

// ResponseError is the error member of a failed JSON-RPC response.
type ResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

const (
	codeInvalidParams = -32602
	codeInternalError = -32603
)

const (
	messageTypeError   = 1
	messageTypeWarning = 2
	messageTypeInfo    = 3
)

// --- Inbound from Editor ---

// InitializeParams carries the part of the initialize request the proxy
// needs: where the workspace lives.
type InitializeParams struct {
	RootURI          string            `json:"rootUri"`
	WorkspaceFolders []WorkspaceFolder `json:"workspaceFolders"`
}

// WorkspaceFolder names one root the editor has open.
type WorkspaceFolder struct {
	URI  string `json:"uri"`
	Name string `json:"name"`
}

// DidOpenNotification represents an incoming textDocument/didOpen LSP message.
type DidOpenNotification struct {
	Method string        `json:"method"`
	Params DidOpenParams `json:"params"`
}

// DidOpenParams holds the parameters for a textDocument/didOpen notification.
type DidOpenParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

// TextDocumentItem contains the URI, language and full text of an opened document.
type TextDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int    `json:"version"`
	Text       string `json:"text"`
}

// DidChangeNotification represents an incoming textDocument/didChange LSP message.
type DidChangeNotification struct {
	Method string          `json:"method"`
	Params DidChangeParams `json:"params"`
}

// DidChangeParams holds the parameters for a textDocument/didChange notification.
type DidChangeParams struct {
	TextDocument   VersionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
}

// VersionedTextDocumentIdentifier identifies a specific document revision.
type VersionedTextDocumentIdentifier struct {
	URI     string `json:"uri"`
	Version int    `json:"version"`
}

// TextDocumentContentChangeEvent contains the modified text of a document.
// The proxy forces full sync, so the text is always the whole document.
type TextDocumentContentChangeEvent struct {
	Text string `json:"text"`
}

// DidCloseNotification represents an incoming textDocument/didClose LSP message.
type DidCloseNotification struct {
	Method string         `json:"method"`
	Params DidCloseParams `json:"params"`
}

// DidCloseParams holds the parameters for a textDocument/didClose notification.
type DidCloseParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

// DidSaveNotification represents an incoming textDocument/didSave LSP message.
type DidSaveNotification struct {
	Method string        `json:"method"`
	Params DidSaveParams `json:"params"`
}

// DidSaveParams optionally carries the saved text when the editor includes it.
type DidSaveParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Text         string                 `json:"text,omitempty"`
}

// TextDocumentIdentifier identifies a document by its URI.
type TextDocumentIdentifier struct {
	URI string `json:"uri"`
}

// DocumentFormattingParams holds the parameters of a textDocument/formatting request.
type DocumentFormattingParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

// ExecuteCommandParams holds the parameters of a workspace/executeCommand request.
type ExecuteCommandParams struct {
	Command   string            `json:"command"`
	Arguments []json.RawMessage `json:"arguments,omitempty"`
}

// FormatOperationsArgs is the argument of the graphql.formatOperations command.
type FormatOperationsArgs struct {
	URI string `json:"uri"`
}

// InsertOperationArgs is the argument of the graphql.insertOperation command.
// Position is optional; without one the operation is appended to the end of
// the document. Depth overrides the default selection depth when positive.
type InsertOperationArgs struct {
	URI       string    `json:"uri"`
	Operation string    `json:"operation"`
	Field     string    `json:"field"`
	Position  *Position `json:"position,omitempty"`
	Depth     int       `json:"depth,omitempty"`
}

// --- Outbound to Editor ---

// Position addresses a point in a document using UTF-16 column units, the
// LSP wire encoding.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range spans from Start (inclusive) to End (exclusive).
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// TextEdit replaces a range of the document with new text.
type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"newText"`
}

// WorkspaceEdit groups text edits per document URI.
type WorkspaceEdit struct {
	Changes map[string][]TextEdit `json:"changes"`
}

// ApplyWorkspaceEditParams is the payload of a workspace/applyEdit request.
type ApplyWorkspaceEditParams struct {
	Label string        `json:"label,omitempty"`
	Edit  WorkspaceEdit `json:"edit"`
}

// ApplyWorkspaceEditResult is the editor's answer to workspace/applyEdit.
type ApplyWorkspaceEditResult struct {
	Applied       bool   `json:"applied"`
	FailureReason string `json:"failureReason,omitempty"`
}

// ShowMessageParams is the payload of a window/showMessage notification.
type ShowMessageParams struct {
	Type    int    `json:"type"`
	Message string `json:"message"`
}
