package lspproxy

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.trai.ch/graphql-lsp-router/internal/discovery"
	"go.trai.ch/graphql-lsp-router/internal/operation"
	"go.trai.ch/graphql-lsp-router/internal/schemaregistry"
)

func formattingRequest(t *testing.T, id any, uri string) []byte {
	t.Helper()
	return requestFrame(t, id, "textDocument/formatting", DocumentFormattingParams{
		TextDocument: TextDocumentIdentifier{URI: uri},
	})
}

func executeCommandRequest(t *testing.T, id any, command string, args ...any) []byte {
	t.Helper()
	return requestFrame(t, id, "workspace/executeCommand", map[string]any{
		"command":   command,
		"arguments": args,
	})
}

func TestFormattingFullDocument(t *testing.T) {
	p, editorOut, _ := newTestProxy(t)
	uri := "file:///ws/ops.graphql"
	openDocument(t, p, uri, "graphql", "query Foo{id}\n")

	p.handleEditorMessage(formattingRequest(t, 7, uri))

	frames := decodeFrames(t, editorOut)
	require.Len(t, frames, 1)
	assert.Equal(t, float64(7), frames[0].ID)

	var edits []TextEdit
	require.NoError(t, json.Unmarshal(frames[0].Result, &edits))
	require.Len(t, edits, 1)
	assert.Equal(t, "query Foo {\n  id\n}\n", edits[0].NewText)
	assert.Equal(t, Position{Line: 0, Character: 0}, edits[0].Range.Start)
	assert.Equal(t, Position{Line: 1, Character: 0}, edits[0].Range.End)
}

func TestFormattingAlreadyFormattedYieldsEmptyArray(t *testing.T) {
	p, editorOut, _ := newTestProxy(t)
	uri := "file:///ws/ops.graphql"
	openDocument(t, p, uri, "graphql", "query Foo {\n  id\n}\n")

	p.handleEditorMessage(formattingRequest(t, 8, uri))

	frames := decodeFrames(t, editorOut)
	require.Len(t, frames, 1)
	assert.Equal(t, "[]", string(frames[0].Result))
}

func TestFormattingUnknownDocument(t *testing.T) {
	p, editorOut, _ := newTestProxy(t)

	p.handleEditorMessage(formattingRequest(t, 9, "file:///never/opened.graphql"))

	frames := decodeFrames(t, editorOut)
	require.Len(t, frames, 1)

	var respErr ResponseError
	require.NoError(t, json.Unmarshal(frames[0].Error, &respErr))
	assert.Equal(t, codeInvalidParams, respErr.Code)
	assert.Contains(t, respErr.Message, "unknown document")
}

func TestFormattingEmptyFragmentShowsMessage(t *testing.T) {
	p, editorOut, _ := newTestProxy(t)
	uri := "file:///ws/Query.re"
	openDocument(t, p, uri, "reason", "let q = [%graphql {||}];")

	p.handleEditorMessage(formattingRequest(t, 10, uri))

	frames := decodeFrames(t, editorOut)
	require.Len(t, frames, 2)

	assert.Equal(t, "window/showMessage", frames[0].Method)
	var msg ShowMessageParams
	require.NoError(t, json.Unmarshal(frames[0].Params, &msg))
	assert.Equal(t, messageTypeInfo, msg.Type)
	assert.Equal(t, "Skipped formatting an empty GraphQL fragment", msg.Message)

	assert.Equal(t, float64(10), frames[1].ID)
	assert.Equal(t, "[]", string(frames[1].Result))
}

func TestFormattingSkipsInvalidFragmentSilently(t *testing.T) {
	p, editorOut, _ := newTestProxy(t)
	uri := "file:///ws/app.ts"
	openDocument(t, p, uri, "typescript",
		"const bad = gql`query {`;\nconst good = gql`{a}`;\n")

	p.handleEditorMessage(formattingRequest(t, 11, uri))

	frames := decodeFrames(t, editorOut)
	require.Len(t, frames, 1, "a malformed fragment must not trigger a notification")

	var edits []TextEdit
	require.NoError(t, json.Unmarshal(frames[0].Result, &edits))
	require.Len(t, edits, 1)
	assert.Equal(t, "\n{\n  a\n}", edits[0].NewText)
	assert.Equal(t, Position{Line: 1, Character: 17}, edits[0].Range.Start)
	assert.Equal(t, Position{Line: 1, Character: 20}, edits[0].Range.End)
}

func TestExecuteCommandFormatOperations(t *testing.T) {
	p, editorOut, serverIn := newTestProxy(t)
	uri := "file:///ws/app.ts"
	openDocument(t, p, uri, "typescript", "const a = gql`{a}`;\nconst b = gql``;\n")
	serverIn.Reset()

	p.handleEditorMessage(executeCommandRequest(t, 9, CommandFormatOperations, map[string]any{"uri": uri}))

	frames := decodeFrames(t, editorOut)
	require.Len(t, frames, 3)

	// The empty second fragment surfaces as a notification.
	assert.Equal(t, "window/showMessage", frames[0].Method)

	applyReq := frames[1]
	assert.Equal(t, "workspace/applyEdit", applyReq.Method)
	editID, isString := applyReq.ID.(string)
	require.True(t, isString, "proxy requests carry generated string ids")
	require.NotEmpty(t, editID)

	var params ApplyWorkspaceEditParams
	require.NoError(t, json.Unmarshal(applyReq.Params, &params))
	assert.Equal(t, "Format GraphQL operations", params.Label)
	require.Len(t, params.Edit.Changes[uri], 1)
	assert.Equal(t, "\n{\n  a\n}", params.Edit.Changes[uri][0].NewText)

	assert.Equal(t, float64(9), frames[2].ID)
	assert.Equal(t, "null", string(frames[2].Result))

	// The editor's answer to the applyEdit request stays with the proxy.
	reply, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      editID,
		"result":  map[string]any{"applied": true},
	})
	require.NoError(t, err)
	p.handleEditorMessage(reply)
	assert.Zero(t, serverIn.Len(), "applyEdit response must not reach the server")

	_, ours := p.consumePending(editID)
	assert.False(t, ours, "the response must consume the pending entry")
}

func TestExecuteCommandFormatOperationsNothingToDo(t *testing.T) {
	p, editorOut, _ := newTestProxy(t)
	uri := "file:///ws/ops.graphql"
	openDocument(t, p, uri, "graphql", "query Foo {\n  id\n}\n")

	p.handleEditorMessage(executeCommandRequest(t, 4, CommandFormatOperations, map[string]any{"uri": uri}))

	frames := decodeFrames(t, editorOut)
	require.Len(t, frames, 1, "no edit and no notification, just the response")
	assert.Equal(t, "null", string(frames[0].Result))
}

func TestExecuteCommandFormatOperationsMissingArgument(t *testing.T) {
	p, editorOut, _ := newTestProxy(t)

	p.handleEditorMessage(executeCommandRequest(t, 5, CommandFormatOperations))

	frames := decodeFrames(t, editorOut)
	require.Len(t, frames, 1)

	var respErr ResponseError
	require.NoError(t, json.Unmarshal(frames[0].Error, &respErr))
	assert.Equal(t, codeInvalidParams, respErr.Code)
	assert.Contains(t, respErr.Message, "missing command argument")
}

func TestExecuteCommandInsertOperation(t *testing.T) {
	p, editorOut, serverIn := newTestProxy(t)
	stageSchema(t, p)
	uri := "file:///ws/ops.graphql"
	openDocument(t, p, uri, "graphql", "query A {\n  me {\n    id\n  }\n}\n")
	serverIn.Reset()

	p.handleEditorMessage(executeCommandRequest(t, 3, CommandInsertOperation,
		map[string]any{"uri": uri, "operation": "query", "field": "me"}))

	frames := decodeFrames(t, editorOut)
	require.Len(t, frames, 2)

	applyReq := frames[0]
	assert.Equal(t, "workspace/applyEdit", applyReq.Method)

	var params ApplyWorkspaceEditParams
	require.NoError(t, json.Unmarshal(applyReq.Params, &params))
	assert.Equal(t, "Insert query me", params.Label)

	edits := params.Edit.Changes[uri]
	require.Len(t, edits, 1)
	assert.Equal(t, "\nquery Me {\n  me {\n    id\n    name\n  }\n}\n", edits[0].NewText)
	assert.Equal(t, Position{Line: 5, Character: 0}, edits[0].Range.Start)
	assert.Equal(t, edits[0].Range.Start, edits[0].Range.End)

	assert.Equal(t, float64(3), frames[1].ID)
	assert.Equal(t, "null", string(frames[1].Result))
	assert.Zero(t, serverIn.Len(), "the command is handled entirely by the proxy")
}

func TestExecuteCommandInsertOperationAtPosition(t *testing.T) {
	p, editorOut, _ := newTestProxy(t)
	stageSchema(t, p)
	uri := "file:///ws/ops.graphql"
	openDocument(t, p, uri, "graphql", "\n\nquery A {\n  me {\n    id\n  }\n}\n")

	p.handleEditorMessage(executeCommandRequest(t, 3, CommandInsertOperation,
		map[string]any{
			"uri":       uri,
			"operation": "query",
			"field":     "me",
			"position":  map[string]int{"line": 0, "character": 0},
		}))

	frames := decodeFrames(t, editorOut)
	require.Len(t, frames, 2)

	var params ApplyWorkspaceEditParams
	require.NoError(t, json.Unmarshal(frames[0].Params, &params))
	edits := params.Edit.Changes[uri]
	require.Len(t, edits, 1)
	assert.Equal(t, Position{Line: 0, Character: 0}, edits[0].Range.Start)
	assert.Equal(t, edits[0].Range.Start, edits[0].Range.End)
	assert.Equal(t, "query Me {\n  me {\n    id\n    name\n  }\n}\n", edits[0].NewText,
		"a positioned insert carries no separator prefix")
}

func TestExecuteCommandInsertOperationWithDepth(t *testing.T) {
	p, editorOut, _ := newTestProxy(t)
	stageSchema(t, p)
	uri := "file:///ws/ops.graphql"
	openDocument(t, p, uri, "graphql", "")

	p.handleEditorMessage(executeCommandRequest(t, 7, CommandInsertOperation,
		map[string]any{"uri": uri, "operation": "query", "field": "me", "depth": 0}))

	// Depth 0 in the argument means "use the default"; omitempty drops it
	// from the wire, so only positive depths override.
	frames := decodeFrames(t, editorOut)
	require.Len(t, frames, 2)
	var params ApplyWorkspaceEditParams
	require.NoError(t, json.Unmarshal(frames[0].Params, &params))
	assert.Equal(t, "query Me {\n  me {\n    id\n    name\n  }\n}\n", params.Edit.Changes[uri][0].NewText)
}

func TestExecuteCommandFormatOperationsUnknownDocument(t *testing.T) {
	p, editorOut, _ := newTestProxy(t)

	p.handleEditorMessage(executeCommandRequest(t, 13, CommandFormatOperations,
		map[string]any{"uri": "file:///never/opened.ts"}))

	frames := decodeFrames(t, editorOut)
	require.Len(t, frames, 2)

	// Commands come from the user; the failure is shown, not just returned.
	assert.Equal(t, "window/showMessage", frames[0].Method)
	var msg ShowMessageParams
	require.NoError(t, json.Unmarshal(frames[0].Params, &msg))
	assert.Equal(t, messageTypeError, msg.Type)
	assert.Contains(t, msg.Message, "unknown document")

	var respErr ResponseError
	require.NoError(t, json.Unmarshal(frames[1].Error, &respErr))
	assert.Equal(t, codeInvalidParams, respErr.Code)
	assert.Contains(t, respErr.Message, "unknown document")
}

func TestExecuteCommandInsertOperationRefusesHostDocuments(t *testing.T) {
	p, editorOut, _ := newTestProxy(t)
	uri := "file:///ws/app.ts"
	openDocument(t, p, uri, "typescript", "const a = gql`{a}`;\n")

	p.handleEditorMessage(executeCommandRequest(t, 6, CommandInsertOperation,
		map[string]any{"uri": uri, "operation": "query", "field": "me"}))

	frames := decodeFrames(t, editorOut)
	require.Len(t, frames, 1)

	var respErr ResponseError
	require.NoError(t, json.Unmarshal(frames[0].Error, &respErr))
	assert.Equal(t, codeInvalidParams, respErr.Code)
	assert.Contains(t, respErr.Message, "GraphQL documents")
}

func TestExecuteCommandInsertOperationUnknownField(t *testing.T) {
	p, editorOut, _ := newTestProxy(t)
	stageSchema(t, p)
	uri := "file:///ws/ops.graphql"
	openDocument(t, p, uri, "graphql", "")

	p.handleEditorMessage(executeCommandRequest(t, 6, CommandInsertOperation,
		map[string]any{"uri": uri, "operation": "query", "field": "nobody"}))

	frames := decodeFrames(t, editorOut)
	require.Len(t, frames, 1)

	var respErr ResponseError
	require.NoError(t, json.Unmarshal(frames[0].Error, &respErr))
	assert.Equal(t, codeInvalidParams, respErr.Code)
	assert.Contains(t, respErr.Message, "not found")
}

func TestExecuteCommandInsertOperationNoSchema(t *testing.T) {
	p, editorOut, _ := newTestProxy(t)
	p.chain = discovery.NewChain(p.log)
	p.setWorkspace(t.TempDir())
	uri := "file:///ws/ops.graphql"
	openDocument(t, p, uri, "graphql", "")

	p.handleEditorMessage(executeCommandRequest(t, 6, CommandInsertOperation,
		map[string]any{"uri": uri, "operation": "query", "field": "me"}))

	frames := decodeFrames(t, editorOut)
	require.Len(t, frames, 1)

	var respErr ResponseError
	require.NoError(t, json.Unmarshal(frames[0].Error, &respErr))
	assert.Equal(t, codeInternalError, respErr.Code)
	assert.Contains(t, respErr.Message, "no GraphQL schema found")
}

func TestExecuteCommandInsertOperationMissingField(t *testing.T) {
	p, editorOut, _ := newTestProxy(t)

	p.handleEditorMessage(executeCommandRequest(t, 6, CommandInsertOperation,
		map[string]any{"uri": "file:///ws/ops.graphql", "operation": "query"}))

	frames := decodeFrames(t, editorOut)
	require.Len(t, frames, 1)

	var respErr ResponseError
	require.NoError(t, json.Unmarshal(frames[0].Error, &respErr))
	assert.Equal(t, codeInvalidParams, respErr.Code)
}

func TestExecuteCommandListOperations(t *testing.T) {
	p, editorOut, _ := newTestProxy(t)
	stageSchema(t, p)

	p.handleEditorMessage(executeCommandRequest(t, 12, CommandListOperations))

	frames := decodeFrames(t, editorOut)
	require.Len(t, frames, 1)
	assert.Equal(t, float64(12), frames[0].ID)

	var ops []operation.Descriptor
	require.NoError(t, json.Unmarshal(frames[0].Result, &ops))
	require.Len(t, ops, 1)
	assert.Equal(t, operation.Descriptor{Operation: "query", Name: "me", Type: "User"}, ops[0])
}

func TestExecuteCommandReloadSchema(t *testing.T) {
	p, editorOut, _ := newTestProxy(t)
	stageSchema(t, p)

	t.Setenv("GRAPHQL_LSP_ROUTER_CACHE_DIR", t.TempDir())
	reg, err := schemaregistry.NewRegistry(p.log)
	require.NoError(t, err)
	p.registry = reg

	stale := filepath.Join(reg.Dir(), "old.example.com.graphql")
	require.NoError(t, os.WriteFile(stale, []byte("type Query { a: ID }"), 0o644))

	_, err = p.schemaFor("file:///ws/a.graphql")
	require.NoError(t, err)
	require.NotNil(t, p.schema)

	p.handleEditorMessage(executeCommandRequest(t, 11, CommandReloadSchema))

	frames := decodeFrames(t, editorOut)
	require.Len(t, frames, 2)
	assert.Equal(t, float64(11), frames[0].ID)
	assert.Equal(t, "null", string(frames[0].Result))

	assert.Equal(t, "window/showMessage", frames[1].Method)
	var msg ShowMessageParams
	require.NoError(t, json.Unmarshal(frames[1].Params, &msg))
	assert.Equal(t, "GraphQL schema reloaded", msg.Message)

	assert.Nil(t, p.schema)
	_, statErr := os.Stat(stale)
	assert.True(t, os.IsNotExist(statErr), "cached endpoint schemas are cleared")

	info, err := os.Stat(reg.Dir())
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "the cache directory itself survives")
}

func TestExecuteCommandUnknownCommandForwarded(t *testing.T) {
	p, editorOut, serverIn := newTestProxy(t)

	p.handleEditorMessage(executeCommandRequest(t, 2, "myextension.restart"))

	assert.Zero(t, editorOut.Len())
	frames := decodeFrames(t, &serverIn.Buffer)
	require.Len(t, frames, 1)
	assert.Equal(t, "workspace/executeCommand", frames[0].Method)
}

func TestAppendEditSeparation(t *testing.T) {
	op := "query Me {\n  me\n}\n"

	tests := []struct {
		name      string
		text      string
		wantStart Position
		wantText  string
	}{
		{"empty document", "", Position{Line: 0, Character: 0}, op},
		{"single trailing newline", "query A {}\n", Position{Line: 1, Character: 0}, "\n" + op},
		{"no trailing newline", "query A {}", Position{Line: 0, Character: 10}, "\n\n" + op},
		{"already blank-line terminated", "query A {}\n\n", Position{Line: 2, Character: 0}, op},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edit := appendEdit(Document{LanguageID: "graphql", Text: tt.text}, op)
			assert.Equal(t, tt.wantStart, edit.Range.Start)
			assert.Equal(t, tt.wantStart, edit.Range.End)
			assert.Equal(t, tt.wantText, edit.NewText)
		})
	}
}

func TestRewriteInitializeResult(t *testing.T) {
	p, _, _ := newTestProxy(t)

	payload := []byte(`{"jsonrpc":"2.0","id":1,"result":{"capabilities":{` +
		`"textDocumentSync":2,"hoverProvider":true,` +
		`"executeCommandProvider":{"commands":["server.restart"]}}}}`)

	out := p.rewriteInitializeResult(payload)

	var msg BaseRPC
	require.NoError(t, json.Unmarshal(out, &msg))
	var result map[string]any
	require.NoError(t, json.Unmarshal(msg.Result, &result))

	caps, ok := result["capabilities"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), caps["textDocumentSync"])
	assert.Equal(t, true, caps["documentFormattingProvider"])
	assert.Equal(t, true, caps["hoverProvider"], "unrelated capabilities survive")

	provider, ok := caps["executeCommandProvider"].(map[string]any)
	require.True(t, ok)
	list, ok := provider["commands"].([]any)
	require.True(t, ok)

	var commands []string
	for _, c := range list {
		commands = append(commands, c.(string))
	}
	assert.ElementsMatch(t, []string{
		CommandFormatOperations,
		CommandInsertOperation,
		CommandListOperations,
		CommandReloadSchema,
		"server.restart",
	}, commands)
}

func TestRewriteInitializeResultLeavesOtherTrafficAlone(t *testing.T) {
	p, _, _ := newTestProxy(t)

	tests := []struct {
		name    string
		payload string
	}{
		{"no capabilities mentioned", `{"jsonrpc":"2.0","method":"textDocument/publishDiagnostics","params":{}}`},
		{"capabilities in params, not result", `{"jsonrpc":"2.0","method":"client/thing","params":{"capabilities":{}}}`},
		{"invalid json", `{"capabilities": oops`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := p.rewriteInitializeResult([]byte(tt.payload))
			assert.Equal(t, tt.payload, string(out))
		})
	}
}

func TestMergeCommands(t *testing.T) {
	own := []string{
		CommandFormatOperations,
		CommandInsertOperation,
		CommandListOperations,
		CommandReloadSchema,
	}

	assert.Equal(t, own, mergeCommands(nil))

	merged := mergeCommands(map[string]any{
		"commands": []any{"server.restart", CommandFormatOperations},
	})
	assert.ElementsMatch(t, append(own, "server.restart"), merged)
}
