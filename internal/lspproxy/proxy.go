// Package lspproxy implements a transparent proxy that intercepts and
// modifies LSP traffic between the editor and the GraphQL language server.
// The server handles the language smarts; the proxy owns everything that
// needs the embedded-fragment view of a document: formatting, operation
// insertion and schema discovery.
package lspproxy

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/vektah/gqlparser/v2/ast"

	"go.trai.ch/graphql-lsp-router/internal/discovery"
	"go.trai.ch/graphql-lsp-router/internal/schemaregistry"
)

// Proxy manages the MITM connection between the Editor and the Language Server.
type Proxy struct {
	editorIn  io.Reader
	editorOut io.Writer
	editorMu  sync.Mutex

	serverCmd *exec.Cmd
	serverIn  io.WriteCloser
	serverOut io.ReadCloser

	serverPath string
	serverArgs []string

	log       *logrus.Logger
	documents *DocumentStore
	chain     *discovery.Chain
	registry  *schemaregistry.Registry

	runCtx context.Context

	// stateMutex guards the workspace root, the resolved schema and the
	// ids of requests the proxy itself has issued to the editor.
	stateMutex      sync.Mutex
	workspaceDir    string
	workspacePinned bool
	schema          *ast.Schema
	schemaOrigin    string
	pending         map[string]string
}

// NewProxy initializes the structs and prepares the subprocess.
func NewProxy(log *logrus.Logger, serverPath string, serverArgs []string, chain *discovery.Chain, registry *schemaregistry.Registry) *Proxy {
	return &Proxy{
		editorIn:   os.Stdin,
		editorOut:  os.Stdout,
		serverPath: serverPath,
		serverArgs: serverArgs,
		log:        log,
		documents:  NewDocumentStore(),
		chain:      chain,
		registry:   registry,
		pending:    make(map[string]string),
	}
}

// Start launches the GraphQL language server and begins proxying traffic.
func (p *Proxy) Start(ctx context.Context) error {
	p.runCtx = ctx

	//nolint:gosec // serverPath is provided via a trusted command-line flag
	p.serverCmd = exec.Command(p.serverPath, p.serverArgs...)

	serverIn, inErr := p.serverCmd.StdinPipe()
	if inErr != nil {
		return fmt.Errorf("failed to create stdin pipe to server: %w", inErr)
	}
	p.serverIn = serverIn

	serverOut, outErr := p.serverCmd.StdoutPipe()
	if outErr != nil {
		return fmt.Errorf("failed to create stdout pipe from server: %w", outErr)
	}
	p.serverOut = serverOut

	p.serverCmd.Stderr = os.Stderr

	if err := p.serverCmd.Start(); err != nil {
		return fmt.Errorf("failed to start language server (%s): %w", p.serverPath, err)
	}

	p.log.WithField("pid", p.serverCmd.Process.Pid).Info("Language server started")

	var wg sync.WaitGroup

	wg.Go(func() {
		p.processServerToEditor()
	})

	wg.Go(func() {
		defer func() {
			if err := p.serverIn.Close(); err != nil {
				p.log.WithError(err).Error("Failed to close server stdin")
			}
		}()

		p.processEditorToServer()
	})

	cmdDone := make(chan error, 1)
	go func() {
		cmdDone <- p.serverCmd.Wait()
	}()

	// Block until either the process exits OR we receive a shutdown signal
	select {
	case err := <-cmdDone:
		// The language server exited on its own (or crashed)
		return err

	case <-ctx.Done():
		// The editor sent a signal (e.g., SIGTERM), so we shut down gracefully
		p.log.Info("Context canceled, stopping language server")

		// Kill the child process so we don't leave orphans
		if p.serverCmd.Process != nil {
			_ = p.serverCmd.Process.Kill()
		}

		return nil
	}
}

// PinWorkspace fixes the schema discovery root, overriding whatever root
// the editor announces during initialize.
func (p *Proxy) PinWorkspace(dir string) {
	p.stateMutex.Lock()
	defer p.stateMutex.Unlock()
	p.workspaceDir = dir
	p.workspacePinned = true
}

// setWorkspace records the workspace root announced in the initialize request.
func (p *Proxy) setWorkspace(dir string) {
	p.stateMutex.Lock()
	defer p.stateMutex.Unlock()
	if p.workspacePinned {
		return
	}
	p.workspaceDir = dir
}

// schemaFor returns the workspace schema, running discovery on first use.
// The uri only matters as a fallback root when the editor never announced
// a workspace.
func (p *Proxy) schemaFor(uri string) (*ast.Schema, error) {
	p.stateMutex.Lock()
	defer p.stateMutex.Unlock()

	if p.schema != nil {
		return p.schema, nil
	}

	dir := p.workspaceDir
	if dir == "" {
		dir = filepath.Dir(uriToPath(uri))
	}

	ctx := p.runCtx
	if ctx == nil {
		ctx = context.Background()
	}

	d, found := p.chain.Run(ctx, dir)
	if !found {
		return nil, fmt.Errorf("no GraphQL schema found for workspace %s", dir)
	}

	schema, err := d.Load()
	if err != nil {
		return nil, err
	}

	p.schema = schema
	p.schemaOrigin = d.Origin
	p.log.WithFields(logrus.Fields{
		"origin":   d.Origin,
		"strategy": d.Strategy,
	}).Info("GraphQL schema resolved")

	return schema, nil
}

// dropSchema forgets the resolved schema and clears the endpoint cache so
// the next consumer re-runs discovery.
func (p *Proxy) dropSchema() error {
	p.stateMutex.Lock()
	p.schema = nil
	p.schemaOrigin = ""
	p.stateMutex.Unlock()

	if p.registry != nil {
		return p.registry.Clear()
	}
	return nil
}

// trackPending remembers a request id the proxy itself sent to the editor.
func (p *Proxy) trackPending(id, method string) {
	p.stateMutex.Lock()
	defer p.stateMutex.Unlock()
	p.pending[id] = method
}

// consumePending reports whether id belongs to a proxy-issued request and
// forgets it if so.
func (p *Proxy) consumePending(id any) (string, bool) {
	s, ok := id.(string)
	if !ok {
		return "", false
	}

	p.stateMutex.Lock()
	defer p.stateMutex.Unlock()
	method, ok := p.pending[s]
	if ok {
		delete(p.pending, s)
	}
	return method, ok
}
