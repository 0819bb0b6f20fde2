package lspproxy

import (
	"bufio"
	"io"
)

// processServerToEditor continuously reads from the language server,
// rewrites the initialize response so the proxy-owned capabilities are
// advertised, and forwards everything to the editor.
func (p *Proxy) processServerToEditor() {
	reader := bufio.NewReader(p.serverOut)

	for {
		payload, err := readLSPMessage(reader)
		if err != nil {
			if err == io.EOF {
				// The server closed the connection
				return
			}
			p.log.WithError(err).Fatal("Fatal error reading message from server")
		}

		p.sendToEditor(p.rewriteInitializeResult(payload))
	}
}
