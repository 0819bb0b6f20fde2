package lspproxy

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// readLSPMessage reads the HTTP-like headers to find the Content-Length,
// then reads and returns the exact JSON payload.
func readLSPMessage(reader *bufio.Reader) ([]byte, error) {
	var contentLength int

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, err // Usually io.EOF when the connection closes
		}

		line = strings.TrimSpace(line)

		// An empty line marks the end of the headers
		if line == "" {
			break
		}

		if after, ok := strings.CutPrefix(line, "Content-Length:"); ok {
			val := strings.TrimSpace(after)
			contentLength, err = strconv.Atoi(val)
			if err != nil {
				return nil, fmt.Errorf("invalid Content-Length value '%s': %w", val, err)
			}
		}
	}

	if contentLength == 0 {
		return nil, fmt.Errorf("missing or zero Content-Length header")
	}

	payload := make([]byte, contentLength)
	if _, err := io.ReadFull(reader, payload); err != nil {
		return nil, fmt.Errorf("failed to read full payload of size %d: %w", contentLength, err)
	}

	return payload, nil
}

// writeLSPMessage frames a payload with its Content-Length header.
func writeLSPMessage(w io.Writer, payload []byte) error {
	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(payload))

	if _, err := w.Write([]byte(header)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("failed to write payload: %w", err)
	}
	return nil
}

// forwardToServer sends the exact payload on to the language server.
func (p *Proxy) forwardToServer(payload []byte) {
	if err := writeLSPMessage(p.serverIn, payload); err != nil {
		p.log.WithError(err).Error("Failed to forward message to server")
	}
}

// sendToEditor writes a payload to the editor. Both the server pump and the
// interceptors send here, so writes are serialized.
func (p *Proxy) sendToEditor(payload []byte) {
	p.editorMu.Lock()
	defer p.editorMu.Unlock()

	if err := writeLSPMessage(p.editorOut, payload); err != nil {
		p.log.WithError(err).Error("Failed to send message to editor")
	}
}
