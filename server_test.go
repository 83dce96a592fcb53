// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpipe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/gogama/httpipe/request"
)

var httpServer = httptest.NewUnstartedServer(http.HandlerFunc(serverHandler))
var httpsServer = httptest.NewUnstartedServer(http.HandlerFunc(serverHandler))
var http2Server = httptest.NewUnstartedServer(http.HandlerFunc(serverHandler))
var servers = []*httptest.Server{httpServer, httpsServer, http2Server}

const instructionHeader = "X-Test-Instruction"

func TestMain(m *testing.M) {
	httpServer.Start()
	defer httpServer.Close()
	httpsServer.StartTLS()
	defer httpsServer.Close()
	http2Server.EnableHTTP2 = true
	http2Server.StartTLS()
	defer http2Server.Close()
	os.Exit(m.Run())
}

func serverName(server *httptest.Server) string {
	switch server {
	case httpServer:
		return "http"
	case httpsServer:
		return "https"
	case http2Server:
		return "http2"
	default:
		panic("unknown server")
	}
}

type bodyChunk struct {
	Pause time.Duration
	Data  []byte
}

// A serverInstruction tells the test server how to respond. It travels
// on a request header, leaving the request body free to be echoed.
type serverInstruction struct {
	HeaderPause time.Duration
	StatusCode  int
	Body        []bodyChunk
	Echo        bool
}

func (i *serverInstruction) toRequest(method string, server *httptest.Server, content request.Content) *request.Request {
	req, err := request.New(method, server.URL+"/test?x=1", content)
	if err != nil {
		panic(err)
	}
	b, err := json.Marshal(i)
	if err != nil {
		panic(err)
	}
	req.Header.Set(instructionHeader, string(b))
	return req
}

func (i *serverInstruction) toMessage(ctx context.Context, method string, server *httptest.Server, content request.Content) *request.Message {
	return request.NewMessage(ctx, i.toRequest(method, server, content), nil)
}

func serverHandler(w http.ResponseWriter, req *http.Request) {
	// Decode the instructions.
	var i serverInstruction
	if err := json.Unmarshal([]byte(req.Header.Get(instructionHeader)), &i); err != nil {
		w.WriteHeader(400)
		_, _ = io.WriteString(w, fmt.Sprintf("failed to read instruction: %s", err.Error()))
		return
	}

	// Validate the instruction.
	if i.StatusCode == 0 {
		w.WriteHeader(400)
		_, _ = io.WriteString(w, fmt.Sprintf("bad StatusCode in instruction: %v", i))
		return
	}

	// Get the Flusher, panicking if it's not available.
	f, ok := w.(http.Flusher)
	if !ok {
		panic("w does not implement Flusher")
	}

	if i.Echo {
		b, err := io.ReadAll(req.Body)
		if err != nil {
			w.WriteHeader(400)
			return
		}
		i.Body = []bodyChunk{{Data: b}}
		w.Header().Set("X-Echo-Content-Length", strconv.FormatInt(req.ContentLength, 10))
		w.Header().Set("X-Echo-Method", req.Method)
		w.Header().Set("X-Echo-Request-URI", req.RequestURI)
	}

	// Determine the content length of the response.
	contentLength := 0
	for _, chunk := range i.Body {
		contentLength += len(chunk.Data)
	}

	// Create the response headers.
	header := w.Header()
	header.Set("Content-Type", "text/plain; charset=utf-8")
	header.Add("Content-Length", strconv.Itoa(contentLength))

	// Sleep for the duration indicated by the pause field. This is done
	// to allow the client to play with timeouts and cancellation.
	time.Sleep(i.HeaderPause)

	w.WriteHeader(i.StatusCode)
	f.Flush()

	// Write the response in chunks, pausing before each chunk.
	for _, chunk := range i.Body {
		time.Sleep(chunk.Pause)
		if _, err := w.Write(chunk.Data); err != nil {
			return
		}
		f.Flush()
	}
}
