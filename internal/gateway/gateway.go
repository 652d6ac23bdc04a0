// Package gateway serves the pasteboard service as HTTP/JSON on a
// grpc-gateway runtime.ServeMux.
//
//	GET    /v1/formats            available formats and the native id table
//	GET    /v1/formats/{format}   raw bytes of one format (?find=true for the find pasteboard)
//	PUT    /v1/formats/{format}   replace the clipboard with the request body
//	POST   /v1/clipboard          composite write, JSON message.WriteRequest
//	DELETE /v1/clipboard          clear
package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"

	gwruntime "github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"golang.org/x/net/http2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"go.klb.dev/pasteboard/internal/format"
	"go.klb.dev/pasteboard/internal/grpcservice"
	"go.klb.dev/pasteboard/internal/message"
)

// maxBody caps request bodies.
const maxBody = 64 << 20

type gateway struct {
	svc grpcservice.PasteboardServer
}

// New returns a mux routing HTTP requests to svc.
func New(svc grpcservice.PasteboardServer) (*gwruntime.ServeMux, error) {
	mux := gwruntime.NewServeMux(
		// Native ids such as text/plain;charset=utf-8 arrive as one
		// %2F-escaped path segment.
		gwruntime.WithUnescapingMode(gwruntime.UnescapingModeAllCharacters),
	)
	g := &gateway{svc: svc}
	// The mux tries the most recently added route first, so /v1/formats is
	// added after the wildcard that would also match it. {format=**} spans
	// segments: X11 and MIME ids contain '/', escaped or not.
	routes := []struct {
		method, pattern string
		h               gwruntime.HandlerFunc
	}{
		{http.MethodGet, "/v1/formats/{format=**}", g.read},
		{http.MethodPut, "/v1/formats/{format=**}", g.put},
		{http.MethodGet, "/v1/formats", g.formats},
		{http.MethodPost, "/v1/clipboard", g.write},
		{http.MethodDelete, "/v1/clipboard", g.clear},
	}
	for _, r := range routes {
		if err := mux.HandlePath(r.method, r.pattern, r.h); err != nil {
			return nil, fmt.Errorf("gateway: route %s %s: %w", r.method, r.pattern, err)
		}
	}
	return mux, nil
}

// Serve runs an HTTP/1.1 server on ln serving mux.
func Serve(ln net.Listener, mux http.Handler) error {
	srv := &http.Server{Handler: mux}
	return srv.Serve(ln)
}

// incoming forwards the Authorization header so the service's token check
// applies to HTTP callers too.
func incoming(r *http.Request) context.Context {
	md := metadata.MD{}
	if a := r.Header.Get("Authorization"); a != "" {
		md.Set("authorization", a)
	}
	if s := r.Header.Get("X-Pasteboard-Source"); s != "" {
		md.Set("x-pasteboard-source", s)
	}
	return metadata.NewIncomingContext(r.Context(), md)
}

func (g *gateway) formats(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	resp, err := g.svc.Formats(incoming(r), &message.FormatsRequest{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (g *gateway) read(w http.ResponseWriter, r *http.Request, params map[string]string) {
	if params["format"] == "" {
		g.formats(w, r, params)
		return
	}
	find, _ := strconv.ParseBool(r.URL.Query().Get("find"))
	resp, err := g.svc.Read(incoming(r), &message.ReadRequest{Format: params["format"], Find: find})
	if err != nil {
		writeError(w, err)
		return
	}
	if resp.Bookmark != nil {
		writeJSON(w, http.StatusOK, resp.Bookmark)
		return
	}
	b, err := resp.Item.Decode()
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType(params["format"]))
	w.Header().Set("X-Pasteboard-Format", resp.Item.Format)
	_, _ = w.Write(b)
}

func (g *gateway) put(w http.ResponseWriter, r *http.Request, params map[string]string) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		writeError(w, status.Error(codes.InvalidArgument, err.Error()))
		return
	}
	name := params["format"]
	if name == "" {
		writeError(w, status.Error(codes.InvalidArgument, "missing format"))
		return
	}
	req := &message.WriteRequest{Source: r.RemoteAddr}
	switch format.Portable(name) {
	case format.Text:
		req.Text = string(body)
	case format.HTML:
		req.HTML = string(body)
	case format.RTF:
		req.RTF = string(body)
	case format.Image:
		req.Image = base64.StdEncoding.EncodeToString(body)
	case format.Bookmark:
		var bm message.Bookmark
		if err := json.Unmarshal(body, &bm); err != nil {
			writeError(w, status.Error(codes.InvalidArgument, "bookmark body must be {\"title\":...,\"url\":...}"))
			return
		}
		req.Text, req.BookmarkTitle = bm.URL, bm.Title
	default:
		req.Items = []message.Item{message.NewItem(name, body)}
	}
	req.Find, _ = strconv.ParseBool(r.URL.Query().Get("find"))
	g.doWrite(w, r, req)
}

func (g *gateway) write(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	req := new(message.WriteRequest)
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(req); err != nil {
		writeError(w, status.Error(codes.InvalidArgument, err.Error()))
		return
	}
	if req.Source == "" {
		req.Source = r.RemoteAddr
	}
	g.doWrite(w, r, req)
}

func (g *gateway) doWrite(w http.ResponseWriter, r *http.Request, req *message.WriteRequest) {
	resp, err := g.svc.Write(incoming(r), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (g *gateway) clear(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	if _, err := g.svc.Clear(incoming(r), &message.ClearRequest{}); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func contentType(name string) string {
	switch format.Portable(name) {
	case format.Text:
		return "text/plain; charset=utf-8"
	case format.HTML:
		return "text/html; charset=utf-8"
	case format.RTF:
		return "application/rtf"
	case format.Image:
		return "image/png"
	}
	return "application/octet-stream"
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	st, _ := status.FromError(err)
	writeJSON(w, gwruntime.HTTPStatusFromCode(st.Code()), map[string]string{"error": st.Message()})
}

// ServeH2 serves mux to HTTP/2 clients on ln. On a TLS listener such
// clients negotiate h2 through ALPN, which net/http cannot see once cmux has
// wrapped the connection.
func ServeH2(ln net.Listener, mux http.Handler) error {
	srv := &http2.Server{}
	for {
		c, err := ln.Accept()
		if err != nil {
			return err
		}
		go srv.ServeConn(c, &http2.ServeConnOpts{Handler: mux})
	}
}
