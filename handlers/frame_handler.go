/*
	Copyright 2023 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

// Package handlers serves chart frames over HTTP.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/ilhamster/chartcore/chart"
	"github.com/ilhamster/chartcore/util"
)

// HandlerFunc is a HTTP handler function.
type HandlerFunc func(http.ResponseWriter, *http.Request)

// WrapFunc is a function that rewrites a HandlerFunc.
type WrapFunc func(HandlerFunc) HandlerFunc

// Handler describes a chart HTTP handler.
type Handler interface {
	HandlersByPath() map[string]func(http.ResponseWriter, *http.Request)
}

// FrameHandler is a Handler for chart frames.  It supports a Wrap method
// that wraps all handlers, e.g. adding cookies.
type FrameHandler interface {
	Handler
	Wrap(...WrapFunc) Handler
}

// sendHTTPResponse serializes the provided payload and sends it along the
// provided http.ResponseWriter.  Any failures during serialization yield an
// HTTP internal status error.
func sendHTTPResponse(resp *util.Data, w http.ResponseWriter) {
	respStr, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Failed to marshal response: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Add("Content-Type", "application/json")
	fmt.Fprint(w, string(respStr))
}

// frameHandler is an http.Handler serving chart frames.
type frameHandler struct {
	registry *chart.Registry
	log      logrus.FieldLogger
	wrappers []WrapFunc
}

// NewFrameHandler returns a new Handler serving frames of the charts in the
// provided Registry.  If log is nil, the logrus standard logger is used.
func NewFrameHandler(registry *chart.Registry, log logrus.FieldLogger) FrameHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &frameHandler{
		registry: registry,
		log:      log,
	}
}

const (
	frameMethod = "/GetFrame"
	chartParam  = "chart"
)

type contextKey string

var (
	httpReqKey contextKey = "chartcore_http_req"
)

// RequestOf returns the http Request attached to the provided Context, or nil
// if no Request is attached.  Returns an error if something other than a
// Request is stored in the Context.
func RequestOf(ctx context.Context) (*http.Request, error) {
	reqIf := ctx.Value(httpReqKey)
	if reqIf == nil {
		return nil, nil
	}
	req, ok := reqIf.(*http.Request)
	if !ok {
		return nil, fmt.Errorf("expected *http.Request to be stored in context, but got something else")
	}
	return req, nil
}

func (fh *frameHandler) Wrap(wrappers ...WrapFunc) Handler {
	fh.wrappers = append(fh.wrappers, wrappers...)
	return fh
}

// HandlersByPath returns a mapping of HTTP request path to HTTP handler for
// this Handler.  Wrappers, and the handlers they wrap, may retrieve the
// incoming request from their request's context with RequestOf.
func (fh *frameHandler) HandlersByPath() map[string]func(http.ResponseWriter, *http.Request) {
	var h HandlerFunc = fh.getFrameHandler
	for _, wrapper := range fh.wrappers {
		h = wrapper(h)
	}
	return map[string]func(http.ResponseWriter, *http.Request){
		frameMethod: func(w http.ResponseWriter, req *http.Request) {
			h(w, req.WithContext(context.WithValue(req.Context(), httpReqKey, req)))
		},
	}
}

func (fh *frameHandler) getFrameHandler(w http.ResponseWriter, req *http.Request) {
	if err := req.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}
	id := req.Form.Get(chartParam)
	if id == "" {
		http.Error(w, "Missing required parameter '"+chartParam+"'", http.StatusBadRequest)
		return
	}
	log := fh.log.WithField("chart", id)
	frame, err := fh.registry.Frame(req.Context(), id)
	if err != nil {
		if errors.Is(err, chart.ErrUnknownChart) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		log.WithError(err).Error("frame layout failed")
		http.Error(w, "Frame layout failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	resp, err := frame.Data()
	if err != nil {
		log.WithError(err).Error("frame payload failed")
		http.Error(w, "Frame payload failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	log.Debug("served frame")
	sendHTTPResponse(resp, w)
}
