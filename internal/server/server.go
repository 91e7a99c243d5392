// Package server is a thin HTTP facade over the tokenizer, exposing
// encode/decode/token-count as JSON endpoints. Grounded on
// samcharles93-mantle/internal/api's Server/Register/writeError shape,
// trimmed to this module's three operations.
package server

import (
	"context"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/corebpe/tiktoken"
	"github.com/corebpe/tiktoken/internal/obslog"
)

// Server binds resolved encodings by name, reusing the same Encoding
// instance across requests for a given name.
type Server struct {
	ctx   context.Context
	cache map[string]*tiktoken.Encoding
	log   obslog.Logger
}

// NewServer constructs a Server whose encoding resolution uses ctx for
// loader I/O (network fetch / disk cache).
func NewServer(ctx context.Context) *Server {
	return &Server{ctx: ctx, cache: map[string]*tiktoken.Encoding{}, log: obslog.FromContext(ctx)}
}

// Register wires every route onto e.
func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/encode", s.handleEncode)
	e.POST("/v1/decode", s.handleDecode)
	e.POST("/v1/token-count", s.handleTokenCount)
}

type encodeRequest struct {
	Encoding        string   `json:"encoding"`
	Text            string   `json:"text"`
	AllowedSpecial  []string `json:"allowed_special"`
	AllowAllSpecial bool     `json:"allow_all_special"`
}

type encodeResponse struct {
	Tokens []uint32 `json:"tokens"`
}

type decodeRequest struct {
	Encoding string   `json:"encoding"`
	Tokens   []uint32 `json:"tokens"`
}

type decodeResponse struct {
	Text string `json:"text"`
}

type tokenCountResponse struct {
	Count int `json:"count"`
}

func (s *Server) resolve(name string) (*tiktoken.Encoding, error) {
	if enc, ok := s.cache[name]; ok {
		return enc, nil
	}
	enc, err := tiktoken.GetEncoding(s.ctx, name)
	if err != nil {
		return nil, err
	}
	s.cache[name] = enc
	return enc, nil
}

func (s *Server) policyFor(req encodeRequest) tiktoken.SpecialTokenPolicy {
	if req.AllowAllSpecial {
		return tiktoken.AllowAll()
	}
	if len(req.AllowedSpecial) > 0 {
		return tiktoken.AllowOnly(req.AllowedSpecial...)
	}
	return tiktoken.AllowNone()
}

func (s *Server) handleEncode(c *echo.Context) error {
	var req encodeRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return s.writeError(c, http.StatusBadRequest, err.Error())
	}
	enc, err := s.resolve(req.Encoding)
	if err != nil {
		return s.writeError(c, http.StatusNotFound, err.Error())
	}
	tokens, err := enc.Encode(req.Text, s.policyFor(req))
	if err != nil {
		return s.writeError(c, http.StatusBadRequest, err.Error())
	}
	out := make([]uint32, len(tokens))
	for i, t := range tokens {
		out[i] = uint32(t)
	}
	return c.JSON(http.StatusOK, encodeResponse{Tokens: out})
}

func (s *Server) handleDecode(c *echo.Context) error {
	var req decodeRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return s.writeError(c, http.StatusBadRequest, err.Error())
	}
	enc, err := s.resolve(req.Encoding)
	if err != nil {
		return s.writeError(c, http.StatusNotFound, err.Error())
	}
	tokens := make([]tiktoken.Rank, len(req.Tokens))
	for i, t := range req.Tokens {
		tokens[i] = tiktoken.Rank(t)
	}
	return c.JSON(http.StatusOK, decodeResponse{Text: enc.Decode(tokens)})
}

func (s *Server) handleTokenCount(c *echo.Context) error {
	var req encodeRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return s.writeError(c, http.StatusBadRequest, err.Error())
	}
	enc, err := s.resolve(req.Encoding)
	if err != nil {
		return s.writeError(c, http.StatusNotFound, err.Error())
	}
	count, err := enc.TokenCount(req.Text, s.policyFor(req))
	if err != nil {
		return s.writeError(c, http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, tokenCountResponse{Count: count})
}

func (s *Server) writeError(c *echo.Context, status int, msg string) error {
	s.log.Warn("request failed", "path", c.Request().URL.Path, "status", status, "message", msg)
	return c.JSON(status, map[string]any{
		"error": map[string]string{"message": msg},
	})
}
