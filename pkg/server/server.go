package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/richard-senior/matchodds/internal/logger"
	"github.com/richard-senior/matchodds/pkg/protocol"
	"github.com/richard-senior/matchodds/pkg/tools"
	"github.com/richard-senior/matchodds/pkg/transport"
)

// ServerName and ServerVersion are reported to clients on initialize
const (
	ServerName    = "matchodds"
	ServerVersion = "1.0.0"
)

// Server represents an MCP server
type Server struct {
	transport transport.Transport
	mu        sync.Mutex
	handlers  map[string]HandlerFunc
	tools     []protocol.Tool
}

// HandlerFunc is a function that handles an MCP request
type HandlerFunc func(params interface{}) (interface{}, error)

// Singleton instance
var (
	instance *Server
	once     sync.Once
)

// GetInstance returns the singleton instance of the Server, nil until InitInstance has run
func GetInstance() *Server {
	if instance == nil {
		logger.Warn("Server instance requested but not initialized. Use InitInstance first.")
	}
	return instance
}

// InitInstance initializes the singleton instance of the Server with the specified transport
func InitInstance(t transport.Transport, tb *tools.Toolbox) *Server {
	once.Do(func() {
		instance = New(t, tb)
	})
	return instance
}

// New creates a server with the match tools and the built-in handlers registered
func New(t transport.Transport, tb *tools.Toolbox) *Server {
	s := &Server{
		transport: t,
		handlers:  make(map[string]HandlerFunc),
		tools:     []protocol.Tool{},
	}
	s.RegisterDefaultTools(tb)
	return s
}

// RegisterTool registers a tool with the server under its prefixed name
func (s *Server) RegisterTool(tool protocol.Tool, handler HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !strings.HasPrefix(tool.Name, protocol.ToolPrefix) {
		tool.Name = protocol.ToolPrefix + tool.Name
	}
	s.tools = append(s.tools, tool)
	s.handlers[tool.Name] = handler
	logger.Info("Registered tool:", tool.Name)
}

// GetTools returns the list of registered tools
func (s *Server) GetTools() []protocol.Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]protocol.Tool(nil), s.tools...)
}

// RegisterDefaultTools registers the match tools and the protocol handlers
func (s *Server) RegisterDefaultTools(tb *tools.Toolbox) {
	logger.Info("Registering default tools...")

	if tb != nil {
		s.RegisterTool(tools.PredictMatchTool(), tb.HandlePredictMatch)
		s.RegisterTool(tools.ScanValueBetsTool(), tb.HandleScanValueBets)
		s.RegisterTool(tools.LeagueContextTool(), tb.HandleLeagueContext)
		s.RegisterTool(tools.MatchReportTool(), tb.HandleMatchReport)
	}

	// Register built-in handlers
	s.handlers[string(protocol.MethodInitialize)] = s.handleInitialize
	s.handlers[string(protocol.MethodInitialized)] = s.handleInitialized
	s.handlers[string(protocol.MethodToolsList)] = s.handleToolsList
	s.handlers[string(protocol.MethodToolsCall)] = s.handleToolsCall
	s.handlers[string(protocol.MethodPing)] = s.handlePing
}

// Start starts the server and begins processing requests
func (s *Server) Start() error {
	logger.Info("Starting MCP server")

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.ProcessRequests()
	}()

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		logger.Info("Received signal:", sig)
		return nil
	}
}

// ProcessRequests handles requests until the client disconnects
func (s *Server) ProcessRequests() error {
	for {
		req, err := s.transport.ReadRequest()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		// nil means no response is required
		resp := s.handleRequest(req)
		if resp == nil {
			continue
		}
		if err := s.transport.WriteResponse(resp); err != nil {
			return err
		}
	}
}

// lookupTool finds a tool handler with or without the mcp___ prefix
func (s *Server) lookupTool(name string) HandlerFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	if handler := s.handlers[name]; handler != nil {
		return handler
	}
	if !strings.HasPrefix(name, protocol.ToolPrefix) {
		return s.handlers[protocol.ToolPrefix+name]
	}
	return nil
}

// handleRequest processes a request and returns a response
func (s *Server) handleRequest(req *protocol.JsonRpcRequest) *protocol.JsonRpcResponse {
	logger.Info(">> ", req.Method)
	logger.Debug("Full request:", string(req.Params))

	if strings.HasPrefix(req.Method, "notifications/") {
		logger.Info("Received notification:", req.Method)
		return nil
	}

	var handler HandlerFunc
	var params any

	if req.Method == string(protocol.MethodInvokeTool) {
		var invoke protocol.InvokeToolParams
		if err := json.Unmarshal(req.Params, &invoke); err != nil {
			return protocol.NewJsonRpcErrorResponse(protocol.ErrInvalidParams, "Invalid parameters for invoke_tool: "+err.Error(), nil, req.ID)
		}
		if invoke.Name == "" {
			return protocol.NewJsonRpcErrorResponse(protocol.ErrInvalidParams, "Missing tool name in invoke_tool parameters", nil, req.ID)
		}
		logger.Info("Tool invocation requested for:", invoke.Name)
		handler = s.lookupTool(invoke.Name)
		if invoke.Parameters == nil {
			invoke.Parameters = map[string]any{}
		}
		params = invoke.Parameters
	} else {
		s.mu.Lock()
		handler = s.handlers[req.Method]
		s.mu.Unlock()
		params = req.Params
	}

	if handler == nil {
		return protocol.NewJsonRpcErrorResponse(protocol.ErrMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), nil, req.ID)
	}

	result, err := handler(params)
	if err != nil {
		logger.Warn("Request failed:", req.Method, err)
		return protocol.NewJsonRpcErrorResponse(protocol.ErrorCode(err, protocol.ErrToolExecutionFailed), err.Error(), nil, req.ID)
	}
	if result == nil {
		return nil
	}

	resp, err := protocol.NewJsonRpcResponse(result, req.ID)
	if err != nil {
		return protocol.NewJsonRpcErrorResponse(protocol.ErrInternal, "Failed to marshal result: "+err.Error(), nil, req.ID)
	}
	logger.Debug("Full response:", string(resp.Result))
	return resp
}

// handleToolsList handles the tools/list method
func (s *Server) handleToolsList(params interface{}) (interface{}, error) {
	logger.Info("Handling tools/list request")
	return protocol.ToolsResponse{Tools: s.GetTools()}, nil
}

// handleInitialize handles the initialize method
func (s *Server) handleInitialize(params interface{}) (interface{}, error) {
	logger.Info("Handling initialize request with", len(s.GetTools()), "tools registered")

	requestedProtocolVersion := protocol.DefaultProtocolVersion
	if raw, ok := params.(json.RawMessage); ok && len(raw) > 0 {
		var init struct {
			ProtocolVersion string `json:"protocolVersion"`
		}
		if err := json.Unmarshal(raw, &init); err != nil {
			return nil, protocol.InvalidParams("invalid initialize parameters: %v", err)
		}
		if init.ProtocolVersion != "" {
			requestedProtocolVersion = init.ProtocolVersion
		}
	}
	logger.Info("Final protocol version to use:", requestedProtocolVersion)

	type serverInfo struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}
	return struct {
		ProtocolVersion string         `json:"protocolVersion"`
		Capabilities    map[string]any `json:"capabilities"`
		ServerInfo      serverInfo     `json:"serverInfo"`
	}{
		ProtocolVersion: requestedProtocolVersion,
		Capabilities: map[string]any{
			"tools": map[string]any{"listChanged": false},
		},
		ServerInfo: serverInfo{Name: ServerName, Version: ServerVersion},
	}, nil
}

// handleInitialized handles the initialized notification
// 'initialized' Does not require a response
func (s *Server) handleInitialized(params interface{}) (interface{}, error) {
	logger.Info("Handling initialized notification")
	return nil, nil
}

func (s *Server) handlePing(params interface{}) (interface{}, error) {
	return struct{}{}, nil
}

// handleToolsCall runs a tool and wraps its output as text content
func (s *Server) handleToolsCall(params any) (any, error) {
	logger.Info("Handling tools/call request")

	var call protocol.CallToolParams
	raw, _ := params.(json.RawMessage)
	if err := json.Unmarshal(raw, &call); err != nil {
		return nil, protocol.InvalidParams("invalid tools/call parameters: %v", err)
	}
	logger.Info("Tool call requested for:", call.Name)

	handler := s.lookupTool(call.Name)
	if handler == nil {
		return nil, protocol.InvalidParams("tool not found: %s", call.Name)
	}
	if call.Arguments == nil {
		call.Arguments = map[string]any{}
	}

	result, err := handler(call.Arguments)
	if err != nil {
		return nil, fmt.Errorf("tool execution failed: %w", err)
	}
	return protocol.NewTextResult(result)
}
