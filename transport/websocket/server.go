package websocket

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"libdb.so/hserve"

	"github.com/gridlockgames/tictactoe-backend/internal/entity"
)

// gameHub is the slice of the session hub the WebSocket surface consumes.
type gameHub interface {
	Create(ctx context.Context) (entity.Game, error)
	Get(ctx context.Context, id string) (entity.Game, error)
	PlayerMove(ctx context.Context, id string, cell int) (entity.Game, error)
	Reset(ctx context.Context, id string) (entity.Game, error)
	ResetScore(ctx context.Context, id string) (entity.Game, error)
	Watch(ctx context.Context, id string) (<-chan entity.Game, func(), error)
}

type Server struct {
	logger *slog.Logger
	hub    gameHub

	handlers map[string]func(ctx context.Context, conn *connection, message *Message) error
}

func New(logger *slog.Logger, hub gameHub) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		hub:    hub,

		handlers: make(map[string]func(context.Context, *connection, *Message) error),
	}

	server.handlers["connect"] = server.handleConnect
	server.handlers["game:new"] = server.handleNewGame
	server.handlers["game:state"] = server.handleGameState
	server.handlers["game:turn"] = server.handleGameTurn
	server.handlers["game:reset"] = server.handleGameReset
	server.handlers["score:reset"] = server.handleScoreReset

	return server
}

// connection is one upgraded client socket and the session it watches.
// The mutex serializes frame writes between handlers and the update pump.
type connection struct {
	bufrw *bufio.ReadWriter
	mu    sync.Mutex

	gameID  string
	unwatch func()
}

// stopWatch drops the active subscription, if any. Only the connection's
// own reader goroutine calls it.
func (that *connection) stopWatch() {
	if that.unwatch != nil {
		that.unwatch()
		that.unwatch = nil
		that.gameID = ""
	}
}

// Start - starts the WebSocket server and blocks until ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	if err := hserve.ListenAndServe(ctx, ":"+port, mux); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return ctx.Err()
}

// upgradeToWebSocket - upgrades the connection to WebSocket.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	if req.Header.Get("Upgrade") != "websocket" {
		http.Error(writer, "not a websocket upgrade", http.StatusBadRequest)
		return
	}

	key := req.Header.Get("Sec-WebSocket-Key")
	if key == "" {
		http.Error(writer, "missing Sec-WebSocket-Key", http.StatusBadRequest)
		return
	}

	writer.Header().Set("Upgrade", "websocket")
	writer.Header().Set("Connection", "Upgrade")
	writer.Header().Set("Sec-WebSocket-Accept", generateAcceptKey(key))
	writer.WriteHeader(http.StatusSwitchingProtocols)

	hijacker, ok := writer.(http.Hijacker)
	if !ok {
		log.Error("web server does not support hijacking")
		return
	}

	netConn, bufrw, err := hijacker.Hijack()
	if err != nil {
		log.Error("failed to hijack connection", "error", err)
		return
	}
	defer netConn.Close()

	// Scope everything spawned on behalf of this client to the
	// connection, so watchers don't outlive the socket.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Info("WebSocket connection established")

	conn := &connection{bufrw: bufrw}
	defer conn.stopWatch()

	if err = that.handleMessages(ctx, conn); err != nil {
		log.Error("error handling messages", "error", err)
	}
}

// handleMessages - processes messages from the client until it disconnects.
func (that *Server) handleMessages(ctx context.Context, conn *connection) error {
	log := that.logger.With("method", "handleMessages")

	for {
		reqBody, err := readRequest(conn.bufrw)
		if errors.Is(err, errConnectionClosed) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			log.Info("client disconnected")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read message: %w", err)
		}

		// continuation and control frames carry nothing for us
		if reqBody == nil {
			continue
		}

		var message Message
		if err = json.Unmarshal(reqBody, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Error("unknown action", "action", message.Action)
			if err = that.sendErrorResponse(conn, message.Action, "unknown action"); err != nil {
				return err
			}
			continue
		}

		if err = handler(ctx, conn, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}
