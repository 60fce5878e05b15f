package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/threetoe-backend/internal/entity"
	"github.com/rocketscienceinc/threetoe-backend/internal/tictactoe"
	"github.com/rocketscienceinc/threetoe-backend/internal/usecase"
)

const (
	sendBuffer      = 16
	shutdownTimeout = 5 * time.Second
)

type gameService interface {
	CreateGame(ctx context.Context, aiLevel string) (tictactoe.State, error)
	MakeMove(ctx context.Context, id string, cell entity.Cell) (usecase.MoveResult, error)
	GetGame(ctx context.Context, id string) (tictactoe.State, error)
	ResetGame(ctx context.Context, id string) (tictactoe.State, error)
}

type handlerFunc func(ctx context.Context, request *RequestPayload) (ResponsePayload, error)

type Server struct {
	logger   *slog.Logger
	games    gameService
	upgrader websocket.Upgrader
	interval time.Duration

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, games gameService) *Server {
	server := &Server{
		logger:   logger.With("component", "websocket"),
		games:    games,
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		interval: idlePingInterval,

		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionNewGame] = server.handleNewGame
	server.handlers[actionTurn] = server.handleGameTurn
	server.handlers[actionState] = server.handleGameState
	server.handlers[actionReset] = server.handleGameReset

	return server
}

// Handler serves the /ws endpoint. Connections are closed when ctx is done.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveWS(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     that.Handler(ctx),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serveWS(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveWS")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	send := make(chan []byte, sendBuffer)
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		defer cancel()

		if err := writeWithHeartbeat(conn, send, that.interval); err != nil {
			log.Debug("writer stopped", "error", err)
		}
	}()

	go func() {
		<-connCtx.Done()
		_ = conn.Close()
	}()

	log.Info("WebSocket connection established")

	if err = that.handleMessages(connCtx, conn, send); err != nil {
		log.Debug("connection closed", "error", err)
	}

	close(send)
	<-writerDone
}

// handleMessages - processes messages from the client until the connection fails.
func (that *Server) handleMessages(ctx context.Context, conn *websocket.Conn, send chan<- []byte) error {
	log := that.logger.With("method", "handleMessages")

	push := func(msg []byte) error {
		select {
		case send <- msg:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var message Message
		if err = json.Unmarshal(raw, &message); err != nil {
			if err = push(errorMessage(actionError, "message must be JSON")); err != nil {
				return err
			}
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			if err = push(errorMessage(message.Action, "unknown action")); err != nil {
				return err
			}
			continue
		}

		var request RequestPayload
		if len(message.Payload) > 0 {
			if err = json.Unmarshal(message.Payload, &request); err != nil {
				if err = push(errorMessage(message.Action, "invalid payload")); err != nil {
					return err
				}
				continue
			}
		}

		response, err := handler(ctx, &request)
		if err != nil {
			log.Debug("action failed", "action", message.Action, "error", err)
			response.Error = err.Error()
		}

		if err = push(mustMarshal(Message{Action: message.Action, Payload: mustMarshal(response)})); err != nil {
			return err
		}
	}
}

func errorMessage(action, reason string) []byte {
	return mustMarshal(Message{Action: action, Payload: mustMarshal(ResponsePayload{Error: reason})})
}
