package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/threetoe-backend/internal/apperror"
	"github.com/rocketscienceinc/threetoe-backend/internal/entity"
	"github.com/rocketscienceinc/threetoe-backend/internal/tictactoe"
	"github.com/rocketscienceinc/threetoe-backend/internal/usecase"
)

type gameServiceMock struct {
	mock.Mock
}

func (that *gameServiceMock) CreateGame(ctx context.Context, aiLevel string) (tictactoe.State, error) {
	args := that.Called(ctx, aiLevel)
	return args.Get(0).(tictactoe.State), args.Error(1)
}

func (that *gameServiceMock) MakeMove(ctx context.Context, id string, cell entity.Cell) (usecase.MoveResult, error) {
	args := that.Called(ctx, id, cell)
	return args.Get(0).(usecase.MoveResult), args.Error(1)
}

func (that *gameServiceMock) GetGame(ctx context.Context, id string) (tictactoe.State, error) {
	args := that.Called(ctx, id)
	return args.Get(0).(tictactoe.State), args.Error(1)
}

func (that *gameServiceMock) ResetGame(ctx context.Context, id string) (tictactoe.State, error) {
	args := that.Called(ctx, id)
	return args.Get(0).(tictactoe.State), args.Error(1)
}

func dial(t *testing.T, server *Server) *websocket.Conn {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	httpServer := httptest.NewServer(server.Handler(ctx))
	t.Cleanup(func() {
		cancel()
		httpServer.Close()
	})

	url := "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws"
	conn, response, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = response.Body.Close()
		_ = conn.Close()
	})

	return conn
}

func newTestServer(t *testing.T) (*Server, *gameServiceMock) {
	t.Helper()

	service := &gameServiceMock{}
	t.Cleanup(func() { service.AssertExpectations(t) })

	return New(slog.New(slog.NewJSONHandler(io.Discard, nil)), service), service
}

func exchange(t *testing.T, conn *websocket.Conn, action string, request any) (string, ResponsePayload) {
	t.Helper()

	message := Message{Action: action}
	if request != nil {
		message.Payload = mustMarshal(request)
	}
	require.NoError(t, conn.WriteJSON(message))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var reply Message
	require.NoError(t, conn.ReadJSON(&reply))

	var payload ResponsePayload
	require.NoError(t, json.Unmarshal(reply.Payload, &payload))

	return reply.Action, payload
}

func TestServer_NewGame(t *testing.T) {
	// Given: the service creates an easy game
	server, service := newTestServer(t)
	service.On("CreateGame", mock.Anything, "easy").
		Return(tictactoe.State{ID: "abc", IsAIGame: true}, nil).
		Once()
	conn := dial(t, server)

	// When: a new game is requested over the socket
	action, payload := exchange(t, conn, actionNewGame, RequestPayload{AILevel: "easy"})

	// Then: the reply carries the game
	assert.Equal(t, actionNewGame, action)
	require.NotNil(t, payload.Game)
	assert.Equal(t, "abc", payload.Game.ID)
	assert.Empty(t, payload.Error)
}

func TestServer_GameTurn(t *testing.T) {
	t.Run("Move and answer", func(t *testing.T) {
		// Given: the computer answers in a corner
		server, service := newTestServer(t)
		aiMove := entity.Cell{Row: 2, Col: 2}
		service.On("MakeMove", mock.Anything, "abc", entity.Cell{Row: 1, Col: 1}).
			Return(usecase.MoveResult{State: tictactoe.State{ID: "abc"}, AIMove: &aiMove}, nil).
			Once()
		conn := dial(t, server)

		// When: the center is played
		_, payload := exchange(t, conn, actionTurn, RequestPayload{GameID: "abc", Cell: []int{1, 1}})

		// Then: both moves are reported
		require.NotNil(t, payload.Game)
		assert.Equal(t, &aiMove, payload.AIMove)
	})

	t.Run("Rejected move", func(t *testing.T) {
		server, service := newTestServer(t)
		service.On("MakeMove", mock.Anything, "abc", entity.Cell{Row: 1, Col: 1}).
			Return(usecase.MoveResult{}, apperror.ErrCellOccupied).
			Once()
		conn := dial(t, server)

		_, payload := exchange(t, conn, actionTurn, RequestPayload{GameID: "abc", Cell: []int{1, 1}})

		assert.Contains(t, payload.Error, apperror.ErrCellOccupied.Error())
		assert.Nil(t, payload.Game)
	})

	t.Run("Missing cell", func(t *testing.T) {
		server, _ := newTestServer(t)
		conn := dial(t, server)

		_, payload := exchange(t, conn, actionTurn, RequestPayload{GameID: "abc"})

		assert.Equal(t, errCellRequired.Error(), payload.Error)
	})

	wrongLength := map[string]string{
		"Empty cell":     `[]`,
		"Single value":   `[1]`,
		"Trailing value": `[0,0,9]`,
	}

	for name, cell := range wrongLength {
		t.Run(name, func(t *testing.T) {
			// Given: a cell that is not a [row, col] pair
			server, service := newTestServer(t)
			conn := dial(t, server)
			request := map[string]json.RawMessage{
				"game_id": json.RawMessage(`"abc"`),
				"cell":    json.RawMessage(cell),
			}

			// When: the turn is sent
			_, payload := exchange(t, conn, actionTurn, request)

			// Then: it is rejected before reaching the game
			assert.Equal(t, errInvalidCell.Error(), payload.Error)
			assert.Nil(t, payload.Game)
			service.AssertNotCalled(t, "MakeMove", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestServer_StateAndReset(t *testing.T) {
	// Given: a stored game
	server, service := newTestServer(t)
	service.On("GetGame", mock.Anything, "abc").
		Return(tictactoe.State{ID: "abc", Winner: entity.PlayerX}, nil).
		Once()
	service.On("ResetGame", mock.Anything, "abc").
		Return(tictactoe.State{ID: "abc", CurrentPlayer: entity.PlayerX}, nil).
		Once()
	conn := dial(t, server)

	// When: the state is read and then reset
	_, state := exchange(t, conn, actionState, RequestPayload{GameID: "abc"})
	_, reset := exchange(t, conn, actionReset, RequestPayload{GameID: "abc"})

	// Then: both replies carry the game
	require.NotNil(t, state.Game)
	assert.Equal(t, entity.PlayerX, state.Game.Winner)
	require.NotNil(t, reset.Game)
	assert.Empty(t, reset.Game.Winner)
}

func TestServer_BadMessages(t *testing.T) {
	server, _ := newTestServer(t)
	conn := dial(t, server)

	t.Run("Unknown action", func(t *testing.T) {
		action, payload := exchange(t, conn, "game:fly", nil)

		assert.Equal(t, "game:fly", action)
		assert.Equal(t, "unknown action", payload.Error)
	})

	t.Run("Missing game id", func(t *testing.T) {
		_, payload := exchange(t, conn, actionState, RequestPayload{})

		assert.Equal(t, errGameIDRequired.Error(), payload.Error)
	})

	t.Run("Not JSON", func(t *testing.T) {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("hello")))

		var reply Message
		require.NoError(t, conn.ReadJSON(&reply))

		assert.Equal(t, actionError, reply.Action)
	})
}

func TestServer_Heartbeat(t *testing.T) {
	// Given: a server with a short idle interval
	server, _ := newTestServer(t)
	server.interval = 20 * time.Millisecond
	conn := dial(t, server)

	// When: the client stays quiet
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var reply Message
	require.NoError(t, conn.ReadJSON(&reply))

	// Then: the server pings
	assert.Equal(t, actionPing, reply.Action)
}
