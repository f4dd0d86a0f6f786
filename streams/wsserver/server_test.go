package wsserver

import (
	"encoding/json"
	"io"
	"log/slog"
	"math/big"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iwinswap/iwinswap-amm-engine-go/events"
	"github.com/Iwinswap/iwinswap-amm-engine-go/protocols/cpmm"
)

func TestServerStreamsEvents(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	broadcaster := events.NewBroadcaster(16)
	srv := NewServer(logger, broadcaster)

	httpSrv := httptest.NewServer(srv)
	defer httpSrv.Close()

	wsURL := "ws" + strings.TrimPrefix(httpSrv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	// Give the server a moment to register the subscription before publishing.
	require.Eventually(t, func() bool {
		return broadcaster.Len() == 1
	}, time.Second, 10*time.Millisecond)

	broadcaster.Publish(cpmm.Swap{
		Trader:    common.HexToAddress("0x01"),
		AssetIn:   common.HexToAddress("0xaa"),
		AssetOut:  common.HexToAddress("0xbb"),
		AmountIn:  big.NewInt(1000),
		AmountOut: big.NewInt(996),
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)

	var envelope struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
		SentAt  int64           `json:"sentAt"`
	}
	require.NoError(t, json.Unmarshal(frame, &envelope))
	assert.Equal(t, cpmm.EventTypeSwap, envelope.Type)
	assert.NotZero(t, envelope.SentAt)

	var swap cpmm.Swap
	require.NoError(t, json.Unmarshal(envelope.Payload, &swap))
	assert.Equal(t, int64(1000), swap.AmountIn.Int64())
	assert.Equal(t, int64(996), swap.AmountOut.Int64())
}

func TestServerReleasesSubscriptionOnDisconnect(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	broadcaster := events.NewBroadcaster(16)
	srv := NewServer(logger, broadcaster)

	httpSrv := httptest.NewServer(srv)
	defer httpSrv.Close()

	wsURL := "ws" + strings.TrimPrefix(httpSrv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	require.Eventually(t, func() bool {
		return broadcaster.Len() == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		return broadcaster.Len() == 0
	}, 2*time.Second, 10*time.Millisecond)
}
