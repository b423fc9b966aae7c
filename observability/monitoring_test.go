package observability

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestMonitoringManager_Unary(t *testing.T) {
	req := require.New(t)
	mm := NewMonitoringManager(logs.GetLoggerFromLevel(slog.LevelDebug))

	ok := func(context.Context, any) (any, error) { return "pong", nil }
	denied := func(context.Context, any) (any, error) {
		return nil, status.Error(codes.Unauthenticated, "no token")
	}
	resp, err := mm.Unary(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/chat/ListGroups"}, ok)
	req.NoError(err)
	req.Equal("pong", resp)
	_, err = mm.Unary(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/chat/InsertMessage"}, denied)
	req.Error(err)

	stats := mm.GetLatest()
	req.Equal(uint64(2), stats.Calls)
	req.Equal(uint64(1), stats.Errors)
	req.Len(stats.RecentCalls, 2)
	req.Equal("/chat/InsertMessage", stats.RecentCalls[0].Method)
	req.Equal(codes.Unauthenticated.String(), stats.RecentCalls[0].Code)
	req.Equal(codes.OK.String(), stats.RecentCalls[1].Code)
}

func TestMonitoringManager_Stream_Counts_Open_Streams(t *testing.T) {
	req := require.New(t)
	mm := NewMonitoringManager(logs.GetLoggerFromLevel(slog.LevelDebug))

	var during int64
	handler := func(any, grpc.ServerStream) error {
		during = mm.GetLatest().OpenStreams
		return nil
	}
	req.NoError(mm.Stream(nil, nil, &grpc.StreamServerInfo{FullMethod: "/chat/SubscribeMessages"}, handler))

	req.Equal(int64(1), during)
	req.Equal(int64(0), mm.GetLatest().OpenStreams)
}

func TestMonitoringManager_Keeps_Recent_Calls(t *testing.T) {
	req := require.New(t)
	mm := NewMonitoringManager(logs.GetLoggerFromLevel(slog.LevelDebug))
	ok := func(context.Context, any) (any, error) { return nil, nil }

	for i := 0; i < recentCallsKept+5; i++ {
		_, _ = mm.Unary(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: fmt.Sprintf("/m/%d", i)}, ok)
	}

	stats := mm.GetLatest()
	req.Len(stats.RecentCalls, recentCallsKept)
	req.Equal(fmt.Sprintf("/m/%d", recentCallsKept+4), stats.RecentCalls[0].Method)
}
