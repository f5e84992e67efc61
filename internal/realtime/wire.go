package realtime

import (
	"log/slog"

	"github.com/google/wire"

	"linkup/config"
	"linkup/internal/conversation"
	"linkup/internal/message"
)

func ProvideSourceFactory(cfg *config.Config, logger *slog.Logger) SourceFactory {
	return NewPQSourceFactory(cfg.DatabaseURL, cfg.ListenMinReconnect, cfg.ListenMaxReconnect, logger)
}

func ProvideBridge(
	factory SourceFactory,
	messages *message.Service,
	conversations conversation.Repository,
	logger *slog.Logger,
) *Bridge {
	return NewBridge(factory, messages.GetEnriched, conversations.GetByID, logger)
}

func ProvideWSHandler(bridge *Bridge, logger *slog.Logger) *WSHandler {
	return NewWSHandler(bridge, logger)
}

var Set = wire.NewSet(ProvideSourceFactory, ProvideBridge, ProvideWSHandler)
